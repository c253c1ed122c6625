package apiclient

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Kind classifies every failed call. A failed call carries exactly one Kind.
type Kind int

const (
	KindUnknown Kind = iota
	// KindBusinessFailure: transport succeeded, the envelope reported failure.
	KindBusinessFailure
	// KindUnauthenticated: HTTP 401.
	KindUnauthenticated
	// KindForbidden: HTTP 403.
	KindForbidden
	// KindServerFault: HTTP 5xx.
	KindServerFault
	// KindNetworkFailure: no HTTP response was received.
	KindNetworkFailure
	// KindOtherHTTPFailure: any other HTTP status >= 400.
	KindOtherHTTPFailure
)

func (k Kind) String() string {
	switch k {
	case KindBusinessFailure:
		return "business_failure"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindServerFault:
		return "server_fault"
	case KindNetworkFailure:
		return "network_failure"
	case KindOtherHTTPFailure:
		return "http_failure"
	default:
		return "unknown"
	}
}

// Sentinel errors for use with errors.Is.
var (
	ErrBusinessFailure = errors.New("business failure")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrServerFault     = errors.New("server fault")
	ErrNetworkFailure  = errors.New("network failure")
	ErrHTTPFailure     = errors.New("http failure")
)

// User-facing messages.
const (
	MsgBusinessFailure   = "operation failed"
	MsgUnauthenticated   = "session expired, please log in again"
	MsgForbidden         = "insufficient permission"
	MsgServerFault       = "server error, try again later"
	MsgNetworkFailure    = "network error"
	MsgTimeout           = "timeout"
	MsgCanceled          = "request canceled"
	MsgUnexpectedPayload = "unexpected response payload"
	MsgResponseTooLarge  = "response too large"
)

// Error is the single error type returned by Client for a failed call.
type Error struct {
	Kind Kind
	// Status is the HTTP status, 0 when no response was received.
	Status int
	// Code is the envelope business code for business failures.
	Code int
	// Message is the plain-text message shown to the user.
	Message string
	// ServerMessage is the `message` field the server sent, if any.
	ServerMessage string
	Method        string
	Path          string
	Err           error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("apiclient: ")
	b.WriteString(e.Kind.String())
	switch {
	case e.Status > 0 && e.Path != "":
		fmt.Fprintf(&b, " (%d %s %s)", e.Status, e.Method, e.Path)
	case e.Path != "":
		fmt.Fprintf(&b, " (%s %s)", e.Method, e.Path)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is supports errors.Is against the Kind sentinels.
func (e *Error) Is(target error) bool {
	switch e.Kind {
	case KindBusinessFailure:
		return target == ErrBusinessFailure
	case KindUnauthenticated:
		return target == ErrUnauthenticated
	case KindForbidden:
		return target == ErrForbidden
	case KindServerFault:
		return target == ErrServerFault
	case KindNetworkFailure:
		return target == ErrNetworkFailure
	case KindOtherHTTPFailure:
		return target == ErrHTTPFailure
	}
	return false
}

// KindOf returns the Kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e.Kind
	}
	return KindUnknown
}

// AsError extracts the *Error carried by err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e, true
	}
	return nil, false
}
