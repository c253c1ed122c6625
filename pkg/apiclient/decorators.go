package apiclient

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/go-go-golems/chatclient/pkg/session"
)

// RequestDecorator mutates an outbound request before it is sent.
type RequestDecorator func(req *http.Request) error

// JSONHeaders sets the default JSON content negotiation headers unless the
// caller already chose them.
func JSONHeaders() RequestDecorator {
	return func(req *http.Request) error {
		if req.Header.Get("Content-Type") == "" {
			req.Header.Set("Content-Type", "application/json")
		}
		if req.Header.Get("Accept") == "" {
			req.Header.Set("Accept", "application/json")
		}
		return nil
	}
}

// RequestID tags each request with a fresh X-Request-Id unless one is set.
func RequestID() RequestDecorator {
	return func(req *http.Request) error {
		if req.Header.Get("X-Request-Id") == "" {
			req.Header.Set("X-Request-Id", uuid.NewString())
		}
		return nil
	}
}

// Credential attaches the session token verbatim under header. The token is
// read per request so a cleared session is never sent.
func Credential(sess *session.Session, header string) RequestDecorator {
	if header == "" {
		header = DefaultAuthHeader
	}
	return func(req *http.Request) error {
		if sess == nil {
			return nil
		}
		if token, ok := sess.Token(req.Context()); ok {
			req.Header.Set(header, token)
		}
		return nil
	}
}

func chain(decorators []RequestDecorator) RequestDecorator {
	return func(req *http.Request) error {
		for _, d := range decorators {
			if d == nil {
				continue
			}
			if err := d(req); err != nil {
				return err
			}
		}
		return nil
	}
}
