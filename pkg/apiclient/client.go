// Package apiclient mediates every call between the chat UI and the remote
// API. Each call is composed of three steps around the transport:
//
//   - decorate: default headers, request id and the session credential
//   - classify: decode the response into data or exactly one Kind of *Error
//   - react:    notify the user once, and on Unauthenticated clear the
//     session and redirect to the entry route
//
// There are no retries; a failed attempt is terminal for that call.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/chatclient/pkg/notify"
	"github.com/go-go-golems/chatclient/pkg/session"
)

// Redirector is the navigation collaborator. Implementations must tolerate
// repeated concurrent calls.
type Redirector interface {
	RedirectToEntry(ctx context.Context) error
}

type Client struct {
	baseURL      *url.URL
	basePath     string
	timeout      time.Duration
	transport    Doer
	session      *session.Session
	redirector   Redirector
	notifier     notify.Notifier
	logger       zerolog.Logger
	authHeader   string
	mode         ResponseMode
	extra        []RequestDecorator
	decorate     RequestDecorator
	maxBodyBytes int64
}

// New builds a client for the API served under baseURL (scheme and host, e.g.
// http://localhost:8000). sess may be nil for anonymous use.
func New(baseURL string, sess *session.Session, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, errors.Wrap(err, "apiclient: parse base url")
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("apiclient: base url %q must be absolute", baseURL)
	}
	u.RawQuery = ""
	u.Fragment = ""

	c := &Client{
		baseURL:      u,
		basePath:     DefaultBasePath,
		timeout:      DefaultTimeout,
		transport:    http.DefaultClient,
		session:      sess,
		notifier:     notify.Nop,
		logger:       log.Logger,
		authHeader:   DefaultAuthHeader,
		mode:         ModeAuto,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(c)
	}

	decorators := []RequestDecorator{
		JSONHeaders(),
		RequestID(),
		Credential(c.session, c.authHeader),
	}
	c.decorate = chain(append(decorators, c.extra...))
	return c, nil
}

func (c *Client) Session() *session.Session { return c.session }

func (c *Client) Timeout() time.Duration { return c.timeout }

// URL resolves a relative API path against the base URL and base path.
func (c *Client) URL(path string) (*url.URL, error) {
	rel, err := url.Parse(strings.TrimSpace(path))
	if err != nil {
		return nil, errors.Wrapf(err, "apiclient: parse path %q", path)
	}
	if rel.Scheme != "" || rel.Host != "" {
		return nil, errors.Errorf("apiclient: path %q must be relative", path)
	}
	u := *c.baseURL
	u.Path = joinPath(u.Path, c.basePath, rel.Path)
	u.RawPath = ""
	u.RawQuery = rel.RawQuery
	return &u, nil
}

func joinPath(parts ...string) string {
	var segs []string
	for _, p := range parts {
		if p = strings.Trim(p, "/"); p != "" {
			segs = append(segs, p)
		}
	}
	return "/" + strings.Join(segs, "/")
}

// Call sends one request and returns the unwrapped business payload: the
// envelope's data, or the raw body when the response is not an envelope.
// Every failure is an *Error.
func (c *Client) Call(ctx context.Context, method, path string, body any, headers http.Header) (json.RawMessage, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodGet
	}
	start := time.Now()
	logger := c.logger.With().Str("method", method).Str("path", path).Logger()

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	data, apiErr := c.roundTrip(callCtx, method, path, body, headers, &logger)
	if apiErr != nil {
		apiErr.Method = method
		apiErr.Path = path
		logger.Warn().
			Str("kind", apiErr.Kind.String()).
			Int("status", apiErr.Status).
			Dur("duration", time.Since(start)).
			Msg("api call failed")
		return nil, c.reject(context.WithoutCancel(ctx), apiErr)
	}

	logger.Debug().Dur("duration", time.Since(start)).Int("bytes", len(data)).Msg("api call succeeded")
	return data, nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body any, headers http.Header, logger *zerolog.Logger) (json.RawMessage, *Error) {
	req, err := c.newRequest(ctx, method, path, body, headers)
	if err != nil {
		return nil, &Error{Kind: KindNetworkFailure, Message: MsgNetworkFailure, Err: err}
	}
	logger.Debug().
		Str("url", req.URL.String()).
		Str("request_id", req.Header.Get("X-Request-Id")).
		Bool("has_token", req.Header.Get(c.authHeader) != "").
		Msg("api call")

	resp, err := c.transport.Do(req)
	if err != nil {
		return nil, networkError(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, tooLarge, readErr := readBody(resp.Body, c.maxBodyBytes)
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, classifyStatus(resp.StatusCode, raw)
	}
	if readErr != nil {
		return nil, networkError(ctx, readErr)
	}
	if tooLarge {
		return nil, &Error{
			Kind:    KindOtherHTTPFailure,
			Status:  resp.StatusCode,
			Message: MsgResponseTooLarge,
		}
	}
	return c.classifyBody(raw)
}

// readBody reads at most limit bytes. tooLarge reports that the body had more,
// in which case raw is truncated and must not be treated as a payload.
func readBody(body io.Reader, limit int64) (raw []byte, tooLarge bool, err error) {
	raw, err = io.ReadAll(io.LimitReader(body, limit+1))
	if int64(len(raw)) > limit {
		return raw[:limit], true, err
	}
	return raw, false, err
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any, headers http.Header) (*http.Request, error) {
	u, err := c.URL(path)
	if err != nil {
		return nil, err
	}
	reader, err := encodeBody(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, errors.Wrap(err, "apiclient: build request")
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if err := c.decorate(req); err != nil {
		return nil, errors.Wrap(err, "apiclient: decorate request")
	}
	return req, nil
}

func encodeBody(body any) (io.Reader, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return bytes.NewReader(b), nil
	case []byte:
		return bytes.NewReader(b), nil
	case io.Reader:
		return b, nil
	default:
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "apiclient: marshal request body")
		}
		return bytes.NewReader(buf), nil
	}
}

// classifyBody interprets a transport-successful body per the response mode.
func (c *Client) classifyBody(raw []byte) (json.RawMessage, *Error) {
	if c.mode == ModeRaw {
		return raw, nil
	}
	decoded := DecodeBody(raw)
	if !decoded.IsEnvelope() {
		if c.mode == ModeEnvelope {
			return nil, &Error{Kind: KindBusinessFailure, Message: MsgBusinessFailure}
		}
		return decoded.Raw, nil
	}
	env := decoded.Envelope
	if env.Succeeded() {
		return env.Data, nil
	}
	msg := env.Message
	if strings.TrimSpace(msg) == "" {
		msg = MsgBusinessFailure
	}
	return nil, &Error{
		Kind:          KindBusinessFailure,
		Code:          env.CodeInt(),
		Message:       msg,
		ServerMessage: env.Message,
	}
}

// classifyStatus maps an HTTP failure status to its Kind and message.
func classifyStatus(status int, raw []byte) *Error {
	srvMsg := serverMessage(raw)
	e := &Error{Status: status, ServerMessage: srvMsg}
	switch {
	case status == http.StatusUnauthorized:
		e.Kind = KindUnauthenticated
		e.Message = MsgUnauthenticated
	case status == http.StatusForbidden:
		e.Kind = KindForbidden
		e.Message = MsgForbidden
	case status >= http.StatusInternalServerError:
		e.Kind = KindServerFault
		e.Message = MsgServerFault
	default:
		e.Kind = KindOtherHTTPFailure
		e.Message = srvMsg
		if strings.TrimSpace(e.Message) == "" {
			e.Message = statusMessage(status)
		}
	}
	return e
}

func statusMessage(status int) string {
	if text := http.StatusText(status); text != "" {
		return fmt.Sprintf("request failed with status %d (%s)", status, strings.ToLower(text))
	}
	return fmt.Sprintf("request failed with status %d", status)
}

func networkError(ctx context.Context, err error) *Error {
	e := &Error{Kind: KindNetworkFailure, Message: MsgNetworkFailure, Err: err}
	var ne net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		e.Message = MsgTimeout
	case errors.As(err, &ne) && ne.Timeout():
		e.Message = MsgTimeout
	case errors.Is(err, context.Canceled):
		e.Message = MsgCanceled
	}
	return e
}

// reject performs the side effects of a classified failure and returns it.
// The Unauthenticated recovery runs once per failed call.
func (c *Client) reject(ctx context.Context, e *Error) *Error {
	c.notifier.Notify(ctx, notify.Notification{
		Level:   notify.LevelError,
		Message: e.Message,
		Kind:    e.Kind.String(),
		Status:  e.Status,
		Method:  e.Method,
		Path:    e.Path,
		At:      time.Now(),
	})

	if e.Kind == KindUnauthenticated {
		if c.session != nil {
			if err := c.session.ClearToken(ctx); err != nil {
				c.logger.Error().Err(err).Msg("could not clear session after 401")
			}
		}
		if c.redirector != nil {
			if err := c.redirector.RedirectToEntry(ctx); err != nil {
				c.logger.Error().Err(err).Msg("could not redirect to entry after 401")
			}
		}
	}
	return e
}

func (c *Client) Get(ctx context.Context, path string, headers http.Header) (json.RawMessage, error) {
	return c.Call(ctx, http.MethodGet, path, nil, headers)
}

func (c *Client) Post(ctx context.Context, path string, body any, headers http.Header) (json.RawMessage, error) {
	return c.Call(ctx, http.MethodPost, path, body, headers)
}

func (c *Client) Put(ctx context.Context, path string, body any, headers http.Header) (json.RawMessage, error) {
	return c.Call(ctx, http.MethodPut, path, body, headers)
}

func (c *Client) Delete(ctx context.Context, path string, headers http.Header) (json.RawMessage, error) {
	return c.Call(ctx, http.MethodDelete, path, nil, headers)
}

// Do performs Call and decodes the payload into T. A payload that does not
// decode is rejected as a business failure. A non-JSON payload decodes into a
// string T verbatim.
func Do[T any](ctx context.Context, c *Client, method, path string, body any, headers http.Header) (T, error) {
	var out T
	raw, err := c.Call(ctx, method, path, body, headers)
	if err != nil {
		return out, err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return out, nil
	}
	if s, ok := any(&out).(*string); ok && !json.Valid(trimmed) {
		*s = string(raw)
		return out, nil
	}
	if err := json.Unmarshal(trimmed, &out); err != nil {
		if ctx == nil {
			ctx = context.Background()
		}
		var zero T
		return zero, c.reject(ctx, &Error{
			Kind:    KindBusinessFailure,
			Message: MsgUnexpectedPayload,
			Method:  strings.ToUpper(method),
			Path:    path,
			Err:     err,
		})
	}
	return out, nil
}
