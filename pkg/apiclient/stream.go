package apiclient

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

// DialStream opens a websocket under the API base path carrying the same
// decorated headers as Call. A handshake refused with an HTTP status is
// classified and side-effected exactly like a failed Call.
func (c *Client) DialStream(ctx context.Context, path string, headers http.Header) (*websocket.Conn, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	logger := c.logger.With().Str("method", "WS").Str("path", path).Logger()

	conn, apiErr := c.dial(ctx, path, headers)
	if apiErr != nil {
		apiErr.Method = "WS"
		apiErr.Path = path
		logger.Warn().
			Str("kind", apiErr.Kind.String()).
			Int("status", apiErr.Status).
			Dur("duration", time.Since(start)).
			Msg("stream dial failed")
		return nil, c.reject(context.WithoutCancel(ctx), apiErr)
	}
	logger.Debug().Dur("duration", time.Since(start)).Msg("stream connected")
	return conn, nil
}

func (c *Client) dial(ctx context.Context, path string, headers http.Header) (*websocket.Conn, *Error) {
	u, err := c.URL(path)
	if err != nil {
		return nil, &Error{Kind: KindNetworkFailure, Message: MsgNetworkFailure, Err: err}
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}

	// Decorate a throwaway request to reuse the header pipeline.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &Error{Kind: KindNetworkFailure, Message: MsgNetworkFailure, Err: errors.Wrap(err, "apiclient: build stream request")}
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if err := c.decorate(req); err != nil {
		return nil, &Error{Kind: KindNetworkFailure, Message: MsgNetworkFailure, Err: errors.Wrap(err, "apiclient: decorate stream request")}
	}
	req.Header.Del("Content-Type")

	dialCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: c.timeout,
	}
	conn, resp, err := dialer.DialContext(dialCtx, u.String(), req.Header)
	if err == nil {
		return conn, nil
	}
	if resp == nil {
		return nil, networkError(dialCtx, err)
	}
	var raw []byte
	if resp.Body != nil {
		raw, _, _ = readBody(resp.Body, c.maxBodyBytes)
		_ = resp.Body.Close()
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, classifyStatus(resp.StatusCode, raw)
	}
	return nil, &Error{
		Kind:    KindOtherHTTPFailure,
		Status:  resp.StatusCode,
		Message: statusMessage(resp.StatusCode),
		Err:     err,
	}
}
