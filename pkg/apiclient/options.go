package apiclient

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/go-go-golems/chatclient/pkg/notify"
)

const (
	DefaultBasePath   = "/api"
	DefaultTimeout    = 10 * time.Second
	DefaultAuthHeader = "Authorization"
	// DefaultMaxBodyBytes caps how much of a response body is read.
	DefaultMaxBodyBytes = 16 << 20
)

// Doer is the transport a Client sends requests through. *http.Client
// satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type DoerFunc func(req *http.Request) (*http.Response, error)

func (f DoerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

type Option func(*Client)

func WithBasePath(p string) Option {
	return func(c *Client) {
		c.basePath = "/" + strings.Trim(strings.TrimSpace(p), "/")
		if c.basePath == "/" {
			c.basePath = ""
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithTransport(d Doer) Option {
	return func(c *Client) {
		if d != nil {
			c.transport = d
		}
	}
}

// WithNavigator sets the collaborator invoked when a call is unauthenticated.
func WithNavigator(r Redirector) Option {
	return func(c *Client) {
		c.redirector = r
	}
}

func WithNotifier(n notify.Notifier) Option {
	return func(c *Client) {
		if n != nil {
			c.notifier = n
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithAuthHeader(h string) Option {
	return func(c *Client) {
		if h = strings.TrimSpace(h); h != "" {
			c.authHeader = h
		}
	}
}

func WithResponseMode(m ResponseMode) Option {
	return func(c *Client) {
		c.mode = m
	}
}

// WithDecorators appends request decorators that run after the built-in ones.
func WithDecorators(ds ...RequestDecorator) Option {
	return func(c *Client) {
		c.extra = append(c.extra, ds...)
	}
}

func WithMaxBodyBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBodyBytes = n
		}
	}
}
