// Package nav is the navigation policy: a static route table evaluated once,
// and the redirect-to-entry side effect the API client triggers when a
// session is no longer authenticated.
package nav

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

var ErrUnknownRoute = errors.New("nav: unknown route")

// Navigator is the UI collaborator that actually moves to a path.
type Navigator interface {
	Navigate(ctx context.Context, path string) error
}

type NavigatorFunc func(ctx context.Context, path string) error

func (f NavigatorFunc) Navigate(ctx context.Context, path string) error {
	return f(ctx, path)
}

type Policy struct {
	routes    map[string]Route
	ordered   []Route
	entry     string
	navigator Navigator
	logger    zerolog.Logger

	redirects singleflight.Group

	mu      sync.Mutex
	current string
}

type Option func(*Policy)

func WithLogger(logger zerolog.Logger) Option {
	return func(p *Policy) {
		p.logger = logger
	}
}

// New validates the route table once. A nil navigator only tracks state.
func New(routes []Route, navigator Navigator, opts ...Option) (*Policy, error) {
	if len(routes) == 0 {
		return nil, errors.New("nav: no routes")
	}
	p := &Policy{
		routes:    make(map[string]Route, len(routes)),
		ordered:   make([]Route, 0, len(routes)),
		navigator: navigator,
		logger:    log.Logger,
	}
	for _, opt := range opts {
		opt(p)
	}

	for _, r := range routes {
		r.Path = NormalizePath(r.Path)
		if _, dup := p.routes[r.Path]; dup {
			return nil, errors.Errorf("nav: duplicate route %q", r.Path)
		}
		if r.Entry {
			if p.entry != "" {
				return nil, errors.Errorf("nav: multiple entry routes (%q, %q)", p.entry, r.Path)
			}
			p.entry = r.Path
		}
		p.routes[r.Path] = r
		p.ordered = append(p.ordered, r)
	}
	if p.entry == "" {
		root, ok := p.routes[EntryPath]
		if !ok {
			return nil, errors.New("nav: no entry route and no root route")
		}
		root.Entry = true
		p.routes[EntryPath] = root
		p.entry = EntryPath
	}
	return p, nil
}

// RouteFor resolves a path against the static table.
func (p *Policy) RouteFor(path string) (Route, bool) {
	r, ok := p.routes[NormalizePath(path)]
	return r, ok
}

func (p *Policy) Routes() []Route {
	out := make([]Route, len(p.ordered))
	copy(out, p.ordered)
	return out
}

func (p *Policy) EntryPath() string { return p.entry }

// Current is the last path successfully navigated to, empty before the first
// navigation.
func (p *Policy) Current() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *Policy) Navigate(ctx context.Context, path string) error {
	route, ok := p.RouteFor(path)
	if !ok {
		return errors.Wrapf(ErrUnknownRoute, "%s", path)
	}
	if p.navigator != nil {
		if err := p.navigator.Navigate(ctx, route.Path); err != nil {
			return errors.Wrapf(err, "nav: navigate to %s", route.Path)
		}
	}
	p.mu.Lock()
	p.current = route.Path
	p.mu.Unlock()
	p.logger.Debug().Str("path", route.Path).Bool("show_chrome", route.ShowChrome).Msg("navigated")
	return nil
}

// RedirectToEntry moves to the entry route. Concurrent callers share a single
// navigation, and calling it while already at the entry route is a no-op.
func (p *Policy) RedirectToEntry(ctx context.Context) error {
	_, err, shared := p.redirects.Do("entry", func() (interface{}, error) {
		if p.Current() == p.entry {
			return nil, nil
		}
		return nil, p.Navigate(ctx, p.entry)
	})
	if shared {
		p.logger.Debug().Msg("redirect to entry coalesced")
	}
	return err
}
