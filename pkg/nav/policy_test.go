package nav

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type countingNavigator struct {
	calls atomic.Int32
	mu    sync.Mutex
	paths []string
	err   error
}

func (n *countingNavigator) Navigate(_ context.Context, path string) error {
	n.calls.Add(1)
	if n.err != nil {
		return n.err
	}
	n.mu.Lock()
	n.paths = append(n.paths, path)
	n.mu.Unlock()
	return nil
}

func newPolicy(t *testing.T, navigator Navigator) *Policy {
	t.Helper()
	p, err := New(DefaultRoutes(), navigator, WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	return p
}

func TestRouteFor_DefaultTable(t *testing.T) {
	p := newPolicy(t, nil)

	r, ok := p.RouteFor("/")
	require.True(t, ok)
	require.Equal(t, "LoginPage", r.Component)
	require.False(t, r.ShowChrome)

	r, ok = p.RouteFor("/chat")
	require.True(t, ok)
	require.Equal(t, "ChatPage", r.Component)
	require.True(t, r.ShowChrome)

	r, ok = p.RouteFor(" chat/?tab=1")
	require.True(t, ok)
	require.Equal(t, "/chat", r.Path)

	_, ok = p.RouteFor("/settings")
	require.False(t, ok)

	require.Equal(t, "/", p.EntryPath())
	require.Len(t, p.Routes(), 2)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, nil)
	require.Error(t, err)

	_, err = New([]Route{{Path: "/a"}, {Path: "/a/"}}, nil)
	require.Error(t, err)

	_, err = New([]Route{{Path: "/a", Entry: true}, {Path: "/b", Entry: true}}, nil)
	require.Error(t, err)

	_, err = New([]Route{{Path: "/chat"}}, nil)
	require.Error(t, err)

	p, err := New([]Route{{Path: "/login", Entry: true}, {Path: "/chat"}}, nil)
	require.NoError(t, err)
	require.Equal(t, "/login", p.EntryPath())
}

func TestNavigate(t *testing.T) {
	nav := &countingNavigator{}
	p := newPolicy(t, nav)
	ctx := context.Background()

	require.Equal(t, "", p.Current())
	require.NoError(t, p.Navigate(ctx, "/chat"))
	require.Equal(t, "/chat", p.Current())

	err := p.Navigate(ctx, "/nope")
	require.True(t, errors.Is(err, ErrUnknownRoute))
	require.Equal(t, "/chat", p.Current())
}

func TestNavigate_NavigatorErrorKeepsState(t *testing.T) {
	nav := &countingNavigator{err: errors.New("router detached")}
	p := newPolicy(t, nav)

	require.Error(t, p.Navigate(context.Background(), "/chat"))
	require.Equal(t, "", p.Current())
}

func TestRedirectToEntry_Idempotent(t *testing.T) {
	nav := &countingNavigator{}
	p := newPolicy(t, nav)
	ctx := context.Background()
	require.NoError(t, p.Navigate(ctx, "/chat"))

	require.NoError(t, p.RedirectToEntry(ctx))
	require.NoError(t, p.RedirectToEntry(ctx))

	require.Equal(t, "/", p.Current())
	require.Equal(t, int32(2), nav.calls.Load())
	require.Equal(t, []string{"/chat", "/"}, nav.paths)
}

func TestRedirectToEntry_ConcurrentSingleNavigation(t *testing.T) {
	nav := &countingNavigator{}
	p := newPolicy(t, nav)
	ctx := context.Background()
	require.NoError(t, p.Navigate(ctx, "/chat"))

	var eg errgroup.Group
	for i := 0; i < 16; i++ {
		eg.Go(func() error { return p.RedirectToEntry(ctx) })
	}
	require.NoError(t, eg.Wait())

	require.Equal(t, "/", p.Current())
	require.Equal(t, int32(2), nav.calls.Load())
}

func TestLoadRoutes(t *testing.T) {
	routes, err := LoadRoutes(strings.NewReader(`
routes:
  - path: /
    name: login
    component: LoginPage
    entry: true
  - path: /chat
    name: chat
    component: ChatPage
    show_chrome: true
`))
	require.NoError(t, err)
	require.Len(t, routes, 2)
	require.True(t, routes[0].Entry)
	require.True(t, routes[1].ShowChrome)

	_, err = LoadRoutes(strings.NewReader(""))
	require.Error(t, err)

	_, err = LoadRoutes(strings.NewReader("routes: []\n"))
	require.Error(t, err)

	_, err = LoadRoutes(strings.NewReader("routes:\n  - path: /\n    colour: red\n"))
	require.Error(t, err)
}

func TestNormalizePath(t *testing.T) {
	require.Equal(t, "/", NormalizePath(""))
	require.Equal(t, "/", NormalizePath("//"))
	require.Equal(t, "/chat", NormalizePath("chat"))
	require.Equal(t, "/chat", NormalizePath("/chat/#bottom"))
}
