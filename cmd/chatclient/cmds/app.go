package cmds

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/chatclient/pkg/apiclient"
	"github.com/go-go-golems/chatclient/pkg/nav"
	"github.com/go-go-golems/chatclient/pkg/notify"
	"github.com/go-go-golems/chatclient/pkg/notify/pubsub"
	"github.com/go-go-golems/chatclient/pkg/session"
)

// App is the wired client layer a command runs against.
type App struct {
	Settings Settings
	Session  *session.Session
	Client   *apiclient.Client
	Policy   *nav.Policy
	Notifier notify.Notifier

	stderr  io.Writer
	closers []func() error
}

func NewApp(s Settings, stderr io.Writer) (*App, error) {
	a := &App{Settings: s, stderr: stderr}

	routes, err := loadRoutes(s.RoutesFile)
	if err != nil {
		return nil, err
	}
	a.Policy, err = nav.New(routes, nav.NavigatorFunc(a.navigate))
	if err != nil {
		return nil, err
	}

	store, err := session.OpenStore(session.Settings{
		Backend:   s.SessionBackend,
		Path:      s.SessionPath,
		RedisAddr: s.RedisAddr,
	})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.Close)
	a.Session, err = session.New(store, session.WithKey(s.SessionKey))
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.Notifier, err = a.buildNotifier()
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.Client, err = apiclient.New(s.BaseURL, a.Session,
		apiclient.WithBasePath(s.BasePath),
		apiclient.WithTimeout(s.Timeout),
		apiclient.WithAuthHeader(s.AuthHeader),
		apiclient.WithResponseMode(apiclient.ParseResponseMode(s.ResponseMode)),
		apiclient.WithNavigator(a.Policy),
		apiclient.WithNotifier(a.Notifier),
	)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) buildNotifier() (notify.Notifier, error) {
	terminal := notify.NewTerminalNotifier(a.stderr)
	switch strings.ToLower(a.Settings.NotifyBackend) {
	case "", "terminal":
		return terminal, nil
	case "log":
		return notify.NewLogNotifier(log.Logger), nil
	case "pubsub":
		t, err := buildTransport(a.Settings)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, t.Close)
		return notify.Multi(terminal, notify.NewPubSubNotifier(t.Publisher, a.Settings.NotifyTopic)), nil
	default:
		return nil, errors.Errorf("unknown notify backend %q", a.Settings.NotifyBackend)
	}
}

func buildTransport(s Settings) (*pubsub.Transport, error) {
	ps := pubsub.DefaultSettings()
	ps.RedisEnabled = true
	if s.RedisAddr != "" {
		ps.RedisAddr = s.RedisAddr
	}
	return pubsub.Build(ps, log.Logger)
}

// navigate stands in for the page router: the CLI has no pages, so moving to
// the entry route tells the user to sign in again.
func (a *App) navigate(_ context.Context, path string) error {
	log.Debug().Str("path", path).Msg("navigate")
	if path == a.Policy.EntryPath() {
		_, _ = fmt.Fprintln(a.stderr, "signed out, run `chatclient login` to sign in again")
	}
	return nil
}

// EnterChat marks the session as being on the chat page so a later 401 has
// somewhere to redirect from.
func (a *App) EnterChat(ctx context.Context) {
	if !a.Session.HasToken(ctx) {
		return
	}
	if err := a.Policy.Navigate(ctx, nav.ChatPath); err != nil {
		log.Debug().Err(err).Msg("no chat route")
	}
}

func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

func loadRoutes(path string) ([]nav.Route, error) {
	if path == "" {
		return nav.DefaultRoutes(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open routes file")
	}
	defer func() { _ = f.Close() }()
	return nav.LoadRoutes(f)
}
