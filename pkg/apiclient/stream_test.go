package apiclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/chatclient/pkg/apiclient"
	"github.com/go-go-golems/chatclient/pkg/nav"
	"github.com/go-go-golems/chatclient/pkg/notify"
	"github.com/go-go-golems/chatclient/pkg/session"
)

func TestDialStream(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat/stream" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "good" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"expired"}`))
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.WriteMessage(mt, append([]byte("echo:"), msg...))
	}))
	t.Cleanup(srv.Close)

	ctx := context.Background()
	sess, err := session.New(session.NewMemoryStore(), session.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	navCalls := 0
	policy, err := nav.New(nav.DefaultRoutes(), nav.NavigatorFunc(func(context.Context, string) error {
		navCalls++
		return nil
	}), nav.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	require.NoError(t, policy.Navigate(ctx, nav.ChatPath))
	navCalls = 0

	notes := &notify.Recorder{}
	c, err := apiclient.New(srv.URL, sess,
		apiclient.WithNavigator(policy),
		apiclient.WithNotifier(notes),
		apiclient.WithLogger(zerolog.Nop()),
	)
	require.NoError(t, err)

	t.Run("authorized", func(t *testing.T) {
		require.NoError(t, sess.SetToken(ctx, "good"))
		conn, err := c.DialStream(ctx, "/chat/stream", nil)
		require.NoError(t, err)
		defer func() { _ = conn.Close() }()

		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("hi")))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		require.Equal(t, "echo:hi", string(msg))
		require.Zero(t, notes.Len())
	})

	t.Run("unknown path", func(t *testing.T) {
		notes.Reset()
		_, err := c.DialStream(ctx, "/nope", nil)
		require.Equal(t, apiclient.KindOtherHTTPFailure, apiclient.KindOf(err))
		require.Equal(t, 1, notes.Len())
		require.True(t, sess.HasToken(ctx))
	})

	t.Run("expired token", func(t *testing.T) {
		notes.Reset()
		require.NoError(t, sess.SetToken(ctx, "stale"))
		_, err := c.DialStream(ctx, "/chat/stream", nil)
		apiErr, ok := apiclient.AsError(err)
		require.True(t, ok)
		require.Equal(t, apiclient.KindUnauthenticated, apiErr.Kind)
		require.Equal(t, "WS", apiErr.Method)
		require.Equal(t, "expired", apiErr.ServerMessage)

		require.False(t, sess.HasToken(ctx))
		require.Equal(t, nav.EntryPath, policy.Current())
		require.Equal(t, 1, navCalls)
		require.Equal(t, 1, notes.Len())
	})
}
