package auth_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/chatclient/pkg/apiclient"
	"github.com/go-go-golems/chatclient/pkg/auth"
	"github.com/go-go-golems/chatclient/pkg/notify"
	"github.com/go-go-golems/chatclient/pkg/session"
)

func newClient(t *testing.T, handler http.HandlerFunc) (*apiclient.Client, *session.Session, *notify.Recorder) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	sess, err := session.New(session.NewMemoryStore(), session.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	notes := &notify.Recorder{}
	c, err := apiclient.New(srv.URL, sess, apiclient.WithNotifier(notes), apiclient.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	return c, sess, notes
}

func TestLogin_StoresToken(t *testing.T) {
	payloads := map[string]string{
		"envelope access_token": `{"success":true,"data":{"access_token":"tok-1","token_type":"bearer"}}`,
		"raw token field":       `{"token":"tok-1"}`,
		"envelope bare string":  `{"code":200,"data":"tok-1"}`,
	}
	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			seen := make(chan auth.Credentials, 1)
			c, sess, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/api/auth/login", r.URL.Path)
				require.Equal(t, http.MethodPost, r.Method)
				b, _ := io.ReadAll(r.Body)
				var got auth.Credentials
				_ = json.Unmarshal(b, &got)
				seen <- got
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, payload)
			})
			ctx := context.Background()

			token, err := auth.Login(ctx, c, sess, " alice ", "secret")
			require.NoError(t, err)
			require.Equal(t, "tok-1", token)
			require.Equal(t, auth.Credentials{Username: "alice", Password: "secret"}, <-seen)

			stored, ok := sess.Token(ctx)
			require.True(t, ok)
			require.Equal(t, "tok-1", stored)
		})
	}
}

func TestLogin_Failure(t *testing.T) {
	c, sess, notes := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"success":false,"code":1002,"message":"wrong password"}`)
	})
	ctx := context.Background()

	_, err := auth.Login(ctx, c, sess, "alice", "nope")
	require.Equal(t, apiclient.KindBusinessFailure, apiclient.KindOf(err))
	require.False(t, sess.HasToken(ctx))
	require.Equal(t, 1, notes.Len())
	require.Equal(t, "wrong password", notes.Notifications()[0].Message)

	_, err = auth.Login(ctx, c, sess, "  ", "x")
	require.Error(t, err)
}

func TestLogin_NoToken(t *testing.T) {
	c, sess, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":true,"data":{"user":"alice"}}`)
	})
	_, err := auth.Login(context.Background(), c, sess, "alice", "pw")
	require.True(t, errors.Is(err, auth.ErrNoToken))
	require.False(t, sess.HasToken(context.Background()))
}

func TestLogout(t *testing.T) {
	var calls, status atomic.Int32
	status.Store(http.StatusOK)
	c, sess, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, "/api/auth/logout", r.URL.Path)
		require.Equal(t, "tok", r.Header.Get("Authorization"))
		w.WriteHeader(int(status.Load()))
	})
	ctx := context.Background()

	require.NoError(t, sess.SetToken(ctx, "tok"))
	require.NoError(t, auth.Logout(ctx, c, sess))
	require.False(t, sess.HasToken(ctx))
	require.Equal(t, int32(1), calls.Load())

	// no token, no server call
	require.NoError(t, auth.Logout(ctx, c, sess))
	require.Equal(t, int32(1), calls.Load())

	status.Store(http.StatusInternalServerError)
	require.NoError(t, sess.SetToken(ctx, "tok"))
	require.NoError(t, auth.Logout(ctx, c, sess))
	require.False(t, sess.HasToken(ctx))
	require.Equal(t, int32(2), calls.Load())
}

func TestExtractToken(t *testing.T) {
	cases := map[string]string{
		`"abc"`:                     "abc",
		`{"access_token":"abc"}`:    "abc",
		`{"accessToken":"abc"}`:     "abc",
		`{"token":"abc","other":1}`: "abc",
		`{"access_token":""}`:       "",
		`{"token":5}`:               "",
		`["abc"]`:                   "",
		`null`:                      "",
		``:                          "",
		`abc.def.ghi`:               "abc.def.ghi",
		`123`:                       "",
	}
	for in, want := range cases {
		require.Equal(t, want, auth.ExtractToken(json.RawMessage(in)), in)
	}
}
