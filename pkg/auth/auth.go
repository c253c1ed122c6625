// Package auth holds the login and logout flows that create and destroy the
// session token. Both go through the API client so they share its headers,
// classification, and notifications.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/chatclient/pkg/apiclient"
	"github.com/go-go-golems/chatclient/pkg/session"
)

const (
	LoginPath  = "/auth/login"
	LogoutPath = "/auth/logout"
)

// ErrNoToken is returned when a login succeeds at the transport level but the
// payload carries no token.
var ErrNoToken = errors.New("auth: login response carried no token")

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login posts the credentials and stores the returned token in sess. The
// payload may be an object with `access_token` or `token`, or a bare string.
func Login(ctx context.Context, c *apiclient.Client, sess *session.Session, username, password string) (string, error) {
	if c == nil {
		return "", errors.New("auth: client is nil")
	}
	if sess == nil {
		return "", errors.New("auth: session is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return "", errors.New("auth: username is empty")
	}

	data, err := c.Post(ctx, LoginPath, Credentials{Username: username, Password: password}, nil)
	if err != nil {
		return "", err
	}
	token := ExtractToken(data)
	if token == "" {
		return "", ErrNoToken
	}
	if err := sess.SetToken(ctx, token); err != nil {
		return "", errors.Wrap(err, "auth: store token")
	}
	log.Debug().Str("username", username).Msg("logged in")
	return token, nil
}

// Logout tells the server the session ends and clears the local token. The
// server call is best effort; the token is cleared even when it fails.
func Logout(ctx context.Context, c *apiclient.Client, sess *session.Session) error {
	if sess == nil {
		return errors.New("auth: session is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if c != nil && sess.HasToken(ctx) {
		if _, err := c.Post(ctx, LogoutPath, nil, nil); err != nil {
			log.Debug().Err(err).Msg("server logout failed, clearing local session anyway")
		}
	}
	return sess.ClearToken(ctx)
}

// ExtractToken pulls a token out of a login payload. It returns "" when none
// is found.
func ExtractToken(data json.RawMessage) string {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return ""
		}
		return strings.TrimSpace(s)
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return ""
		}
		for _, key := range []string{"access_token", "accessToken", "token"} {
			var s string
			if err := json.Unmarshal(fields[key], &s); err == nil && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
		return ""
	case '[':
		return ""
	default:
		if !json.Valid(trimmed) {
			return string(trimmed)
		}
		return ""
	}
}
