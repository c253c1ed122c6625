// Package session holds the single authentication token used by the API client.
//
// A Session is a process-wide facade over a durable Store slot. Reads always go
// through to the backend so that a clear is visible to the very next caller.
package session

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Session struct {
	mu     sync.RWMutex
	store  Store
	key    string
	logger zerolog.Logger
}

type Option func(*Session)

func WithKey(key string) Option {
	return func(s *Session) {
		if k := strings.TrimSpace(key); k != "" {
			s.key = k
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

func New(store Store, opts ...Option) (*Session, error) {
	if store == nil {
		return nil, errors.New("session: store is nil")
	}
	s := &Session{
		store:  store,
		key:    DefaultKey,
		logger: log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Token returns the stored token. A backend read error is logged and reported
// as an absent token; the caller then proceeds unauthenticated.
func (s *Session) Token(ctx context.Context) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok, err := s.store.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", s.key).Msg("session token read failed")
		return "", false
	}
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (s *Session) HasToken(ctx context.Context) bool {
	_, ok := s.Token(ctx)
	return ok
}

// SetToken replaces the held token. An empty token clears the session.
func (s *Session) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return s.ClearToken(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Set(ctx, s.key, token); err != nil {
		return errors.Wrap(err, "session: set token")
	}
	s.logger.Debug().Str("key", s.key).Msg("session token stored")
	return nil
}

// ClearToken removes the token. Clearing an empty session is a no-op.
func (s *Session) ClearToken(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Delete(ctx, s.key); err != nil {
		return errors.Wrap(err, "session: clear token")
	}
	s.logger.Debug().Str("key", s.key).Msg("session token cleared")
	return nil
}

func (s *Session) Close() error {
	if s == nil || s.store == nil {
		return nil
	}
	return s.store.Close()
}
