package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T, store Store) *Session {
	t.Helper()
	s, err := New(store, WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func exerciseSession(t *testing.T, s *Session) {
	t.Helper()
	ctx := context.Background()

	_, ok := s.Token(ctx)
	require.False(t, ok)

	require.NoError(t, s.SetToken(ctx, "tok-1"))
	tok, ok := s.Token(ctx)
	require.True(t, ok)
	require.Equal(t, "tok-1", tok)

	// at most one token is held
	require.NoError(t, s.SetToken(ctx, "tok-2"))
	tok, ok = s.Token(ctx)
	require.True(t, ok)
	require.Equal(t, "tok-2", tok)

	require.NoError(t, s.ClearToken(ctx))
	require.False(t, s.HasToken(ctx))

	// clearing twice is fine
	require.NoError(t, s.ClearToken(ctx))
	require.False(t, s.HasToken(ctx))
}

func TestNew_RequiresStore(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}

func TestSession_MemoryStore(t *testing.T) {
	exerciseSession(t, newSession(t, NewMemoryStore()))
}

func TestSession_FileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)
	exerciseSession(t, newSession(t, store))

	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err), "empty store removes its file")
}

func TestSession_FileStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")

	store, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, newSession(t, store).SetToken(ctx, "persisted"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	if filepath.Separator == '/' {
		require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	tok, ok := newSession(t, reopened).Token(ctx)
	require.True(t, ok)
	require.Equal(t, "persisted", tok)
}

func TestSession_FileStoreCorruptFileReadsAsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store, err := NewFileStore(path)
	require.NoError(t, err)
	_, ok := newSession(t, store).Token(context.Background())
	require.False(t, ok)
}

func TestSession_SQLiteStore(t *testing.T) {
	dsn, err := SQLiteDSNForFile(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	store, err := NewSQLiteStore(dsn)
	require.NoError(t, err)
	exerciseSession(t, newSession(t, store))
}

func TestSession_SQLiteStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dsn, err := SQLiteDSNForFile(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)

	store, err := NewSQLiteStore(dsn)
	require.NoError(t, err)
	s := newSession(t, store)
	require.NoError(t, s.SetToken(ctx, "abc"))
	require.NoError(t, s.Close())

	store2, err := NewSQLiteStore(dsn)
	require.NoError(t, err)
	tok, ok := newSession(t, store2).Token(ctx)
	require.True(t, ok)
	require.Equal(t, "abc", tok)
}

func TestSession_RedisStore(t *testing.T) {
	addr := os.Getenv("CHATCLIENT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("CHATCLIENT_TEST_REDIS_ADDR not set")
	}
	store, err := NewRedisStore(addr, "chatclient:test:")
	require.NoError(t, err)
	exerciseSession(t, newSession(t, store))
}

func TestSession_CustomKeyAndEmptySetClears(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	s, err := New(mem, WithKey("jwt"), WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	require.NoError(t, s.SetToken(ctx, "x"))
	v, ok, err := mem.Get(ctx, "jwt")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "x", v)

	require.NoError(t, s.SetToken(ctx, ""))
	require.False(t, s.HasToken(ctx))
}

func TestOpenStore(t *testing.T) {
	dir := t.TempDir()

	st, err := OpenStore(Settings{Backend: "memory"})
	require.NoError(t, err)
	require.IsType(t, &MemoryStore{}, st)

	st, err = OpenStore(Settings{Path: filepath.Join(dir, "s.json")})
	require.NoError(t, err)
	require.IsType(t, &FileStore{}, st)

	st, err = OpenStore(Settings{Backend: "sqlite", Path: filepath.Join(dir, "s.db")})
	require.NoError(t, err)
	require.IsType(t, &SQLiteStore{}, st)
	require.NoError(t, st.Close())

	_, err = OpenStore(Settings{Backend: "etcd"})
	require.Error(t, err)
}
