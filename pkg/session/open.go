package session

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Settings selects and configures a Store backend.
type Settings struct {
	Backend   string // file, sqlite, redis or memory
	Path      string
	RedisAddr string
}

func OpenStore(s Settings) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(s.Backend)) {
	case "", "file":
		return NewFileStore(s.Path)
	case "sqlite":
		dsn, err := SQLiteDSNForFile(s.Path)
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
			return nil, errors.Wrap(err, "sqlite session store: create directory")
		}
		return NewSQLiteStore(dsn)
	case "redis":
		return NewRedisStore(s.RedisAddr, "")
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, errors.Errorf("session: unknown backend %q", s.Backend)
	}
}
