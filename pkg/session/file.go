package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// FileStore persists slots as a small JSON object on disk, the local-storage
// equivalent for a CLI. Writes replace the file atomically.
type FileStore struct {
	mu   sync.Mutex
	path string
}

var _ Store = &FileStore{}

func NewFileStore(path string) (*FileStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("file session store: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrap(err, "file session store: create directory")
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slots, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := slots[key]
	return v, ok, nil
}

func (s *FileStore) Set(_ context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	slots, err := s.load()
	if err != nil {
		return err
	}
	slots[key] = value
	return s.save(slots)
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	slots, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := slots[key]; !ok {
		return nil
	}
	delete(slots, key)
	if len(slots) == 0 {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			return errors.Wrap(err, "file session store: remove")
		}
		return nil
	}
	return s.save(slots)
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) load() (map[string]string, error) {
	slots := map[string]string{}
	b, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return slots, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "file session store: read")
	}
	if len(b) == 0 {
		return slots, nil
	}
	if err := json.Unmarshal(b, &slots); err != nil {
		return nil, errors.Wrap(err, "file session store: decode")
	}
	return slots, nil
}

func (s *FileStore) save(slots map[string]string) error {
	b, err := json.MarshalIndent(slots, "", "  ")
	if err != nil {
		return errors.Wrap(err, "file session store: encode")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return errors.Wrap(err, "file session store: write")
	}
	if err := os.Rename(tmp, s.path); err == nil {
		return nil
	}

	defer func() { _ = os.Remove(tmp) }()
	if runtime.GOOS == "windows" {
		_ = os.Remove(s.path)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "file session store: replace")
	}
	return nil
}
