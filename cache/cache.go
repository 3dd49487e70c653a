package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Store is a file-backed cache for public API responses, keyed by request
// URL. A nil *Store is valid and disables caching.
type Store struct {
	dir    string
	maxAge time.Duration
}

func NewStore(dir string, maxAge time.Duration) *Store {
	if dir == "" || maxAge <= 0 {
		return nil
	}
	return &Store{dir: dir, maxAge: maxAge}
}

// pathFor returns the cache file path for a request key.
func (s *Store) pathFor(key string) string {
	hash := xxhash.Sum64String(key)
	return filepath.Join(s.dir, fmt.Sprintf("%016x.json", hash))
}

// Read returns the cached body for key if present and not expired.
func (s *Store) Read(key string) ([]byte, bool) {
	if s == nil {
		return nil, false
	}

	path := s.pathFor(key)
	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}

	if time.Since(info.ModTime()) > s.maxAge {
		return nil, false
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	return content, true
}

// Write stores a response body for key.
func (s *Store) Write(key string, body []byte) error {
	if s == nil {
		return nil
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(s.pathFor(key), body, 0644)
}

// Clear drops every cached response. Content mutations call this instead of
// invalidating individual keys.
func (s *Store) Clear() error {
	if s == nil {
		return nil
	}
	err := os.RemoveAll(s.dir)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ClearExpired removes cache files older than maxAge.
func (s *Store) ClearExpired() error {
	if s == nil {
		return nil
	}
	return filepath.Walk(s.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		if time.Since(info.ModTime()) > s.maxAge {
			os.Remove(path)
		}
		return nil
	})
}
