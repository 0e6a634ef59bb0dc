// Package cas implements the module cache file: a flat JSON array of cache entries.
package cas

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/stitch/internal/core/domain"
	"go.trai.ch/stitch/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.CacheStore = (*Store)(nil)

// Store implements ports.CacheStore using a flat JSON file.
type Store struct {
	mu sync.Mutex
}

// NewStore creates a new Store.
func NewStore() *Store {
	return &Store{}
}

// Load reads every entry from path.
func (s *Store) Load(path string) ([]domain.CacheEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path = filepath.Clean(path)
	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.With(zerr.Wrap(domain.ErrCacheNotFound, "no cache file"), "path", path)
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to read cache file"), "path", path)
	}

	var entries []domain.CacheEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		corrupt := zerr.Wrap(domain.ErrCacheCorrupt, err.Error())
		return nil, zerr.With(corrupt, "path", path)
	}
	for i, e := range entries {
		if e.Name == "" || e.Fullpath == "" || len(e.Mtime) == 0 {
			corrupt := zerr.Wrap(domain.ErrCacheCorrupt, "entry without name, path or mtime")
			return nil, zerr.With(zerr.With(corrupt, "path", path), "index", i)
		}
	}
	return entries, nil
}

// Save overwrites path with entries.
func (s *Store) Save(path string, entries []domain.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entries == nil {
		entries = []domain.CacheEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return zerr.Wrap(err, "failed to marshal cache entries")
	}

	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return zerr.Wrap(err, "failed to create directory for cache file")
	}

	tmp := path + ".tmp"
	//nolint:gosec // Path is cleaned and provided by trusted caller
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write cache file"), "path", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to replace cache file"), "path", path)
	}
	return nil
}

// Remove deletes the cache file.
func (s *Store) Remove(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(filepath.Clean(path)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return zerr.With(zerr.Wrap(err, "failed to remove cache file"), "path", path)
	}
	return nil
}
