package ports

import "go.trai.ch/stitch/internal/core/domain"

// CacheStore persists module cache entries between builds.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type CacheStore interface {
	// Load reads every entry from path.
	// It returns domain.ErrCacheNotFound when the file does not exist and domain.ErrCacheCorrupt when it cannot be decoded.
	Load(path string) ([]domain.CacheEntry, error)

	// Save overwrites path with entries.
	Save(path string, entries []domain.CacheEntry) error

	// Remove deletes the cache file. A missing file is not an error.
	Remove(path string) error
}
