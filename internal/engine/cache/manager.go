// Package cache revalidates module records persisted by a previous build.
package cache

import (
	"context"
	"errors"
	"path/filepath"

	"go.trai.ch/stitch/internal/core/domain"
	"go.trai.ch/stitch/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Stats summarizes one cache load.
type Stats struct {
	Read  int
	Valid int
	Stale int
}

// Manager reads, validates and writes the module cache of a project.
type Manager struct {
	store  ports.CacheStore
	fs     ports.FileSystem
	logger ports.Logger
}

// NewManager creates a new Manager.
func NewManager(store ports.CacheStore, fs ports.FileSystem, logger ports.Logger) *Manager {
	return &Manager{
		store:  store,
		fs:     fs,
		logger: logger,
	}
}

// Path is the location of the cache file of project.
func Path(project *domain.Project) string {
	p := project.Cache.Path
	if p == "" {
		p = domain.DefaultCachePath
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(project.Root, p)
	}
	return p
}

// Load reads the cache, drops stale entries and registers the rest on sess.
// A missing or unreadable cache is not an error; the build then resolves everything from disk.
func (m *Manager) Load(ctx context.Context, sess *domain.Session) (Stats, error) {
	entries, err := m.Read(sess)
	if err != nil {
		return Stats{}, err
	}
	valid, err := m.Validate(ctx, sess, entries)
	if err != nil {
		return Stats{}, err
	}
	sess.UseCache(valid)
	return Stats{Read: len(entries), Valid: len(valid), Stale: len(entries) - len(valid)}, nil
}

// Read returns the stored entries, or none when the cache is absent or corrupt.
func (m *Manager) Read(sess *domain.Session) ([]domain.CacheEntry, error) {
	path := Path(sess.Project)
	entries, err := m.store.Load(path)
	switch {
	case err == nil:
		return entries, nil
	case errors.Is(err, domain.ErrCacheNotFound):
		return nil, nil
	case errors.Is(err, domain.ErrCacheCorrupt):
		sess.Diagnose(domain.DiagnosticCacheUnusable, path, "%v", err)
		m.logger.Warn("ignoring unusable cache", "path", path, "error", err)
		return nil, nil
	default:
		return nil, err
	}
}

// Validate checks every entry independently and returns the fresh ones in their original order.
// An entry is fresh when every file it tracks still exists and is not newer than the recorded time.
func (m *Manager) Validate(ctx context.Context, sess *domain.Session, entries []domain.CacheEntry) ([]domain.CacheEntry, error) {
	limit := sess.Project.Concurrency
	if limit <= 0 {
		limit = domain.DefaultConcurrency
	}

	reasons := make([]string, len(entries))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, e := range entries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			reasons[i] = m.staleness(e)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, zerr.Wrap(err, "cache validation interrupted")
	}

	valid := make([]domain.CacheEntry, 0, len(entries))
	for i, e := range entries {
		if reasons[i] == "" {
			valid = append(valid, e)
			continue
		}
		sess.Diagnose(domain.DiagnosticStaleCacheEntry, e.RelName, "%s", reasons[i])
	}
	return valid, nil
}

// staleness returns why e can no longer be used, or "" when it is fresh.
func (m *Manager) staleness(e domain.CacheEntry) string {
	if len(e.Mtime) == 0 {
		return "no tracked files"
	}
	for path, cached := range e.Mtime {
		info, err := m.fs.Stat(path)
		if err != nil {
			return "cannot stat " + path
		}
		if info.ModTime().After(cached) {
			return path + " changed"
		}
	}
	return ""
}

// Write replaces the cache with the modules of the finished build.
func (m *Manager) Write(sess *domain.Session) error {
	return m.store.Save(Path(sess.Project), sess.CacheEntries())
}

// Clean removes the cache file of project.
func (m *Manager) Clean(project *domain.Project) error {
	return m.store.Remove(Path(project))
}
