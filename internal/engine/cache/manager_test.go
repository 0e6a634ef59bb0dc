package cache_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/stitch/internal/adapters/cas"
	fsadapter "go.trai.ch/stitch/internal/adapters/fs"
	"go.trai.ch/stitch/internal/core/domain"
	"go.trai.ch/stitch/internal/core/ports/mocks"
	"go.trai.ch/stitch/internal/engine/cache"
	"go.uber.org/mock/gomock"
)

type fileInfo struct {
	fs.FileInfo
	mtime time.Time
}

func (f fileInfo) ModTime() time.Time { return f.mtime }

func quietLogger(t *testing.T) *mocks.MockLogger {
	t.Helper()
	log := mocks.NewMockLogger(gomock.NewController(t))
	log.EXPECT().Warn(gomock.Any(), gomock.Any()).AnyTimes()
	return log
}

func writeFile(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte("module.exports = 1"), 0o600))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestPath(t *testing.T) {
	assert.Equal(t, filepath.Join("/app", ".stitch", "cache.json"), cache.Path(&domain.Project{Root: "/app"}))
	assert.Equal(t, filepath.Join("/app", "tmp", "c.json"), cache.Path(&domain.Project{Root: "/app", Cache: domain.CacheConfig{Path: "tmp/c.json"}}))
	assert.Equal(t, "/var/c.json", cache.Path(&domain.Project{Root: "/app", Cache: domain.CacheConfig{Path: "/var/c.json"}}))
}

func TestManager_RoundTripAndTouch(t *testing.T) {
	root := t.TempDir()
	project := &domain.Project{Root: root}
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	paths := []string{
		filepath.Join(root, "a.js"),
		filepath.Join(root, "b.js"),
		filepath.Join(root, "pkg", "package.json"),
		filepath.Join(root, "pkg", "index.js"),
	}
	for _, p := range paths {
		writeFile(t, p, base)
	}

	sess := domain.NewSession(project)
	for _, m := range []*domain.Module{
		{Name: domain.NewInternedString(paths[0]), RelName: "a.js", Fullpath: paths[0], Mtime: domain.Mtime{paths[0]: base}},
		{Name: domain.NewInternedString(paths[1]), RelName: "b.js", Fullpath: paths[1], Mtime: domain.Mtime{paths[1]: base}},
		{
			Name: domain.NewInternedString(filepath.Join(root, "pkg")), RelName: "pkg", Fullpath: paths[3], IsPackage: true,
			Mtime: domain.Mtime{paths[2]: base, paths[3]: base},
		},
	} {
		require.NoError(t, sess.Table.Add(m))
		sess.KeepRaw(m.Name, "raw "+m.RelName)
	}

	manager := cache.NewManager(cas.NewStore(), fsadapter.NewOS(), quietLogger(t))
	require.NoError(t, manager.Write(sess))

	next := domain.NewSession(project)
	stats, err := manager.Load(context.Background(), next)
	require.NoError(t, err)
	assert.Equal(t, cache.Stats{Read: 3, Valid: 3}, stats)
	assert.Equal(t, 3, next.CachedCount())
	cached, ok := next.Cached(domain.NewInternedString(paths[0]))
	require.True(t, ok)
	assert.Equal(t, "raw a.js", cached.Contents)

	require.NoError(t, os.Chtimes(paths[2], base.Add(time.Minute), base.Add(time.Minute)))

	third := domain.NewSession(project)
	stats, err = manager.Load(context.Background(), third)
	require.NoError(t, err)
	assert.Equal(t, cache.Stats{Read: 3, Valid: 2, Stale: 1}, stats)
	_, ok = third.Cached(domain.NewInternedString(filepath.Join(root, "pkg")))
	assert.False(t, ok)

	diags := third.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, domain.DiagnosticStaleCacheEntry, diags[0].Kind)
	assert.Equal(t, "pkg", diags[0].Subject)
	assert.Contains(t, diags[0].Message, "package.json changed")
}

func TestManager_ValidateRules(t *testing.T) {
	ctrl := gomock.NewController(t)
	files := mocks.NewMockFileSystem(ctrl)
	recorded := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	files.EXPECT().Stat("/same").Return(fileInfo{mtime: recorded}, nil)
	files.EXPECT().Stat("/older").Return(fileInfo{mtime: recorded.Add(-time.Hour)}, nil)
	files.EXPECT().Stat("/newer").Return(fileInfo{mtime: recorded.Add(time.Nanosecond)}, nil)
	files.EXPECT().Stat("/gone").Return(nil, fs.ErrNotExist)

	entries := []domain.CacheEntry{
		{Name: "/same", RelName: "same", Mtime: map[string]time.Time{"/same": recorded}},
		{Name: "/older", RelName: "older", Mtime: map[string]time.Time{"/older": recorded}},
		{Name: "/newer", RelName: "newer", Mtime: map[string]time.Time{"/newer": recorded}},
		{Name: "/gone", RelName: "gone", Mtime: map[string]time.Time{"/gone": recorded}},
		{Name: "/untracked", RelName: "untracked"},
	}
	sess := domain.NewSession(&domain.Project{Root: "/"})
	manager := cache.NewManager(mocks.NewMockCacheStore(ctrl), files, mocks.NewMockLogger(ctrl))

	valid, err := manager.Validate(context.Background(), sess, entries)

	require.NoError(t, err)
	assert.Equal(t, []domain.CacheEntry{entries[0], entries[1]}, valid)
	var stale []string
	for _, d := range sess.Diagnostics() {
		stale = append(stale, d.Subject)
	}
	assert.Equal(t, []string{"newer", "gone", "untracked"}, stale)
}

func TestManager_ValidateRunsConcurrently(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		files := mocks.NewMockFileSystem(ctrl)
		recorded := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
		files.EXPECT().Stat(gomock.Any()).DoAndReturn(func(string) (fs.FileInfo, error) {
			time.Sleep(time.Second)
			return fileInfo{mtime: recorded}, nil
		}).Times(8)

		var entries []domain.CacheEntry
		for _, n := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
			entries = append(entries, domain.CacheEntry{Name: "/" + n, Mtime: map[string]time.Time{"/" + n: recorded}})
		}
		sess := domain.NewSession(&domain.Project{Root: "/", Concurrency: 4})
		manager := cache.NewManager(mocks.NewMockCacheStore(ctrl), files, mocks.NewMockLogger(ctrl))

		start := time.Now()
		valid, err := manager.Validate(context.Background(), sess, entries)

		require.NoError(t, err)
		assert.Equal(t, entries, valid)
		assert.Equal(t, 2*time.Second, time.Since(start))
	})
}

func TestManager_ReadFallsBack(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantDiags int
	}{
		{"missing", domain.ErrCacheNotFound, 0},
		{"corrupt", domain.ErrCacheCorrupt, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := mocks.NewMockCacheStore(ctrl)
			store.EXPECT().Load(filepath.Join("/app", ".stitch", "cache.json")).Return(nil, tt.err)
			sess := domain.NewSession(&domain.Project{Root: "/app"})
			manager := cache.NewManager(store, mocks.NewMockFileSystem(ctrl), quietLogger(t))

			stats, err := manager.Load(context.Background(), sess)

			require.NoError(t, err)
			assert.Equal(t, cache.Stats{}, stats)
			assert.Len(t, sess.Diagnostics(), tt.wantDiags)
		})
	}
}

func TestManager_ReadFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockCacheStore(ctrl)
	boom := errors.New("permission denied")
	store.EXPECT().Load(gomock.Any()).Return(nil, boom)
	manager := cache.NewManager(store, mocks.NewMockFileSystem(ctrl), mocks.NewMockLogger(ctrl))

	_, err := manager.Load(context.Background(), domain.NewSession(&domain.Project{Root: "/app"}))

	assert.ErrorIs(t, err, boom)
}

func TestManager_ValidateCanceled(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	manager := cache.NewManager(mocks.NewMockCacheStore(ctrl), mocks.NewMockFileSystem(ctrl), mocks.NewMockLogger(ctrl))
	entries := []domain.CacheEntry{{Name: "/a", Mtime: map[string]time.Time{"/a": time.Now()}}}

	_, err := manager.Validate(ctx, domain.NewSession(&domain.Project{Root: "/"}), entries)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestManager_Clean(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockCacheStore(ctrl)
	store.EXPECT().Remove("/app/custom.json").Return(nil)
	manager := cache.NewManager(store, mocks.NewMockFileSystem(ctrl), mocks.NewMockLogger(ctrl))

	require.NoError(t, manager.Clean(&domain.Project{Root: "/app", Cache: domain.CacheConfig{Path: "custom.json"}}))
}
