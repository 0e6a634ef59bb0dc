package cas_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/stitch/internal/adapters/cas"
	"go.trai.ch/stitch/internal/core/domain"
)

func entry(name string, mtime time.Time) domain.CacheEntry {
	return domain.CacheEntry{
		Name:     "/app/" + name,
		RelName:  name,
		Fullpath: "/app/" + name,
		Contents: "require('./x')",
		Mtime:    map[string]time.Time{"/app/" + name: mtime},
	}
}

func TestStore_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.json")
	store := cas.NewStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entries := []domain.CacheEntry{entry("a.js", now), entry("b.js", now.Add(time.Second))}
	entries[1].IsPackage = true
	entries[1].External = true
	entries[1].LibName = "b"

	require.NoError(t, store.Save(path, entries))
	got, err := store.Load(path)

	require.NoError(t, err)
	assert.Equal(t, entries, got)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestStore_SaveWritesArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	store := cas.NewStore()

	require.NoError(t, store.Save(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestStore_LoadMissing(t *testing.T) {
	_, err := cas.NewStore().Load(filepath.Join(t.TempDir(), "missing.json"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCacheNotFound))
}

func TestStore_LoadCorrupt(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "{{{"},
		{"object instead of array", `{"name":"x"}`},
		{"entry without mtime", `[{"name":"/a.js","fullpath":"/a.js"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cache.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.data), 0o600))

			_, err := cas.NewStore().Load(path)

			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrCacheCorrupt))
		})
	}
}

func TestStore_Remove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	store := cas.NewStore()
	require.NoError(t, store.Save(path, nil))

	require.NoError(t, store.Remove(path))
	require.NoError(t, store.Remove(path))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
