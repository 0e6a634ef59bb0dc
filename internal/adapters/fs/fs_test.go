package fs_test

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/stitch/internal/adapters/fs"
	"go.trai.ch/stitch/internal/core/domain"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
}

func TestResolver_ResolveInputs_KeepsPatternOrder(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "src", "main.js"), "")
	writeFile(t, filepath.Join(tmpDir, "pages", "b.js"), "")
	writeFile(t, filepath.Join(tmpDir, "pages", "a.js"), "")

	resolved, err := fs.NewResolver().ResolveInputs([]string{"src/main.js", "pages/*.js", "src/*.js"}, tmpDir)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(tmpDir, "src", "main.js"),
		filepath.Join(tmpDir, "pages", "a.js"),
		filepath.Join(tmpDir, "pages", "b.js"),
	}, resolved)
}

func TestResolver_ResolveInputs_GlobError(t *testing.T) {
	_, err := fs.NewResolver().ResolveInputs([]string{"["}, t.TempDir())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to glob path")
}

func TestResolver_ResolveInputs_NoMatches(t *testing.T) {
	_, err := fs.NewResolver().ResolveInputs([]string{"*.nonexistent"}, t.TempDir())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNoEntries))
}

func TestWalker_WalkFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".git", "config"), "")
	writeFile(t, filepath.Join(tmpDir, "img", "logo.png"), "png")
	writeFile(t, filepath.Join(tmpDir, "img", ".DS_Store"), "")
	writeFile(t, filepath.Join(tmpDir, "fonts", "a.woff"), "woff")

	files := slices.Collect(fs.NewWalker().WalkFiles(tmpDir, []string{".DS_Store"}))

	assert.Equal(t, []string{
		filepath.Join(tmpDir, "fonts", "a.woff"),
		filepath.Join(tmpDir, "img", "logo.png"),
	}, files)
}

func TestWalker_StopsEarly(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "a"), "")
	writeFile(t, filepath.Join(tmpDir, "b"), "")

	var seen []string
	for f := range fs.NewWalker().WalkFiles(tmpDir, nil) {
		seen = append(seen, f)
		break
	}

	assert.Len(t, seen, 1)
}

func TestOS_ReadsThroughSymlinks(t *testing.T) {
	tmpDir := t.TempDir()
	target := filepath.Join(tmpDir, "real", "index.js")
	writeFile(t, target, "module.exports = 1")
	link := filepath.Join(tmpDir, "link")
	require.NoError(t, os.Symlink(filepath.Join(tmpDir, "real"), link))

	osfs := fs.NewOS()
	info, err := osfs.Stat(filepath.Join(link, "index.js"))
	require.NoError(t, err)
	assert.False(t, info.IsDir())

	data, err := osfs.ReadFile(filepath.Join(link, "index.js"))
	require.NoError(t, err)
	assert.Equal(t, "module.exports = 1", string(data))

	resolved, err := osfs.EvalSymlinks(link)
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(filepath.Join(tmpDir, "real"))
	require.NoError(t, err)
	assert.Equal(t, want, resolved)
}
