package fs

import (
	iofs "io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/stitch/internal/core/ports"
)

var _ ports.FileSystem = (*OS)(nil)

// OS implements ports.FileSystem on the host disk.
type OS struct{}

// NewOS creates a new OS file system.
func NewOS() *OS {
	return &OS{}
}

// Stat returns file info for path.
func (o *OS) Stat(path string) (iofs.FileInfo, error) {
	return os.Stat(path)
}

// ReadFile returns the contents of path.
func (o *OS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path) //nolint:gosec // paths come from the resolver
}

// EvalSymlinks returns path with symlinks resolved.
func (o *OS) EvalSymlinks(path string) (string, error) {
	return filepath.EvalSymlinks(path)
}
