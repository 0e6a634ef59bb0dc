package ports

import "io/fs"

// FileSystem is the read side of the disk used by the resolver and the cache validator.
//
//go:generate mockgen -source=filesystem.go -destination=mocks/mock_filesystem.go -package=mocks
type FileSystem interface {
	// Stat returns file info for path, following symlinks.
	Stat(path string) (fs.FileInfo, error)
	// ReadFile returns the contents of path.
	ReadFile(path string) ([]byte, error)
	// EvalSymlinks returns path with every symlink resolved.
	EvalSymlinks(path string) (string, error)
}
