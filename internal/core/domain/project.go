package domain

const (
	// ConfigFileName is the project file searched from the working directory upwards.
	ConfigFileName = "stitch.yaml"
	// DefaultConcurrency bounds resolver I/O when the configuration does not.
	DefaultConcurrency = 16
	// DefaultDefine is the loader call wrapping every packed manifest.
	DefaultDefine = "require.define"
	// DefaultCachePath is the cache file location relative to the project root.
	DefaultCachePath = ".stitch/cache.json"
	// DefaultOutput is the output directory relative to the project root.
	DefaultOutput = "dist"
)

// Library is a named external root, usually a symlink to a sibling checkout.
type Library struct {
	Name string
	Path string
}

// CacheConfig controls the persisted module cache.
type CacheConfig struct {
	Enabled bool
	Path    string
}

// Project is the validated build configuration. Every path is absolute.
type Project struct {
	Root        string
	Entries     []string
	Paths       []string
	Libraries   []Library
	Builtins    []string
	Output      string
	Production  bool
	Concurrency int
	Cache       CacheConfig
	Define      string
}
