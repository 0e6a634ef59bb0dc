package config

// Stitchfile represents the structure of the stitch.yaml configuration file.
type Stitchfile struct {
	Root        string            `yaml:"root"`
	Entries     []string          `yaml:"entries"`
	Paths       []string          `yaml:"paths"`
	Libraries   map[string]string `yaml:"libraries"`
	Builtins    []string          `yaml:"builtins"`
	Output      string            `yaml:"output"`
	Production  bool              `yaml:"production"`
	Concurrency int               `yaml:"concurrency"`
	Cache       *CacheDTO         `yaml:"cache"`
	Runtime     RuntimeDTO        `yaml:"runtime"`
}

// CacheDTO represents the cache section.
type CacheDTO struct {
	Enabled *bool  `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// RuntimeDTO represents the runtime loader section.
type RuntimeDTO struct {
	Define string `yaml:"define"`
}
