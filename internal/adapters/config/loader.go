// Package config provides the configuration loader for stitch.
package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/stitch/internal/core/domain"
	"go.trai.ch/stitch/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load finds the nearest stitch.yaml from cwd upwards and returns the validated project.
func (l *Loader) Load(cwd string) (*domain.Project, error) {
	configPath, err := findConfiguration(cwd)
	if err != nil {
		return nil, err
	}

	var file Stitchfile
	if err := readAndUnmarshalYAML(configPath, &file); err != nil {
		return nil, zerr.With(err, "path", configPath)
	}
	return l.project(configPath, &file)
}

func findConfiguration(cwd string) (string, error) {
	currentDir := cwd
	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}
	return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "no "+domain.ConfigFileName+" found"), "cwd", cwd)
}

func (l *Loader) project(configPath string, file *Stitchfile) (*domain.Project, error) {
	if len(file.Entries) == 0 {
		return nil, invalid("entries", "at least one entry is required", file.Entries)
	}

	root := resolvePath(filepath.Dir(configPath), file.Root)
	p := &domain.Project{
		Root:        root,
		Entries:     file.Entries,
		Builtins:    file.Builtins,
		Output:      resolvePath(root, defaultString(file.Output, domain.DefaultOutput)),
		Production:  file.Production,
		Concurrency: file.Concurrency,
		Cache:       domain.CacheConfig{Enabled: true, Path: resolvePath(root, domain.DefaultCachePath)},
		Define:      defaultString(file.Runtime.Define, domain.DefaultDefine),
	}

	if p.Concurrency <= 0 {
		if file.Concurrency < 0 {
			l.Logger.Warn("ignoring non-positive concurrency", "concurrency", file.Concurrency)
		}
		p.Concurrency = domain.DefaultConcurrency
	}

	for _, sp := range file.Paths {
		p.Paths = append(p.Paths, resolvePath(root, sp))
	}

	names := make([]string, 0, len(file.Libraries))
	for name := range file.Libraries {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			return nil, invalid("libraries", "library name must not be empty", name)
		}
		target := file.Libraries[name]
		if target == "" {
			return nil, invalid("libraries", "library path must not be empty", name)
		}
		p.Libraries = append(p.Libraries, domain.Library{Name: name, Path: resolvePath(root, target)})
	}

	if file.Cache != nil {
		if file.Cache.Enabled != nil {
			p.Cache.Enabled = *file.Cache.Enabled
		}
		if file.Cache.Path != "" {
			p.Cache.Path = resolvePath(root, file.Cache.Path)
		}
	}
	return p, nil
}

func invalid(field, msg string, value any) error {
	return zerr.With(zerr.Wrap(domain.ErrInvalidConfig, msg), field, value)
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func resolvePath(base, configured string) string {
	if configured == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(configured) {
		return filepath.Clean(configured)
	}
	return filepath.Clean(filepath.Join(base, configured))
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is found by walking up from the working directory
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, "failed to read config file")
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.Wrap(zerr.Wrap(domain.ErrInvalidConfig, parseErr.Error()), "failed to parse config file")
	}
	return nil
}
