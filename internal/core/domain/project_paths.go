package domain

import (
	"path"
	"path/filepath"
	"strings"
)

// Rel returns abs relative to the project root with forward slashes, or abs itself when outside the root.
func (p *Project) Rel(abs string) string {
	if rel, ok := RelWithin(p.Root, abs); ok {
		return rel
	}
	return filepath.ToSlash(abs)
}

// RelWithin returns target relative to root when target lies inside root.
func RelWithin(root, target string) (string, bool) {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return rel, true
}

// AssetPath is the output-relative location of an asset file referenced by m.
// Library assets are addressed by library name, everything else by its path in the project.
func (p *Project) AssetPath(m *Module, src string) string {
	if m.Lib != "" {
		if rel, ok := RelWithin(m.Lib, src); ok {
			return path.Join("assets", m.LibName, rel)
		}
	}
	return path.Join("assets", strings.TrimPrefix(p.Rel(src), "/"))
}
