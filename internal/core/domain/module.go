package domain

import (
	"path"
	"path/filepath"
	"strings"
	"time"
)

// ModuleKind tells the packer how to wrap a module body.
type ModuleKind uint8

const (
	// KindScript is a CommonJS source module.
	KindScript ModuleKind = iota
	// KindJSON is a JSON document exported as a value.
	KindJSON
	// KindStyle is a stylesheet handed to the style processor.
	KindStyle
)

// KindOf derives the module kind from a file path.
func KindOf(p string) ModuleKind {
	switch strings.ToLower(path.Ext(p)) {
	case ".json":
		return KindJSON
	case ".css":
		return KindStyle
	default:
		return KindScript
	}
}

// Mtime maps every file a module record spans to its modification time.
// A plain file record has one entry; a package record tracks its manifest and main file.
type Mtime map[string]time.Time

// Clone returns an independent copy of m.
func (m Mtime) Clone() Mtime {
	out := make(Mtime, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Dependency is one resolved reference from a module's source.
type Dependency struct {
	// Name is the canonical name of the target module.
	Name InternedString
	// Alias is the literal string used in source.
	Alias string
	// Request is true when the reference uses the lazy form.
	Request bool
}

// Module is the record of one source file or package.
type Module struct {
	Name     InternedString
	RelName  string
	Fullpath string
	Contents string
	Mtime    Mtime
	Kind     ModuleKind

	IsPackage bool
	External  bool
	Entry     bool
	Request   bool

	Dependencies []Dependency
	Dependents   []InternedString

	// Assets lists the absolute source paths referenced through asset tokens.
	Assets []string

	BundleName InternedString

	Lib     string
	LibName string
}

// Dir returns the directory relative references are resolved against.
func (m *Module) Dir() string {
	return filepath.Dir(m.Fullpath)
}

// DisplayName is the name shown to users in diagnostics.
func (m *Module) DisplayName() string {
	if m.RelName != "" {
		return m.RelName
	}
	return m.Name.String()
}

// Dependency returns the edge with the given target name.
func (m *Module) Dependency(name InternedString) (Dependency, bool) {
	for _, d := range m.Dependencies {
		if d.Name == name {
			return d, true
		}
	}
	return Dependency{}, false
}

// Clone copies the resolver-owned fields of m. Graph edges and bundle assignment are not copied.
func (m *Module) Clone() *Module {
	return &Module{
		Name:      m.Name,
		RelName:   m.RelName,
		Fullpath:  m.Fullpath,
		Contents:  m.Contents,
		Mtime:     m.Mtime.Clone(),
		Kind:      m.Kind,
		IsPackage: m.IsPackage,
		External:  m.External,
		Lib:       m.Lib,
		LibName:   m.LibName,
	}
}
