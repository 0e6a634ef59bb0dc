package domain

import "time"

// CacheEntry is the durable snapshot of a module's resolver-owned fields.
type CacheEntry struct {
	Name      string               `json:"name"`
	RelName   string               `json:"relName"`
	Fullpath  string               `json:"fullpath"`
	Contents  string               `json:"contents"`
	Mtime     map[string]time.Time `json:"mtime"`
	IsPackage bool                 `json:"isPackage,omitzero"`
	External  bool                 `json:"external,omitzero"`
	Entry     bool                 `json:"entry,omitzero"`
	Request   bool                 `json:"request,omitzero"`
	Lib       string               `json:"lib,omitzero"`
	LibName   string               `json:"libName,omitzero"`
}

// NewCacheEntry flattens m, dropping graph edges and bundle assignment.
// Contents are the raw text before asset tokens were rewritten.
func NewCacheEntry(m *Module, raw string) CacheEntry {
	return CacheEntry{
		Name:      m.Name.String(),
		RelName:   m.RelName,
		Fullpath:  m.Fullpath,
		Contents:  raw,
		Mtime:     m.Mtime.Clone(),
		IsPackage: m.IsPackage,
		External:  m.External,
		Entry:     m.Entry,
		Request:   m.Request,
		Lib:       m.Lib,
		LibName:   m.LibName,
	}
}

// Module rebuilds an unlinked module record from the entry.
func (e CacheEntry) Module() *Module {
	return &Module{
		Name:      NewInternedString(e.Name),
		RelName:   e.RelName,
		Fullpath:  e.Fullpath,
		Contents:  e.Contents,
		Mtime:     Mtime(e.Mtime).Clone(),
		Kind:      KindOf(e.Fullpath),
		IsPackage: e.IsPackage,
		External:  e.External,
		Lib:       e.Lib,
		LibName:   e.LibName,
	}
}
