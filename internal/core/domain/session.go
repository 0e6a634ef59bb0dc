package domain

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Session owns every piece of mutable state of one build run.
// A new Session is created for each build, so resolver results never leak between runs.
type Session struct {
	Project *Project
	Table   *Table
	Bundles *BundleSet

	memo   *Memo
	cached map[InternedString]*Module

	mu          sync.Mutex
	diagnostics []Diagnostic
	raw         map[InternedString]string
}

// NewSession starts a build of project.
func NewSession(project *Project) *Session {
	return &Session{
		Project: project,
		Table:   NewTable(),
		Bundles: NewBundleSet(),
		memo:    newMemo(),
		cached:  make(map[InternedString]*Module),
		raw:     make(map[InternedString]string),
	}
}

// Memo returns the resolver memo of this build.
func (s *Session) Memo() *Memo {
	return s.memo
}

// UseCache registers validated cache entries as reusable resolver results.
func (s *Session) UseCache(entries []CacheEntry) {
	for _, e := range entries {
		m := e.Module()
		s.cached[m.Name] = m
	}
}

// Cached returns a copy of the cached record for name.
func (s *Session) Cached(name InternedString) (*Module, bool) {
	m, ok := s.cached[name]
	if !ok {
		return nil, false
	}
	return m.Clone(), true
}

// CachedCount returns the number of reusable cache records.
func (s *Session) CachedCount() int {
	return len(s.cached)
}

// KeepRaw remembers the unprocessed contents of a module for the cache file.
func (s *Session) KeepRaw(name InternedString, contents string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw[name] = contents
}

// Raw returns the unprocessed contents of a module.
func (s *Session) Raw(name InternedString) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.raw[name]
	return c, ok
}

// Diagnose records a warning.
func (s *Session) Diagnose(kind DiagnosticKind, subject, format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diagnostics = append(s.diagnostics, Diagnostic{
		Kind:    kind,
		Subject: subject,
		Message: fmt.Sprintf(format, args...),
	})
}

// Diagnostics returns the warnings recorded so far.
func (s *Session) Diagnostics() []Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Diagnostic, len(s.diagnostics))
	copy(out, s.diagnostics)
	return out
}

// CacheEntries flattens every module of the table, in discovery order.
func (s *Session) CacheEntries() []CacheEntry {
	entries := make([]CacheEntry, 0, s.Table.Len())
	for m := range s.Table.All() {
		raw, ok := s.Raw(m.Name)
		if !ok {
			raw = m.Contents
		}
		entries = append(entries, NewCacheEntry(m, raw))
	}
	return entries
}

type resolution struct {
	value any
	err   error
}

// Memo stores resolver results per fully-qualified lookup key.
// Concurrent lookups of the same key share one physical resolution.
type Memo struct {
	group   singleflight.Group
	mu      sync.Mutex
	results map[string]resolution
}

func newMemo() *Memo {
	return &Memo{
		results: make(map[string]resolution),
	}
}

// Do returns the memoized result for key, running fn at most once per key.
func (m *Memo) Do(key string, fn func() (any, error)) (any, error) {
	m.mu.Lock()
	if r, ok := m.results[key]; ok {
		m.mu.Unlock()
		return r.value, r.err
	}
	m.mu.Unlock()

	v, err, _ := m.group.Do(key, func() (any, error) {
		v, err := fn()
		m.mu.Lock()
		m.results[key] = resolution{value: v, err: err}
		m.mu.Unlock()
		return v, err
	})
	return v, err
}

// Len returns the number of memoized lookups.
func (m *Memo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.results)
}
