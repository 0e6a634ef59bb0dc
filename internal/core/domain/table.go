package domain

import (
	"iter"

	"go.trai.ch/zerr"
)

// Table owns every module record of one build, keyed by canonical name.
// Cross references between modules and bundles are names looked up here.
type Table struct {
	modules map[InternedString]*Module
	order   []InternedString
}

// NewTable creates an empty Table.
func NewTable() *Table {
	return &Table{
		modules: make(map[InternedString]*Module),
	}
}

// Add inserts m at the end of the discovery order.
func (t *Table) Add(m *Module) error {
	if _, exists := t.modules[m.Name]; exists {
		return zerr.With(zerr.Wrap(ErrModuleAlreadyExists, "cannot add module"), "module", m.Name.String())
	}
	t.modules[m.Name] = m
	t.order = append(t.order, m.Name)
	return nil
}

// Get returns the module with the given name.
func (t *Table) Get(name InternedString) (*Module, bool) {
	m, ok := t.modules[name]
	return m, ok
}

// Len returns the number of modules.
func (t *Table) Len() int {
	return len(t.order)
}

// Names returns module names in discovery order.
func (t *Table) Names() []InternedString {
	out := make([]InternedString, len(t.order))
	copy(out, t.order)
	return out
}

// All yields modules in discovery order.
func (t *Table) All() iter.Seq[*Module] {
	return func(yield func(*Module) bool) {
		for _, name := range t.order {
			if !yield(t.modules[name]) {
				return
			}
		}
	}
}

// Backward yields modules in reverse discovery order.
func (t *Table) Backward() iter.Seq[*Module] {
	return func(yield func(*Module) bool) {
		for i := len(t.order) - 1; i >= 0; i-- {
			if !yield(t.modules[t.order[i]]) {
				return
			}
		}
	}
}

// Reorder replaces the discovery order. Names missing from order are removed from the table.
func (t *Table) Reorder(order []InternedString) {
	keep := make(map[InternedString]*Module, len(order))
	next := make([]InternedString, 0, len(order))
	for _, name := range order {
		m, ok := t.modules[name]
		if !ok {
			continue
		}
		if _, dup := keep[name]; dup {
			continue
		}
		keep[name] = m
		next = append(next, name)
	}
	t.modules = keep
	t.order = next
}
