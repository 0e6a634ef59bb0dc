package domain

import (
	"iter"
	"slices"
)

// Bundle is a deployable unit of modules loaded together.
type Bundle struct {
	Name InternedString
	// Modules lists owned modules in discovery order.
	Modules []InternedString
	// Order is the sequence in which the loader defines the modules.
	Order []InternedString

	Dependencies     []InternedString
	Dependents       []InternedString
	HardDependencies []InternedString
	HardDependents   []InternedString

	Entry   bool
	Request bool

	// Roots are the entry or requested modules this bundle was created for.
	Roots []InternedString

	Contents string
	Style    string
}

// Owns reports whether the module belongs to b.
func (b *Bundle) Owns(name InternedString) bool {
	return slices.Contains(b.Modules, name)
}

// Empty reports whether the bundle hosts no module.
func (b *Bundle) Empty() bool {
	return len(b.Modules) == 0
}

// AddDependency records a static edge from b to other.
func (b *Bundle) AddDependency(other *Bundle) {
	b.Dependencies = appendUnique(b.Dependencies, other.Name)
	other.Dependents = appendUnique(other.Dependents, b.Name)
}

// AddHardDependency records that other must be loaded before b executes.
func (b *Bundle) AddHardDependency(other *Bundle) {
	b.AddDependency(other)
	b.HardDependencies = appendUnique(b.HardDependencies, other.Name)
	other.HardDependents = appendUnique(other.HardDependents, b.Name)
}

func appendUnique(s []InternedString, name InternedString) []InternedString {
	if slices.Contains(s, name) {
		return s
	}
	return append(s, name)
}

// BundleSet keeps bundles in creation order.
type BundleSet struct {
	bundles map[InternedString]*Bundle
	order   []InternedString
}

// NewBundleSet creates an empty BundleSet.
func NewBundleSet() *BundleSet {
	return &BundleSet{
		bundles: make(map[InternedString]*Bundle),
	}
}

// Ensure returns the bundle with the given name, creating it when absent.
func (s *BundleSet) Ensure(name InternedString) (*Bundle, bool) {
	if b, ok := s.bundles[name]; ok {
		return b, false
	}
	b := &Bundle{Name: name}
	s.bundles[name] = b
	s.order = append(s.order, name)
	return b, true
}

// Get returns the bundle with the given name.
func (s *BundleSet) Get(name InternedString) (*Bundle, bool) {
	b, ok := s.bundles[name]
	return b, ok
}

// Len returns the number of bundles.
func (s *BundleSet) Len() int {
	return len(s.order)
}

// Names returns bundle names in the current order.
func (s *BundleSet) Names() []InternedString {
	out := make([]InternedString, len(s.order))
	copy(out, s.order)
	return out
}

// All yields bundles in the current order.
func (s *BundleSet) All() iter.Seq[*Bundle] {
	return func(yield func(*Bundle) bool) {
		for _, name := range s.order {
			if !yield(s.bundles[name]) {
				return
			}
		}
	}
}

// Reorder sets the bundle order. Bundles not listed keep their relative order after the listed ones.
func (s *BundleSet) Reorder(order []InternedString) {
	next := make([]InternedString, 0, len(s.order))
	seen := make(map[InternedString]bool, len(s.order))
	for _, name := range order {
		if _, ok := s.bundles[name]; ok && !seen[name] {
			seen[name] = true
			next = append(next, name)
		}
	}
	for _, name := range s.order {
		if !seen[name] {
			next = append(next, name)
		}
	}
	s.order = next
}
