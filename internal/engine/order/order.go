// Package order linearizes the modules of every bundle and the bundles of a build.
package order

import (
	"slices"

	"go.trai.ch/stitch/internal/core/domain"
	"go.trai.ch/zerr"
)

// Sort sets the definition order of every bundle, then orders the bundle set so that
// each bundle follows the bundles it depends on.
func Sort(sess *domain.Session) error {
	for b := range sess.Bundles.All() {
		order, err := Modules(sess, b)
		if err != nil {
			return err
		}
		b.Order = order
	}

	order, err := Bundles(sess)
	if err != nil {
		return err
	}
	sess.Bundles.Reorder(order)
	return nil
}

// Modules orders the modules of b over their eager edges inside b.
// A module nothing references, that references nothing and that is not a root of b is dropped.
func Modules(sess *domain.Session, b *domain.Bundle) ([]domain.InternedString, error) {
	lookup := func(name domain.InternedString) *domain.Module {
		m, _ := sess.Table.Get(name)
		return m
	}

	sorted, err := domain.TopoSort(domain.SortInput[domain.InternedString]{
		Nodes: b.Modules,
		Deps: func(name domain.InternedString) []domain.InternedString {
			m := lookup(name)
			if m == nil {
				return nil
			}
			var deps []domain.InternedString
			for _, d := range m.Dependencies {
				if !d.Request {
					deps = append(deps, d.Name)
				}
			}
			return deps
		},
		Keep: func(name domain.InternedString) bool {
			m := lookup(name)
			return m == nil || m.Entry || len(m.Dependents) > 0 || slices.Contains(b.Roots, name)
		},
		Label: func(name domain.InternedString) string {
			if m := lookup(name); m != nil {
				return m.DisplayName()
			}
			return name.String()
		},
	})
	if err != nil {
		return nil, zerr.With(err, "bundle", b.Name.String())
	}

	for _, name := range sorted.Dropped {
		sess.Diagnose(domain.DiagnosticOrphanDropped, lookup(name).DisplayName(),
			"not referenced by any module of bundle %s", b.Name)
	}
	return sorted.Order, nil
}

// Bundles orders the bundle set over static and hard bundle edges. Empty bundles are dropped.
func Bundles(sess *domain.Session) ([]domain.InternedString, error) {
	lookup := func(name domain.InternedString) *domain.Bundle {
		b, _ := sess.Bundles.Get(name)
		return b
	}

	sorted, err := domain.TopoSort(domain.SortInput[domain.InternedString]{
		Nodes: sess.Bundles.Names(),
		Deps: func(name domain.InternedString) []domain.InternedString {
			return lookup(name).Dependencies
		},
		Keep: func(name domain.InternedString) bool {
			return !lookup(name).Empty()
		},
		Label: domain.InternedString.String,
	})
	if err != nil {
		return nil, err
	}

	for _, name := range sorted.Dropped {
		sess.Diagnose(domain.DiagnosticOrphanDropped, name.String(), "bundle hosts no module")
	}
	return sorted.Order, nil
}
