// Package factor assigns every module of a build to exactly one bundle.
//
// A module eagerly reachable from an entry stays in the bundle of the first such entry,
// or in its library's bundle when it comes from an external library.
// Everything else is reachable only through lazily requested roots: a module needed by
// one root joins that root's bundle, a module needed by several roots moves to a shared
// bundle the requesting bundles hard-depend on.
package factor

import (
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/stitch/internal/core/domain"
	"go.trai.ch/zerr"
)

// target is the bundle a module is assigned to.
type target struct {
	name    domain.InternedString
	request bool
	roots   []domain.InternedString
}

type plan struct {
	sess     *domain.Session
	origins  map[domain.InternedString]*domain.Origins
	assigned map[domain.InternedString]target
}

// Factor fills sess.Bundles from the module table and sets every module's bundle name.
func Factor(sess *domain.Session) error {
	p := &plan{
		sess:     sess,
		origins:  make(map[domain.InternedString]*domain.Origins, sess.Table.Len()),
		assigned: make(map[domain.InternedString]target, sess.Table.Len()),
	}

	p.reach()
	for m := range sess.Table.Backward() {
		p.assigned[m.Name] = p.classify(m)
	}
	p.populate()
	p.link()
	p.propagate()
	return p.verify()
}

// reach records, for every module, the static roots it is eagerly reachable from
// and the lazily requested roots whose bundles need it.
func (p *plan) reach() {
	table := p.sess.Table
	for m := range table.All() {
		p.origins[m.Name] = &domain.Origins{}
	}

	for m := range table.All() {
		if m.Entry || len(m.Dependents) == 0 {
			p.walk(m.Name, func(o *domain.Origins) { o.Static = append(o.Static, m.Name) })
		}
	}
	p.requestRoots()
}

// requestRoots propagates lazily requested roots down the dependents of every module outside
// the static region until nothing changes. A requested-only module is its own root. Any other
// module collects the roots of its dependents, eager or lazy.
func (p *plan) requestRoots() {
	table := p.sess.Table
	index := make(map[domain.InternedString]int, table.Len())
	sets := make(map[domain.InternedString]map[domain.InternedString]bool, table.Len())
	var open []*domain.Module
	for m := range table.All() {
		index[m.Name] = len(index)
		if len(p.origins[m.Name].Static) > 0 {
			continue
		}
		if domain.Classify(m, table).Kind == domain.ClassRequestedOnly {
			sets[m.Name] = map[domain.InternedString]bool{m.Name: true}
			continue
		}
		sets[m.Name] = make(map[domain.InternedString]bool)
		open = append(open, m)
	}

	for changed := true; changed; {
		changed = false
		for _, m := range open {
			set := sets[m.Name]
			for _, dep := range m.Dependents {
				for root := range sets[dep] {
					if !set[root] {
						set[root] = true
						changed = true
					}
				}
			}
		}
	}

	for name, set := range sets {
		roots := make([]domain.InternedString, 0, len(set))
		for root := range set {
			roots = append(roots, root)
		}
		slices.SortFunc(roots, func(a, b domain.InternedString) int { return index[a] - index[b] })
		p.origins[name].Requested = roots
	}
}

// walk visits root and every module reachable from it over eager edges.
func (p *plan) walk(root domain.InternedString, visit func(*domain.Origins)) {
	seen := map[domain.InternedString]bool{root: true}
	queue := []domain.InternedString{root}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		visit(p.origins[name])

		m, ok := p.sess.Table.Get(name)
		if !ok {
			continue
		}
		for _, d := range m.Dependencies {
			if d.Request || seen[d.Name] {
				continue
			}
			seen[d.Name] = true
			queue = append(queue, d.Name)
		}
	}
}

func (p *plan) classify(m *domain.Module) target {
	if m.Entry {
		return p.natural(m)
	}

	c := domain.Classify(m, p.sess.Table)
	c.Origins = *p.origins[m.Name]

	switch c.Kind {
	case domain.ClassOrphan:
		return p.natural(m)
	case domain.ClassRequestedOnly:
		return p.requested(m, []domain.InternedString{m.Name})
	case domain.ClassRequiredOnly:
		if len(c.Origins.Static) > 0 {
			return p.static(m, c.Origins.Static[0])
		}
		return p.requested(m, c.Origins.Requested)
	case domain.ClassMixed:
		if len(c.Origins.Static) > 0 {
			t := p.static(m, c.Origins.Static[0])
			p.sess.Diagnose(domain.DiagnosticAmbiguousReference, m.DisplayName(),
				"required by %s and requested by %s; kept in bundle %s",
				p.names(c.Requires), p.names(c.Requests), t.name)
			return t
		}
		return p.requested(m, c.Origins.Requested)
	default:
		panic(fmt.Sprintf("unhandled classification %s", c.Kind))
	}
}

// natural is the bundle named after the module itself.
func (p *plan) natural(m *domain.Module) target {
	return target{name: domain.NewInternedString(EntryBundleName(m)), roots: []domain.InternedString{m.Name}}
}

// static places a module loaded at startup: library code gets its library's bundle,
// everything else joins the bundle of its first static root.
func (p *plan) static(m *domain.Module, root domain.InternedString) target {
	if m.External && m.LibName != "" {
		return target{name: domain.NewInternedString(m.LibName)}
	}
	r, _ := p.sess.Table.Get(root)
	return p.natural(r)
}

// requested picks the bundle for a module needed only by the given lazily requested roots.
// A module no root reaches keeps its natural bundle.
func (p *plan) requested(m *domain.Module, roots []domain.InternedString) target {
	switch len(roots) {
	case 0:
		return p.natural(m)
	case 1:
		return target{name: domain.NewInternedString(RequestBundleName(roots[0])), request: true, roots: roots}
	}
	sorted := slices.Clone(roots)
	slices.SortFunc(sorted, func(a, b domain.InternedString) int { return strings.Compare(a.String(), b.String()) })
	return target{name: domain.NewInternedString(SharedBundleName(sorted)), request: true, roots: sorted}
}

// populate creates bundles and fills them in discovery order.
func (p *plan) populate() {
	for m := range p.sess.Table.All() {
		t := p.assigned[m.Name]
		b, created := p.sess.Bundles.Ensure(t.name)
		if created {
			b.Request = t.request
			b.Roots = t.roots
		}
		if m.Entry {
			b.Entry = true
		}
		b.Modules = append(b.Modules, m.Name)
		m.BundleName = t.name
	}
}

// link derives bundle edges from module edges.
func (p *plan) link() {
	table := p.sess.Table
	bundles := p.sess.Bundles
	lazyFrom := make(map[domain.InternedString][]domain.InternedString)

	for m := range table.All() {
		from, _ := bundles.Get(m.BundleName)
		for _, d := range m.Dependencies {
			dep, _ := table.Get(d.Name)
			to, _ := bundles.Get(dep.BundleName)
			if from == to {
				continue
			}
			switch {
			case d.Request:
				if to.Request && from.Request && !slices.Contains(lazyFrom[to.Name], from.Name) {
					lazyFrom[to.Name] = append(lazyFrom[to.Name], from.Name)
				}
			case to.Request && !from.Request:
				p.sess.Diagnose(domain.DiagnosticDroppedBundleEdge, from.Name.String(),
					"%s requires %s from lazily loaded bundle %s", m.DisplayName(), dep.DisplayName(), to.Name)
			case to.Request:
				p.hard(from, to)
			default:
				from.AddDependency(to)
			}
		}
	}

	// A lazily loaded bundle requested from several lazily loaded bundles is preloaded by each of them.
	for to := range bundles.All() {
		if len(lazyFrom[to.Name]) < 2 {
			continue
		}
		for _, name := range lazyFrom[to.Name] {
			from, _ := bundles.Get(name)
			p.hard(from, to)
		}
	}
}

// hard adds a hard edge unless it would close a loop.
func (p *plan) hard(from, to *domain.Bundle) {
	if slices.Contains(from.HardDependencies, to.Name) {
		return
	}
	if p.dependsOn(to, from.Name) {
		p.sess.Diagnose(domain.DiagnosticDroppedBundleEdge, from.Name.String(),
			"hard dependency on %s would form a loop", to.Name)
		return
	}
	from.AddHardDependency(to)
}

func (p *plan) dependsOn(b *domain.Bundle, target domain.InternedString) bool {
	seen := make(map[domain.InternedString]bool)
	stack := []*domain.Bundle{b}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, name := range cur.Dependencies {
			if name == target {
				return true
			}
			if seen[name] {
				continue
			}
			seen[name] = true
			if next, ok := p.sess.Bundles.Get(name); ok {
				stack = append(stack, next)
			}
		}
	}
	return false
}

// propagate makes hard dependencies transitive.
func (p *plan) propagate() {
	for b := range p.sess.Bundles.All() {
		var closure []domain.InternedString
		seen := map[domain.InternedString]bool{b.Name: true}
		stack := slices.Clone(b.HardDependencies)
		for len(stack) > 0 {
			name := stack[0]
			stack = stack[1:]
			if seen[name] {
				continue
			}
			seen[name] = true
			closure = append(closure, name)
			if next, ok := p.sess.Bundles.Get(name); ok {
				stack = append(stack, next.HardDependencies...)
			}
		}
		for _, name := range closure {
			next, _ := p.sess.Bundles.Get(name)
			b.AddHardDependency(next)
		}
	}
}

// verify checks that every module is owned by exactly one bundle.
func (p *plan) verify() error {
	owned := 0
	for b := range p.sess.Bundles.All() {
		owned += len(b.Modules)
	}
	for m := range p.sess.Table.All() {
		if m.BundleName.IsZero() {
			return zerr.With(zerr.Wrap(domain.ErrUnassignedModule, "module has no bundle"), "module", m.DisplayName())
		}
	}
	if owned != p.sess.Table.Len() {
		err := zerr.Wrap(domain.ErrUnassignedModule, "bundles do not partition the module table")
		return zerr.With(zerr.With(err, "owned", owned), "modules", p.sess.Table.Len())
	}
	return nil
}

func (p *plan) names(list []domain.InternedString) string {
	out := make([]string, len(list))
	for i, name := range list {
		if m, ok := p.sess.Table.Get(name); ok {
			out[i] = m.DisplayName()
		} else {
			out[i] = name.String()
		}
	}
	return strings.Join(out, ", ")
}

// EntryBundleName names the bundle of an entry: its path without extension, or its library name.
func EntryBundleName(m *domain.Module) string {
	if m.External && m.LibName != "" {
		return m.LibName
	}
	rel := m.DisplayName()
	if !m.IsPackage {
		rel = strings.TrimSuffix(rel, path.Ext(rel))
	}
	return strings.ReplaceAll(strings.TrimPrefix(rel, "/"), "/", "-")
}

// RequestBundleName names the bundle created for one lazily requested root.
func RequestBundleName(root domain.InternedString) string {
	return fmt.Sprintf("r%08x", uint32(xxhash.Sum64String(root.String())))
}

// SharedBundleName names the bundle shared by several lazily requested roots, given in sorted order.
func SharedBundleName(roots []domain.InternedString) string {
	d := xxhash.New()
	for _, r := range roots {
		_, _ = d.WriteString(r.String())
		_, _ = d.WriteString("\x00")
	}
	return fmt.Sprintf("s%08x", uint32(d.Sum64()))
}
