package domain

// ClassKind is the relationship of a module to its direct dependents.
type ClassKind uint8

const (
	// ClassOrphan has no dependents at all.
	ClassOrphan ClassKind = iota
	// ClassRequiredOnly is reached only through eager references.
	ClassRequiredOnly
	// ClassRequestedOnly is reached only through lazy references.
	ClassRequestedOnly
	// ClassMixed is reached through both forms.
	ClassMixed
)

// String returns the lower-case name of the kind.
func (k ClassKind) String() string {
	switch k {
	case ClassOrphan:
		return "orphan"
	case ClassRequiredOnly:
		return "required-only"
	case ClassRequestedOnly:
		return "requested-only"
	case ClassMixed:
		return "mixed"
	default:
		return "unknown"
	}
}

// Origins are the roots whose bundles need a module.
type Origins struct {
	// Static lists the entries and orphans the module is eagerly reachable from, in discovery order.
	Static []InternedString
	// Requested lists the lazily requested roots whose bundles reach the module, in discovery order.
	// It is empty for modules with a static origin.
	Requested []InternedString
}

// Classification is computed once per module by the factoring engine.
type Classification struct {
	Kind ClassKind
	// Requires are dependents referencing the module eagerly.
	Requires []InternedString
	// Requests are dependents referencing the module lazily.
	Requests []InternedString
	Origins  Origins
}

// Classify splits the dependents of m into eager and lazy referrers.
func Classify(m *Module, table *Table) Classification {
	var c Classification
	for _, dep := range m.Dependents {
		parent, ok := table.Get(dep)
		if !ok {
			continue
		}
		edge, ok := parent.Dependency(m.Name)
		if !ok {
			continue
		}
		if edge.Request {
			c.Requests = append(c.Requests, dep)
		} else {
			c.Requires = append(c.Requires, dep)
		}
	}
	switch {
	case len(c.Requires) > 0 && len(c.Requests) > 0:
		c.Kind = ClassMixed
	case len(c.Requires) > 0:
		c.Kind = ClassRequiredOnly
	case len(c.Requests) > 0:
		c.Kind = ClassRequestedOnly
	default:
		c.Kind = ClassOrphan
	}
	return c
}
