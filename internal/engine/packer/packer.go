// Package packer serializes ordered bundles into the manifest format read by the runtime loader.
package packer

import (
	"encoding/json"
	"path"
	"slices"
	"strings"

	"go.trai.ch/stitch/internal/core/domain"
	"go.trai.ch/zerr"
)

// Serialized is one packed bundle.
type Serialized struct {
	Contents string
	// ModuleCount is the number of module definitions in the manifest.
	ModuleCount int
}

// Packer packs the bundles of one session.
type Packer struct {
	sess   *domain.Session
	ids    IDs
	owner  map[domain.InternedString]*domain.Bundle
	define string
}

// New prepares a Packer for sess. Bundles must already be factored and ordered.
func New(sess *domain.Session) *Packer {
	define := sess.Project.Define
	if define == "" {
		define = domain.DefaultDefine
	}
	owner := make(map[domain.InternedString]*domain.Bundle)
	for b := range sess.Bundles.All() {
		for _, name := range b.Modules {
			owner[name] = b
		}
	}
	return &Packer{
		sess:   sess,
		ids:    AssignIDs(sess.Table),
		owner:  owner,
		define: define,
	}
}

// IDs returns the identifiers assigned to every module.
func (p *Packer) IDs() IDs {
	return p.ids
}

// PackAll packs every bundle and stores the result in its Contents.
func (p *Packer) PackAll() error {
	for b := range p.sess.Bundles.All() {
		out, err := p.Pack(b)
		if err != nil {
			return err
		}
		b.Contents = out.Contents
	}
	return nil
}

// Pack serializes b as `<define>({...});`.
// Every module in b.Order gets a definition; every edge into a lazily loaded bundle gets that bundle's descriptor.
func (p *Packer) Pack(b *domain.Bundle) (Serialized, error) {
	var entries []string
	described := make(map[string]bool)
	var aliases []string

	for _, name := range b.Order {
		m, ok := p.sess.Table.Get(name)
		if !ok {
			return Serialized{}, p.invalid(b, name.String(), name)
		}
		id := p.ids[name]

		deps := make([]string, 0, len(m.Dependencies))
		for _, d := range m.Dependencies {
			depID, ok := p.ids[d.Name]
			if !ok {
				return Serialized{}, p.invalid(b, m.DisplayName(), d.Name)
			}
			deps = append(deps, quote(d.Alias)+": "+quote(depID))

			target, ok := p.owner[d.Name]
			if !ok {
				return Serialized{}, p.invalid(b, m.DisplayName(), d.Name)
			}
			if target == b || !target.Request || described[depID] {
				continue
			}
			described[depID] = true
			desc, err := json.Marshal(p.descriptor(target))
			if err != nil {
				return Serialized{}, zerr.Wrap(err, "failed to encode bundle descriptor")
			}
			entries = append(entries, quote(depID)+": "+string(desc))
		}

		entries = append(entries, quote(id)+": [function(require, module, exports) {\n"+body(m)+"\n}, {"+strings.Join(deps, ", ")+"}]")

		if m.Entry {
			aliases = append(aliases, quote(EntryAlias(m))+": "+quote(id))
		}
	}

	entries = append(entries, aliases...)
	var sb strings.Builder
	sb.WriteString(p.define)
	sb.WriteString("({")
	if len(entries) > 0 {
		sb.WriteString("\n")
		sb.WriteString(strings.Join(entries, ",\n"))
		sb.WriteString("\n")
	}
	sb.WriteString("});\n")

	return Serialized{Contents: sb.String(), ModuleCount: len(b.Order)}, nil
}

// Descriptor tells the loader where to fetch a lazily loaded bundle.
type Descriptor struct {
	Source  string       `json:"source"`
	Style   string       `json:"style,omitempty"`
	Bundles []Descriptor `json:"bundles,omitempty"`
}

func (p *Packer) descriptor(b *domain.Bundle) Descriptor {
	d := p.file(b)
	for _, name := range p.hardOrder(b) {
		if hard, ok := p.sess.Bundles.Get(name); ok {
			d.Bundles = append(d.Bundles, p.file(hard))
		}
	}
	return d
}

func (p *Packer) file(b *domain.Bundle) Descriptor {
	d := Descriptor{Source: ScriptFile(b)}
	if b.Style != "" {
		d.Style = StyleFile(b)
	}
	return d
}

// hardOrder lists the hard dependencies of b in bundle load order.
func (p *Packer) hardOrder(b *domain.Bundle) []domain.InternedString {
	var out []domain.InternedString
	for _, name := range p.sess.Bundles.Names() {
		if slices.Contains(b.HardDependencies, name) {
			out = append(out, name)
		}
	}
	return out
}

func (p *Packer) invalid(b *domain.Bundle, module string, target domain.InternedString) error {
	err := zerr.Wrap(domain.ErrInvalidManifestReference, "dependency is not part of the build")
	err = zerr.With(err, "bundle", b.Name.String())
	err = zerr.With(err, "module", module)
	return zerr.With(err, "target", target.String())
}

func body(m *domain.Module) string {
	switch m.Kind {
	case domain.KindJSON:
		return "module.exports = " + strings.TrimSpace(m.Contents) + ";"
	case domain.KindStyle:
		return ""
	default:
		return m.Contents
	}
}

// EntryAlias is the name an entry module is reachable by from outside the bundle.
func EntryAlias(m *domain.Module) string {
	rel := m.DisplayName()
	if m.IsPackage {
		return rel
	}
	return strings.TrimSuffix(rel, path.Ext(rel))
}

// ScriptFile is the output path of a bundle's script.
func ScriptFile(b *domain.Bundle) string {
	return b.Name.String() + ".js"
}

// StyleFile is the output path of a bundle's stylesheet.
func StyleFile(b *domain.Bundle) string {
	return b.Name.String() + ".css"
}

func quote(s string) string {
	out, _ := json.Marshal(s)
	return string(out)
}
