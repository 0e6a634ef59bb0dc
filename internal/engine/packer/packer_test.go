package packer_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/stitch/internal/core/domain"
	"go.trai.ch/stitch/internal/engine/factor"
	"go.trai.ch/stitch/internal/engine/order"
	"go.trai.ch/stitch/internal/engine/packer"
)

type ref struct {
	to   string
	lazy bool
}

type file struct {
	name     string
	contents string
	refs     []ref
}

func key(name string) domain.InternedString {
	return domain.NewInternedString("/app/" + name)
}

// build factors and orders a graph; the first file is the only entry unless entries is set.
func build(t *testing.T, entries []string, files ...file) *domain.Session {
	t.Helper()
	if entries == nil {
		entries = []string{files[0].name}
	}
	sess := domain.NewSession(&domain.Project{Root: "/app"})
	for _, f := range files {
		m := &domain.Module{
			Name:     key(f.name),
			RelName:  f.name,
			Fullpath: "/app/" + f.name,
			Contents: f.contents,
			Kind:     domain.KindOf(f.name),
		}
		for _, e := range entries {
			m.Entry = m.Entry || e == f.name
		}
		for _, r := range f.refs {
			m.Dependencies = append(m.Dependencies, domain.Dependency{Name: key(r.to), Alias: "./" + r.to, Request: r.lazy})
		}
		require.NoError(t, sess.Table.Add(m))
	}
	for m := range sess.Table.All() {
		for _, d := range m.Dependencies {
			target, ok := sess.Table.Get(d.Name)
			require.True(t, ok)
			target.Dependents = append(target.Dependents, m.Name)
			target.Request = target.Request || d.Request
		}
	}
	require.NoError(t, factor.Factor(sess))
	require.NoError(t, order.Sort(sess))
	return sess
}

func bundleOf(t *testing.T, sess *domain.Session, name string) *domain.Bundle {
	t.Helper()
	m, ok := sess.Table.Get(key(name))
	require.True(t, ok)
	b, ok := sess.Bundles.Get(m.BundleName)
	require.True(t, ok)
	return b
}

func TestAssignIDs(t *testing.T) {
	forward := domain.NewTable()
	backward := domain.NewTable()
	var names []string
	for i := range 200 {
		names = append(names, "/app/m"+strings.Repeat("x", i%7)+string(rune('a'+i%26))+"/"+string(rune('a'+i/26))+".js")
	}
	for _, n := range names {
		require.NoError(t, forward.Add(&domain.Module{Name: domain.NewInternedString(n)}))
	}
	for i := len(names) - 1; i >= 0; i-- {
		require.NoError(t, backward.Add(&domain.Module{Name: domain.NewInternedString(names[i])}))
	}

	ids := packer.AssignIDs(forward)

	assert.Equal(t, ids, packer.AssignIDs(backward))
	seen := make(map[string]bool)
	for _, id := range ids {
		assert.GreaterOrEqual(t, len(id), 4)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, len(names))
}

func TestPack_EntryBundle(t *testing.T) {
	sess := build(t, nil,
		file{name: "src/main.js", contents: `var a = require("./a");`, refs: []ref{{to: "a.js"}, {to: "lazy.js", lazy: true}}},
		file{name: "a.js", contents: `module.exports = 1;`},
		file{name: "lazy.js", contents: `exports.later = true;`},
	)
	p := packer.New(sess)
	ids := p.IDs()
	core := bundleOf(t, sess, "src/main.js")
	lazy := bundleOf(t, sess, "lazy.js")

	out, err := p.Pack(core)
	require.NoError(t, err)

	assert.Equal(t, 2, out.ModuleCount)
	assert.True(t, strings.HasPrefix(out.Contents, "require.define({\n"))
	assert.True(t, strings.HasSuffix(out.Contents, "\n});\n"))
	assert.Contains(t, out.Contents, `"`+ids[key("a.js")]+`": [function(require, module, exports) {
module.exports = 1;
}, {}]`)
	assert.Contains(t, out.Contents, `{"./a.js": "`+ids[key("a.js")]+`", "./lazy.js": "`+ids[key("lazy.js")]+`"}]`)
	assert.Contains(t, out.Contents, `"`+ids[key("lazy.js")]+`": {"source":"`+lazy.Name.String()+`.js"}`)
	assert.Contains(t, out.Contents, `"src/main": "`+ids[key("src/main.js")]+`"`)
	assert.Less(t, strings.Index(out.Contents, `"`+ids[key("a.js")]+`": [`), strings.Index(out.Contents, `"`+ids[key("src/main.js")]+`": [`))
}

func TestPack_DescriptorCarriesHardDependencies(t *testing.T) {
	sess := build(t, nil,
		file{name: "E.js", refs: []ref{{to: "A.js"}}},
		file{name: "A.js", refs: []ref{{to: "B.js", lazy: true}, {to: "C.js", lazy: true}}},
		file{name: "B.js", refs: []ref{{to: "S.js", lazy: true}}},
		file{name: "C.js", refs: []ref{{to: "S.js", lazy: true}}},
		file{name: "S.js"},
	)
	s := bundleOf(t, sess, "S.js")
	s.Style = ".s { color: red }"
	b := bundleOf(t, sess, "B.js")
	p := packer.New(sess)

	out, err := p.Pack(bundleOf(t, sess, "E.js"))
	require.NoError(t, err)

	want := `"` + p.IDs()[key("B.js")] + `": {"source":"` + b.Name.String() + `.js","bundles":[{"source":"` +
		s.Name.String() + `.js","style":"` + s.Name.String() + `.css"}]}`
	assert.Contains(t, out.Contents, want)
	assert.NotContains(t, out.Contents, `"`+p.IDs()[key("S.js")]+`": {`)
}

func TestPack_RequiredModuleResolvableFromLazyBundle(t *testing.T) {
	sess := build(t, nil,
		file{name: "E.js", refs: []ref{{to: "X.js"}, {to: "L.js", lazy: true}}},
		file{name: "X.js"},
		file{name: "L.js", refs: []ref{{to: "X.js", lazy: true}}},
	)
	p := packer.New(sess)

	out, err := p.Pack(bundleOf(t, sess, "L.js"))
	require.NoError(t, err)

	xID := p.IDs()[key("X.js")]
	assert.Contains(t, out.Contents, `{"./X.js": "`+xID+`"}`)
	assert.NotContains(t, out.Contents, `"`+xID+`": `)
	assert.Equal(t, 1, out.ModuleCount)
}

func TestPack_ModuleKinds(t *testing.T) {
	sess := build(t, nil,
		file{name: "main.js", refs: []ref{{to: "data.json"}, {to: "look.css"}}},
		file{name: "data.json", contents: "{\"a\": 1}\n"},
		file{name: "look.css", contents: "body {}"},
	)
	p := packer.New(sess)

	out, err := p.Pack(bundleOf(t, sess, "main.js"))
	require.NoError(t, err)

	assert.Contains(t, out.Contents, "{\nmodule.exports = {\"a\": 1};\n}")
	assert.NotContains(t, out.Contents, "body {}")
}

func TestPack_CustomDefine(t *testing.T) {
	sess := build(t, nil, file{name: "main.js"})
	sess.Project.Define = "loader.register"

	require.NoError(t, packer.New(sess).PackAll())

	assert.True(t, strings.HasPrefix(bundleOf(t, sess, "main.js").Contents, "loader.register({"))
}

func TestPack_InvalidManifestReference(t *testing.T) {
	sess := build(t, nil, file{name: "main.js"})
	main, _ := sess.Table.Get(key("main.js"))
	main.Dependencies = append(main.Dependencies, domain.Dependency{Name: key("ghost.js"), Alias: "./ghost"})

	_, err := packer.New(sess).Pack(bundleOf(t, sess, "main.js"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidManifestReference))
}

func TestPack_Deterministic(t *testing.T) {
	run := func() map[string]string {
		sess := build(t, nil,
			file{name: "main.js", contents: "require('./a.js')", refs: []ref{{to: "a.js"}, {to: "b.js", lazy: true}}},
			file{name: "a.js", contents: "1"},
			file{name: "b.js", contents: "2", refs: []ref{{to: "a.js"}}},
		)
		require.NoError(t, packer.New(sess).PackAll())
		out := make(map[string]string)
		for b := range sess.Bundles.All() {
			out[b.Name.String()] = b.Contents
		}
		return out
	}

	assert.Equal(t, run(), run())
}

func TestMerge(t *testing.T) {
	sess := build(t, []string{"app.js", "admin.js"},
		file{name: "app.js", refs: []ref{{to: "util.js"}}},
		file{name: "admin.js", refs: []ref{{to: "util.js"}, {to: "panel.js", lazy: true}}},
		file{name: "util.js"},
		file{name: "panel.js", refs: []ref{{to: "util.js"}}},
	)
	app := bundleOf(t, sess, "app.js")
	admin := bundleOf(t, sess, "admin.js")
	panel := bundleOf(t, sess, "panel.js")
	require.Equal(t, []domain.InternedString{app.Name, admin.Name, panel.Name}, sess.Bundles.Names())
	app.Style = ".app {}"
	admin.Style = ".admin {}"

	packer.Merge(sess)

	assert.Equal(t, ".app {}\n.admin {}", admin.Style)
	assert.Empty(t, app.Style)

	assert.Equal(t, []domain.InternedString{app.Name, admin.Name, panel.Name}, sess.Bundles.Names())
	assert.True(t, app.Empty())
	assert.Empty(t, app.Order)
	assert.True(t, admin.Entry)
	assert.Equal(t, []domain.InternedString{key("util.js"), key("app.js"), key("admin.js")}, admin.Order)
	assert.Equal(t, []domain.InternedString{admin.Name}, panel.Dependencies)
	assert.Equal(t, []domain.InternedString{panel.Name}, admin.Dependents)

	util, _ := sess.Table.Get(key("util.js"))
	assert.Equal(t, app.Name, util.BundleName)

	p := packer.New(sess)
	require.NoError(t, p.PackAll())
	assert.Equal(t, "require.define({});\n", app.Contents)
	assert.Contains(t, admin.Contents, `"app": "`+p.IDs()[key("app.js")]+`"`)
	assert.Contains(t, admin.Contents, `"admin": "`+p.IDs()[key("admin.js")]+`"`)
}

func TestMerge_SingleStaticBundle(t *testing.T) {
	sess := build(t, nil,
		file{name: "main.js", refs: []ref{{to: "lazy.js", lazy: true}}},
		file{name: "lazy.js"},
	)
	before := sess.Bundles.Names()

	packer.Merge(sess)

	assert.Equal(t, before, sess.Bundles.Names())
	assert.False(t, bundleOf(t, sess, "main.js").Empty())
}

func TestFiles(t *testing.T) {
	sess := build(t, nil,
		file{name: "main.js", refs: []ref{{to: "lazy.js", lazy: true}}},
		file{name: "lazy.js"},
	)
	main := bundleOf(t, sess, "main.js")
	lazy := bundleOf(t, sess, "lazy.js")
	main.Style = "body {}"
	require.NoError(t, packer.New(sess).PackAll())

	files, err := packer.Files(sess)
	require.NoError(t, err)

	var outfiles []string
	for _, f := range files {
		outfiles = append(outfiles, f.Outfile)
		assert.False(t, f.IsCopy())
	}
	assert.Equal(t, []string{"main.js", "main.css", lazy.Name.String() + ".js", packer.ManifestFile}, outfiles)

	var manifest packer.Manifest
	require.NoError(t, json.Unmarshal([]byte(files[len(files)-1].Contents), &manifest))
	require.Len(t, manifest.Bundles, 2)
	assert.Equal(t, packer.BundleInfo{Name: "main", Source: "main.js", Style: "main.css", Entry: true, Modules: 1}, manifest.Bundles[0])
	assert.True(t, manifest.Bundles[1].Request)
}
