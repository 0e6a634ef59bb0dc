package style_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/stitch/internal/adapters/style"
	"go.trai.ch/stitch/internal/core/domain"
)

func table(t *testing.T, mods ...*domain.Module) *domain.Table {
	t.Helper()
	tbl := domain.NewTable()
	for _, m := range mods {
		require.NoError(t, tbl.Add(m))
	}
	return tbl
}

func mod(name, contents string) *domain.Module {
	return &domain.Module{
		Name:     domain.NewInternedString("/app/" + name),
		RelName:  name,
		Contents: contents,
		Kind:     domain.KindOf(name),
	}
}

func TestProcessor_Styles(t *testing.T) {
	base := mod("base.css", "body { margin: 0 }\n")
	app := mod("app.js", "require('./base.css')")
	theme := mod("theme.css", ".dark { color: #fff }")
	tbl := table(t, app, theme, base)
	b := &domain.Bundle{
		Name:    domain.NewInternedString("main"),
		Modules: []domain.InternedString{app.Name, theme.Name, base.Name},
		Order:   []domain.InternedString{base.Name, theme.Name, app.Name},
	}

	got, err := style.NewProcessor().Styles(b, tbl)

	require.NoError(t, err)
	assert.Equal(t, "/* base.css */\nbody { margin: 0 }\n/* theme.css */\n.dark { color: #fff }\n", got)
}

func TestProcessor_UnorderedBundleUsesDiscoveryOrder(t *testing.T) {
	a := mod("a.css", "a {}")
	b := mod("b.css", "b {}")
	bundle := &domain.Bundle{Name: domain.NewInternedString("x"), Modules: []domain.InternedString{b.Name, a.Name}}

	got, err := style.NewProcessor().Styles(bundle, table(t, a, b))

	require.NoError(t, err)
	assert.Equal(t, "/* b.css */\nb {}\n/* a.css */\na {}\n", got)
}

func TestProcessor_NoStyles(t *testing.T) {
	app := mod("app.js", "1")
	empty := mod("empty.css", "  \n")
	bundle := &domain.Bundle{Name: domain.NewInternedString("x"), Order: []domain.InternedString{app.Name, empty.Name}}

	got, err := style.NewProcessor().Styles(bundle, table(t, app, empty))

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestProcessor_UnknownModule(t *testing.T) {
	bundle := &domain.Bundle{Name: domain.NewInternedString("x"), Order: []domain.InternedString{domain.NewInternedString("/ghost.css")}}

	_, err := style.NewProcessor().Styles(bundle, domain.NewTable())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidManifestReference))
}
