package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/stitch/internal/core/domain"
	"go.trai.ch/zerr"
)

func sortInput(nodes []string, edges map[string][]string, keep ...string) domain.SortInput[string] {
	return domain.SortInput[string]{
		Nodes: nodes,
		Deps:  func(n string) []string { return edges[n] },
		Keep: func(n string) bool {
			for _, k := range keep {
				if k == n {
					return true
				}
			}
			return false
		},
	}
}

func TestTopoSort_Chain(t *testing.T) {
	// A depends on B, B depends on C.
	res, err := domain.TopoSort(sortInput(
		[]string{"A", "B", "C"},
		map[string][]string{"A": {"B"}, "B": {"C"}},
	))

	require.NoError(t, err)
	assert.Equal(t, []string{"C", "B", "A"}, res.Order)
	assert.Empty(t, res.Dropped)
}

func TestTopoSort_Cycle(t *testing.T) {
	_, err := domain.TopoSort(sortInput(
		[]string{"A", "B", "C"},
		map[string][]string{"A": {"B"}, "B": {"C"}, "C": {"A"}},
	))

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCycleDetected))
	assert.Contains(t, err.Error(), "A waits on [B]")
	assert.Contains(t, err.Error(), "B waits on [C]")
	assert.Contains(t, err.Error(), "C waits on [A]")

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok, "expected *zerr.Error, got %T", err)
	nodes, ok := zErr.Metadata()["nodes"].(map[string][]string)
	require.True(t, ok)
	assert.Len(t, nodes, 3)
}

func TestTopoSort_CycleListsBlockedDependents(t *testing.T) {
	// D is not on the cycle but can never become ready.
	_, err := domain.TopoSort(sortInput(
		[]string{"A", "B", "D"},
		map[string][]string{"A": {"B"}, "B": {"A"}, "D": {"A"}},
	))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "D waits on [A]")
}

func TestTopoSort_StableTies(t *testing.T) {
	nodes := []string{"app", "b", "a", "c"}
	edges := map[string][]string{"app": {"c", "a", "b"}}

	first, err := domain.TopoSort(sortInput(nodes, edges))
	require.NoError(t, err)
	second, err := domain.TopoSort(sortInput(nodes, edges))
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "a", "c", "app"}, first.Order)
	assert.Equal(t, first.Order, second.Order)
}

func TestTopoSort_Orphans(t *testing.T) {
	res, err := domain.TopoSort(sortInput(
		[]string{"entry", "lonely", "leaf", "main"},
		map[string][]string{"main": {"leaf"}},
		"entry",
	))

	require.NoError(t, err)
	assert.Equal(t, []string{"entry", "leaf", "main"}, res.Order)
	assert.Equal(t, []string{"lonely"}, res.Dropped)
}

func TestTopoSort_IgnoresForeignAndSelfEdges(t *testing.T) {
	res, err := domain.TopoSort(sortInput(
		[]string{"A", "B"},
		map[string][]string{"A": {"B", "elsewhere", "A", "B"}},
	))

	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, res.Order)
}

func TestTopoSort_InternedKeys(t *testing.T) {
	a := domain.NewInternedString("a.js")
	b := domain.NewInternedString("b.js")

	res, err := domain.TopoSort(domain.SortInput[domain.InternedString]{
		Nodes: []domain.InternedString{a, b},
		Deps: func(n domain.InternedString) []domain.InternedString {
			if n == a {
				return []domain.InternedString{b}
			}
			return nil
		},
		Label: domain.InternedString.String,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"b.js", "a.js"}, domain.Strings(res.Order))
}
