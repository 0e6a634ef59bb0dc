// Package domain contains the core models of the bundler: module records, bundles,
// and the ordering algorithm shared by the module and bundle graphs.
package domain

import (
	"fmt"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// SortInput describes a directed graph to linearize.
type SortInput[K comparable] struct {
	// Nodes in input order. Ties between ready nodes are broken by this order.
	Nodes []K
	// Deps returns the nodes that must precede n. Targets outside Nodes are ignored.
	Deps func(n K) []K
	// Keep reports whether an isolated node must still be emitted.
	Keep func(n K) bool
	// Label renders a node in error messages.
	Label func(n K) string
}

// Sorted is the result of TopoSort.
type Sorted[K comparable] struct {
	Order []K
	// Dropped lists isolated nodes that were not kept.
	Dropped []K
}

// TopoSort orders in.Nodes so that every node follows its dependencies.
// Ready nodes are processed first-in first-out, seeded in input order, so the result only depends on the input.
func TopoSort[K comparable](in SortInput[K]) (Sorted[K], error) {
	index := make(map[K]int, len(in.Nodes))
	nodes := make([]K, 0, len(in.Nodes))
	for _, n := range in.Nodes {
		if _, dup := index[n]; dup {
			continue
		}
		index[n] = len(nodes)
		nodes = append(nodes, n)
	}

	pending := make(map[K]int, len(nodes))
	dependents := make(map[K][]K, len(nodes))
	for _, n := range nodes {
		seen := make(map[K]bool)
		for _, d := range in.Deps(n) {
			if _, ok := index[d]; !ok || d == n || seen[d] {
				continue
			}
			seen[d] = true
			pending[n]++
			dependents[d] = append(dependents[d], n)
		}
	}

	var res Sorted[K]
	queue := make([]K, 0, len(nodes))
	for _, n := range nodes {
		if pending[n] != 0 {
			continue
		}
		if len(dependents[n]) == 0 && (in.Keep == nil || !in.Keep(n)) {
			res.Dropped = append(res.Dropped, n)
			continue
		}
		queue = append(queue, n)
	}

	done := make(map[K]bool, len(nodes))
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		done[n] = true
		res.Order = append(res.Order, n)
		for _, d := range dependents[n] {
			pending[d]--
			if pending[d] == 0 {
				queue = append(queue, d)
			}
		}
	}

	if len(res.Order)+len(res.Dropped) < len(nodes) {
		return Sorted[K]{}, cycleError(in, nodes, done)
	}
	return res, nil
}

func cycleError[K comparable](in SortInput[K], nodes []K, done map[K]bool) error {
	label := in.Label
	if label == nil {
		label = func(n K) string { return fmt.Sprint(n) }
	}

	stuck := make(map[K]bool)
	for _, n := range nodes {
		if !done[n] {
			stuck[n] = true
		}
	}

	waits := make(map[string][]string)
	var parts []string
	for _, n := range nodes {
		if !stuck[n] {
			continue
		}
		var on []string
		for _, d := range in.Deps(n) {
			if stuck[d] && d != n && !slices.Contains(on, label(d)) {
				on = append(on, label(d))
			}
		}
		waits[label(n)] = on
		parts = append(parts, fmt.Sprintf("%s waits on [%s]", label(n), strings.Join(on, ", ")))
	}

	err := zerr.Wrap(ErrCycleDetected, strings.Join(parts, "; "))
	return zerr.With(err, "nodes", waits)
}
