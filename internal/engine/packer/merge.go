package packer

import (
	"slices"
	"strings"

	"go.trai.ch/stitch/internal/core/domain"
)

// Merge moves the modules of every statically loaded bundle into the last one in load order.
// The other static bundles stay behind empty so references to their names remain valid.
// Module bundle names are left untouched. Merge must run after the bundles are ordered.
func Merge(sess *domain.Session) {
	var static []*domain.Bundle
	for b := range sess.Bundles.All() {
		if !b.Request {
			static = append(static, b)
		}
	}
	if len(static) < 2 {
		return
	}

	last := static[len(static)-1]
	merged := make(map[domain.InternedString]bool, len(static))
	var modules, order []domain.InternedString
	var styles []string
	for _, b := range static {
		merged[b.Name] = true
		modules = append(modules, b.Modules...)
		order = append(order, b.Order...)
		if b.Style != "" {
			styles = append(styles, b.Style)
		}
		last.Entry = last.Entry || b.Entry
	}

	var placeholders []domain.InternedString
	for _, b := range static[:len(static)-1] {
		b.Modules, b.Order = nil, nil
		b.Dependencies, b.Dependents = nil, nil
		b.Entry = false
		b.Style = ""
		placeholders = append(placeholders, b.Name)
	}
	last.Modules, last.Order = modules, order
	last.Style = strings.Join(styles, "\n")
	last.Dependencies, last.Dependents = nil, nil

	for b := range sess.Bundles.All() {
		if !b.Request {
			continue
		}
		deps := b.Dependencies
		b.Dependencies = nil
		for _, name := range deps {
			if merged[name] {
				name = last.Name
			}
			if !slices.Contains(b.Dependencies, name) {
				b.Dependencies = append(b.Dependencies, name)
			}
		}
		if slices.Contains(b.Dependencies, last.Name) && !slices.Contains(last.Dependents, b.Name) {
			last.Dependents = append(last.Dependents, b.Name)
		}
	}

	sess.Bundles.Reorder(append(placeholders, last.Name))
}
