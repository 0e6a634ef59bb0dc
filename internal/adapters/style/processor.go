// Package style implements the style collaborator: stylesheet modules are concatenated in bundle order.
package style

import (
	"strings"

	"go.trai.ch/stitch/internal/core/domain"
	"go.trai.ch/stitch/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.StyleProcessor = (*Processor)(nil)

// Processor concatenates the stylesheet modules of a bundle.
type Processor struct{}

// NewProcessor creates a new Processor.
func NewProcessor() *Processor {
	return &Processor{}
}

// Styles returns the text of every style module of bundle, in module order, separated by newlines.
// Bundles that are not ordered yet fall back to discovery order.
func (p *Processor) Styles(bundle *domain.Bundle, table *domain.Table) (string, error) {
	names := bundle.Order
	if len(names) == 0 {
		names = bundle.Modules
	}

	var parts []string
	for _, name := range names {
		m, ok := table.Get(name)
		if !ok {
			err := zerr.Wrap(domain.ErrInvalidManifestReference, "bundle lists a module missing from the table")
			return "", zerr.With(zerr.With(err, "bundle", bundle.Name.String()), "module", name.String())
		}
		if m.Kind != domain.KindStyle {
			continue
		}
		if text := strings.TrimSpace(m.Contents); text != "" {
			parts = append(parts, "/* "+m.DisplayName()+" */\n"+text)
		}
	}
	if len(parts) == 0 {
		return "", nil
	}
	return strings.Join(parts, "\n") + "\n", nil
}
