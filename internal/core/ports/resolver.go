package ports

import (
	"context"

	"go.trai.ch/stitch/internal/core/domain"
)

// EntryResolver expands entry patterns into files.
//
//go:generate mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks
type EntryResolver interface {
	// ResolveInputs resolves the given patterns, relative to root, to absolute file paths.
	ResolveInputs(patterns []string, root string) ([]string, error)
}

// ModuleResolver locates the module a reference points to.
type ModuleResolver interface {
	// Resolve finds ref as seen from the module from. A nil from resolves an entry point against the project root.
	// Failures wrap domain.ErrModuleNotFound or domain.ErrNotAPackage.
	Resolve(ctx context.Context, sess *domain.Session, ref string, from *domain.Module) (*domain.Module, error)
}
