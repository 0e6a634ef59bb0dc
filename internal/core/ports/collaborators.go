package ports

import (
	"context"

	"go.trai.ch/stitch/internal/core/domain"
)

// StyleProcessor produces the stylesheet text of one bundle.
//
//go:generate mockgen -source=collaborators.go -destination=mocks/mock_collaborators.go -package=mocks
type StyleProcessor interface {
	// Styles receives the bundle with its module order set and returns the concatenated style text.
	Styles(bundle *domain.Bundle, table *domain.Table) (string, error)
}

// AssetProcessor lists the files a bundle's modules reference through asset tokens.
type AssetProcessor interface {
	// Assets returns copy instructions with output-relative Outfile values.
	Assets(ctx context.Context, project *domain.Project, bundle *domain.Bundle, table *domain.Table) ([]domain.OutputFile, error)
}

// OutputWriter is solely responsible for creating directories and writing files.
type OutputWriter interface {
	// Write materializes files under dir.
	Write(ctx context.Context, dir string, files []domain.OutputFile) error
}
