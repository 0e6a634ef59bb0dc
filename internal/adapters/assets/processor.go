// Package assets implements the asset collaborator: files named by asset tokens become copy instructions.
package assets

import (
	"context"
	"errors"
	iofs "io/fs"

	fsadapter "go.trai.ch/stitch/internal/adapters/fs"
	"go.trai.ch/stitch/internal/core/domain"
	"go.trai.ch/stitch/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

var _ ports.AssetProcessor = (*Processor)(nil)

// Processor lists asset copies for a bundle.
type Processor struct {
	files  ports.FileSystem
	walker *fsadapter.Walker
}

// NewProcessor creates a Processor reading through files and walking directories with walker.
func NewProcessor(files ports.FileSystem, walker *fsadapter.Walker) *Processor {
	return &Processor{files: files, walker: walker}
}

type asset struct {
	module *domain.Module
	source string
}

// Assets returns one copy instruction per file referenced by the modules of bundle.
// A referenced directory contributes every file below it. Instructions are deduplicated by Outfile
// and keep module order.
func (p *Processor) Assets(
	ctx context.Context, project *domain.Project, bundle *domain.Bundle, table *domain.Table,
) ([]domain.OutputFile, error) {
	names := bundle.Order
	if len(names) == 0 {
		names = bundle.Modules
	}

	var list []asset
	for _, name := range names {
		m, ok := table.Get(name)
		if !ok {
			continue
		}
		for _, src := range m.Assets {
			list = append(list, asset{module: m, source: src})
		}
	}
	if len(list) == 0 {
		return nil, nil
	}

	results := make([][]domain.OutputFile, len(list))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(project.Concurrency, 1))
	for i, a := range list {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			files, err := p.expand(project, a)
			if err != nil {
				return err
			}
			results[i] = files
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var out []domain.OutputFile
	for _, files := range results {
		for _, f := range files {
			if seen[f.Outfile] {
				continue
			}
			seen[f.Outfile] = true
			out = append(out, f)
		}
	}
	return out, nil
}

func (p *Processor) expand(project *domain.Project, a asset) ([]domain.OutputFile, error) {
	info, err := p.files.Stat(a.source)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			err = zerr.Wrap(domain.ErrAssetNotFound, "referenced asset does not exist")
		} else {
			err = zerr.Wrap(err, "failed to stat asset")
		}
		return nil, zerr.With(zerr.With(err, "module", a.module.DisplayName()), "asset", a.source)
	}
	if !info.IsDir() {
		return []domain.OutputFile{{
			Outfile: project.AssetPath(a.module, a.source),
			Source:  a.source,
			Mtime:   info.ModTime(),
		}}, nil
	}

	var out []domain.OutputFile
	for file := range p.walker.WalkFiles(a.source, nil) {
		fi, err := p.files.Stat(file)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to stat asset"), "asset", file)
		}
		out = append(out, domain.OutputFile{
			Outfile: project.AssetPath(a.module, file),
			Source:  file,
			Mtime:   fi.ModTime(),
		})
	}
	return out, nil
}
