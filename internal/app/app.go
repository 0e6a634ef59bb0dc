// Package app implements the application layer for stitch.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/vito/progrock"
	"go.trai.ch/stitch/internal/adapters/telemetry"
	"go.trai.ch/stitch/internal/core/domain"
	"go.trai.ch/stitch/internal/core/ports"
	"go.trai.ch/stitch/internal/engine/cache"
	"go.trai.ch/stitch/internal/engine/factor"
	"go.trai.ch/stitch/internal/engine/graph"
	"go.trai.ch/stitch/internal/engine/order"
	"go.trai.ch/stitch/internal/engine/packer"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	entries      ports.EntryResolver
	graph        *graph.Builder
	cache        *cache.Manager
	styles       ports.StyleProcessor
	assets       ports.AssetProcessor
	writer       ports.OutputWriter
	logger       ports.Logger
	tracer       ports.Tracer
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	entries ports.EntryResolver,
	builder *graph.Builder,
	cacheManager *cache.Manager,
	styles ports.StyleProcessor,
	assets ports.AssetProcessor,
	writer ports.OutputWriter,
	log ports.Logger,
	tracer ports.Tracer,
) *App {
	if tracer == nil {
		tracer = telemetry.Discard
	}
	return &App{
		configLoader: loader,
		entries:      entries,
		graph:        builder,
		cache:        cacheManager,
		styles:       styles,
		assets:       assets,
		writer:       writer,
		logger:       log,
		tracer:       tracer,
	}
}

// BuildOptions configuration for the Build method.
type BuildOptions struct {
	// Dir is where the configuration search starts. Empty means the working directory.
	Dir        string
	Production bool
	NoCache    bool
	ResetCache bool
	// Timings logs the duration of every stage.
	Timings bool
}

// Report summarizes a finished build.
type Report struct {
	Modules     int
	Bundles     int
	CacheHits   int
	Stale       int
	Diagnostics []domain.Diagnostic
	Files       int
}

// Build runs the whole pipeline for the project found from opts.Dir.
//
//nolint:cyclop // orchestration function
func (a *App) Build(ctx context.Context, opts BuildOptions) (report Report, err error) {
	tracer := a.tracer
	if opts.Timings {
		recorder := telemetry.NewRecorder(progrock.NewTape())
		var shutdown func(context.Context) error
		tracer, shutdown = telemetry.Setup(telemetry.Fanout{telemetry.NewLogProgress(a.logger), recorder})
		defer func() {
			_ = shutdown(context.WithoutCancel(ctx))
			_ = recorder.Close()
		}()
	}

	ctx, span := tracer.Start(ctx, "build")
	defer func() {
		span.RecordError(err)
		span.End()
	}()

	// 1. Load the configuration
	project, err := stage(ctx, tracer, "config", func(_ context.Context, _ ports.Span) (*domain.Project, error) {
		return a.load(opts.Dir)
	})
	if err != nil {
		return report, err
	}
	if opts.Production {
		project.Production = true
	}
	sess := domain.NewSession(project)
	useCache := project.Cache.Enabled && !opts.NoCache

	// 2. Read the previous build's cache
	if useCache && opts.ResetCache {
		if err := a.cache.Clean(project); err != nil {
			return report, err
		}
	}
	if useCache && !opts.ResetCache {
		stats, err := stage(ctx, tracer, "cache.read", func(ctx context.Context, s ports.Span) (cache.Stats, error) {
			stats, err := a.cache.Load(ctx, sess)
			s.SetAttribute("valid", stats.Valid)
			s.SetAttribute("stale", stats.Stale)
			return stats, err
		})
		if err != nil {
			return report, err
		}
		report.CacheHits, report.Stale = stats.Valid, stats.Stale
	}

	// 3. Resolve the module graph
	_, err = stage(ctx, tracer, "graph", func(ctx context.Context, s ports.Span) (struct{}, error) {
		entries, err := a.entries.ResolveInputs(project.Entries, project.Root)
		if err != nil {
			return struct{}{}, err
		}
		s.SetAttribute("entries", len(entries))
		err = a.graph.Build(ctx, sess, entries)
		s.SetAttribute("modules", sess.Table.Len())
		return struct{}{}, err
	})
	if err != nil {
		return report, err
	}

	// 4. Factor and order bundles
	_, err = stage(ctx, tracer, "factor", func(_ context.Context, s ports.Span) (struct{}, error) {
		err := factor.Factor(sess)
		s.SetAttribute("bundles", len(sess.Bundles.Names()))
		return struct{}{}, err
	})
	if err != nil {
		return report, err
	}
	if _, err = stage(ctx, tracer, "order", func(_ context.Context, _ ports.Span) (struct{}, error) {
		return struct{}{}, order.Sort(sess)
	}); err != nil {
		return report, err
	}

	// 5. Collect styles, merge for production and pack
	if _, err = stage(ctx, tracer, "pack", func(_ context.Context, _ ports.Span) (struct{}, error) {
		return struct{}{}, a.pack(sess)
	}); err != nil {
		return report, err
	}

	// 6. Write the output tree
	files, err := stage(ctx, tracer, "emit", func(ctx context.Context, s ports.Span) ([]domain.OutputFile, error) {
		files, err := a.emit(ctx, sess)
		s.SetAttribute("files", len(files))
		return files, err
	})
	if err != nil {
		return report, err
	}

	// 7. Persist the cache
	if useCache {
		if _, err = stage(ctx, tracer, "cache.write", func(_ context.Context, _ ports.Span) (struct{}, error) {
			return struct{}{}, a.cache.Write(sess)
		}); err != nil {
			return report, err
		}
	}

	report.Modules = sess.Table.Len()
	for b := range sess.Bundles.All() {
		if !b.Empty() {
			report.Bundles++
		}
	}
	report.Diagnostics = sess.Diagnostics()
	report.Files = len(files)
	a.summarize(report)
	return report, nil
}

func (a *App) load(dir string) (*domain.Project, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, zerr.Wrap(err, "failed to get working directory")
		}
		dir = wd
	}
	project, err := a.configLoader.Load(dir)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	return project, nil
}

func (a *App) pack(sess *domain.Session) error {
	for b := range sess.Bundles.All() {
		style, err := a.styles.Styles(b, sess.Table)
		if err != nil {
			return err
		}
		b.Style = style
	}
	if sess.Project.Production {
		packer.Merge(sess)
	}
	return packer.New(sess).PackAll()
}

func (a *App) emit(ctx context.Context, sess *domain.Session) ([]domain.OutputFile, error) {
	files, err := packer.Files(sess)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(files))
	for _, f := range files {
		seen[f.Outfile] = true
	}
	for b := range sess.Bundles.All() {
		copies, err := a.assets.Assets(ctx, sess.Project, b, sess.Table)
		if err != nil {
			return nil, err
		}
		for _, c := range copies {
			if !seen[c.Outfile] {
				seen[c.Outfile] = true
				files = append(files, c)
			}
		}
	}

	if err := a.writer.Write(ctx, sess.Project.Output, files); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to write output"), "dir", sess.Project.Output)
	}
	return files, nil
}

func (a *App) summarize(r Report) {
	for _, d := range r.Diagnostics {
		a.logger.Warn(d.Message, "kind", string(d.Kind), "subject", d.Subject)
	}
	a.logger.Info("build complete",
		"modules", r.Modules,
		"bundles", r.Bundles,
		"cache_hits", r.CacheHits,
		"stale", r.Stale,
		"diagnostics", len(r.Diagnostics),
		"files", r.Files,
	)
}

// stage runs fn inside a span named name, recording its error.
func stage[T any](ctx context.Context, tracer ports.Tracer, name string, fn func(context.Context, ports.Span) (T, error)) (T, error) {
	ctx, span := tracer.Start(ctx, name)
	defer span.End()
	v, err := fn(ctx, span)
	span.RecordError(err)
	return v, err
}

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	Dir    string
	Output bool
}

// Clean removes the cache file and, when requested, the output directory.
func (a *App) Clean(_ context.Context, options CleanOptions) error {
	project, err := a.load(options.Dir)
	if err != nil {
		return err
	}

	var errs error
	a.logger.Info("removing module cache...", "path", cache.Path(project))
	if err := a.cache.Clean(project); err != nil {
		errs = errors.Join(errs, err)
	}

	if options.Output {
		a.logger.Info(fmt.Sprintf("removing %s...", project.Output))
		if err := os.RemoveAll(project.Output); err != nil {
			errs = errors.Join(errs, zerr.Wrap(err, "failed to remove output directory"))
		}
	}
	return errs
}
