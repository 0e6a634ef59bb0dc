// Package output writes build output files to disk.
package output

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"go.trai.ch/stitch/internal/core/domain"
	"go.trai.ch/stitch/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

const (
	dirPerm  = 0o750
	filePerm = 0o644
	// parallelism bounds concurrent file writes.
	parallelism = 8
)

var _ ports.OutputWriter = (*Writer)(nil)

// Writer implements ports.OutputWriter on the host disk.
type Writer struct{}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write materializes files under dir. Copies whose destination is already up to date are skipped.
func (w *Writer) Write(ctx context.Context, dir string, files []domain.OutputFile) error {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create output directory"), "dir", dir)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for _, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			target := filepath.Join(dir, filepath.FromSlash(f.Outfile))
			if err := os.MkdirAll(filepath.Dir(target), dirPerm); err != nil {
				return zerr.With(zerr.Wrap(err, "failed to create output directory"), "dir", filepath.Dir(target))
			}
			if f.IsCopy() {
				return copyFile(f, target)
			}
			if err := os.WriteFile(target, []byte(f.Contents), filePerm); err != nil { //nolint:gosec // output is world-readable
				return zerr.With(zerr.Wrap(err, "failed to write output file"), "file", target)
			}
			return nil
		})
	}
	return g.Wait()
}

func copyFile(f domain.OutputFile, target string) (err error) {
	src, statErr := os.Stat(f.Source)
	if statErr != nil {
		return zerr.With(zerr.Wrap(statErr, "failed to stat asset"), "file", f.Source)
	}
	if dst, err := os.Stat(target); err == nil && dst.Size() == src.Size() && !dst.ModTime().Before(src.ModTime()) {
		return nil
	}

	in, err := os.Open(f.Source)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to open asset"), "file", f.Source)
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, filePerm) //nolint:gosec // output is world-readable
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create output file"), "file", target)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = zerr.With(zerr.Wrap(cerr, "failed to close output file"), "file", target)
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to copy asset"), "file", target)
	}

	mtime := f.Mtime
	if mtime.IsZero() {
		mtime = src.ModTime()
	}
	if err := os.Chtimes(target, mtime, mtime); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to set asset mtime"), "file", target)
	}
	return nil
}
