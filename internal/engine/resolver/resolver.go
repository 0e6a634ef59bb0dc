// Package resolver locates modules on disk: relative files, package directories and external libraries.
package resolver

import (
	"context"
	"errors"
	iofs "io/fs"
	"path/filepath"
	"strings"

	"go.trai.ch/stitch/internal/core/domain"
	"go.trai.ch/stitch/internal/core/ports"
	"go.trai.ch/zerr"
)

const nodeModules = "node_modules"

var _ ports.ModuleResolver = (*Resolver)(nil)

// Resolver implements ports.ModuleResolver. It keeps no state of its own; lookups are memoized on the session.
type Resolver struct {
	fs ports.FileSystem
}

// New creates a Resolver reading from fs.
func New(fs ports.FileSystem) *Resolver {
	return &Resolver{fs: fs}
}

// library is the package a resolved module belongs to.
type library struct {
	root     string
	name     string
	external bool
}

// Resolve finds ref as seen from the module from.
func (r *Resolver) Resolve(ctx context.Context, sess *domain.Session, ref string, from *domain.Module) (*domain.Module, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		m   *domain.Module
		err error
	)
	switch {
	case from == nil:
		target := filepath.FromSlash(ref)
		if !filepath.IsAbs(target) {
			target = filepath.Join(sess.Project.Root, target)
		}
		m, err = r.lookup(sess, filepath.Clean(target), r.libraryOf(sess, target))
	case isRelative(ref):
		target := filepath.Join(from.Dir(), filepath.FromSlash(ref))
		m, err = r.lookup(sess, target, inherit(from, target))
	case filepath.IsAbs(ref):
		m, err = r.lookup(sess, filepath.Clean(ref), nil)
	default:
		m, err = r.external(sess, ref, from)
	}
	if err != nil {
		return nil, zerr.With(zerr.With(err, "reference", ref), "requester", requester(from))
	}
	return m, nil
}

func isRelative(ref string) bool {
	return ref == "." || ref == ".." || strings.HasPrefix(ref, "./") || strings.HasPrefix(ref, "../")
}

func requester(from *domain.Module) string {
	if from == nil {
		return "<entry>"
	}
	return from.DisplayName()
}

// inherit keeps the library context of from when target stays inside its library.
func inherit(from *domain.Module, target string) *library {
	if from.Lib == "" {
		return nil
	}
	if _, ok := domain.RelWithin(from.Lib, target); !ok {
		return nil
	}
	return &library{root: from.Lib, name: from.LibName, external: from.External}
}

// libraryOf finds the configured library containing target, if any.
func (r *Resolver) libraryOf(sess *domain.Session, target string) *library {
	for _, lib := range sess.Project.Libraries {
		root := r.realpath(lib.Path)
		if _, ok := domain.RelWithin(root, target); ok {
			return &library{root: root, name: lib.Name, external: true}
		}
	}
	return nil
}

func (r *Resolver) realpath(p string) string {
	if real, err := r.fs.EvalSymlinks(p); err == nil {
		return real
	}
	return p
}

// external walks libraries, node_modules directories and configured search paths in order.
func (r *Resolver) external(sess *domain.Session, ref string, from *domain.Module) (*domain.Module, error) {
	pkg, sub := splitPackage(ref)

	for _, lib := range sess.Project.Libraries {
		if lib.Name != pkg {
			continue
		}
		root := r.realpath(lib.Path)
		return r.inPackage(sess, root, sub, &library{root: root, name: lib.Name, external: true})
	}

	var invalid error
	for _, root := range r.searchRoots(sess, from) {
		lib := &library{root: filepath.Join(root, filepath.FromSlash(pkg)), name: pkg, external: true}

		m, err := r.lookup(sess, filepath.Join(root, filepath.FromSlash(ref)), lib)
		if err == nil {
			return m, nil
		}
		if errors.Is(err, domain.ErrNotAPackage) && invalid == nil {
			invalid = err
		} else if !errors.Is(err, domain.ErrModuleNotFound) && !errors.Is(err, domain.ErrNotAPackage) {
			return nil, err
		}

		if sub == "" {
			continue
		}
		m, err = r.inPackage(sess, lib.root, sub, lib)
		if err == nil {
			return m, nil
		}
		if !errors.Is(err, domain.ErrModuleNotFound) && !errors.Is(err, domain.ErrNotAPackage) {
			return nil, err
		}
	}

	if invalid != nil {
		return nil, invalid
	}
	return nil, zerr.Wrap(domain.ErrModuleNotFound, "no search root contains the module")
}

// inPackage resolves sub inside the package at dir, remapped into its modules directory.
func (r *Resolver) inPackage(sess *domain.Session, dir, sub string, lib *library) (*domain.Module, error) {
	if sub == "" {
		return r.lookup(sess, dir, lib)
	}
	pkg, err := r.readPackage(sess, dir)
	if err != nil {
		return nil, err
	}
	return r.lookup(sess, filepath.Join(pkg.modules, filepath.FromSlash(sub)), lib)
}

// searchRoots lists node_modules directories from the requester up to the project root, then configured paths.
func (r *Resolver) searchRoots(sess *domain.Session, from *domain.Module) []string {
	var roots []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			roots = append(roots, p)
		}
	}

	dir := sess.Project.Root
	if from != nil {
		dir = from.Dir()
	}
	for {
		_, inRoot := domain.RelWithin(sess.Project.Root, dir)
		inLib := false
		if from != nil && from.Lib != "" {
			_, inLib = domain.RelWithin(from.Lib, dir)
		}
		if !inRoot && !inLib {
			break
		}
		if filepath.Base(dir) != nodeModules {
			add(filepath.Join(dir, nodeModules))
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	for _, p := range sess.Project.Paths {
		add(p)
	}
	return roots
}

// splitPackage splits "pkg/sub/file" and "@scope/pkg/sub" into the package name and the rest.
func splitPackage(ref string) (string, string) {
	parts := strings.SplitN(ref, "/", 3)
	if strings.HasPrefix(ref, "@") && len(parts) >= 2 {
		pkg := parts[0] + "/" + parts[1]
		if len(parts) == 3 {
			return pkg, parts[2]
		}
		return pkg, ""
	}
	pkg, sub, _ := strings.Cut(ref, "/")
	return pkg, sub
}

// lookup resolves a fully-qualified path once per build.
func (r *Resolver) lookup(sess *domain.Session, target string, lib *library) (*domain.Module, error) {
	v, err := sess.Memo().Do("module:"+target, func() (any, error) {
		return r.load(sess, target, lib)
	})
	if err != nil {
		return nil, err
	}
	m, _ := v.(*domain.Module)
	return m, nil
}

// load tries target as a file, as a package directory and with the default extension.
// Any stat failure counts as a miss.
func (r *Resolver) load(sess *domain.Session, target string, lib *library) (*domain.Module, error) {
	info, err := r.fs.Stat(target)
	switch {
	case err == nil && !info.IsDir():
		return r.loadFile(sess, target, info, lib)
	case err == nil:
		if m, err := r.loadPackage(sess, target, lib); !errors.Is(err, domain.ErrNotAPackage) {
			return m, err
		}
		if info, err := r.fs.Stat(target + defaultExt); err == nil && !info.IsDir() {
			return r.loadFile(sess, target+defaultExt, info, lib)
		}
		return nil, zerr.With(zerr.Wrap(domain.ErrNotAPackage, "directory has no package manifest"), "directory", target)
	}

	if info, err := r.fs.Stat(target + defaultExt); err == nil && !info.IsDir() {
		return r.loadFile(sess, target+defaultExt, info, lib)
	}
	return nil, zerr.With(zerr.Wrap(domain.ErrModuleNotFound, "file does not exist"), "path", target)
}

func (r *Resolver) loadFile(sess *domain.Session, path string, info iofs.FileInfo, lib *library) (*domain.Module, error) {
	name := domain.NewInternedString(filepath.ToSlash(path))
	if m, ok := sess.Cached(name); ok {
		return r.describe(sess, m, lib), nil
	}

	data, err := r.fs.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read module"), "path", path)
	}

	m := &domain.Module{
		Name:     name,
		Fullpath: path,
		Contents: string(data),
		Mtime:    domain.Mtime{path: info.ModTime()},
	}
	return r.describe(sess, m, lib), nil
}

func (r *Resolver) loadPackage(sess *domain.Session, dir string, lib *library) (*domain.Module, error) {
	pkg, err := r.readPackage(sess, dir)
	if err != nil {
		return nil, err
	}

	name := domain.NewInternedString(filepath.ToSlash(dir))
	if m, ok := sess.Cached(name); ok {
		return r.describe(sess, m, lib), nil
	}

	main, err := r.mainPath(pkg)
	if err != nil {
		return nil, err
	}
	manifestInfo, err := r.fs.Stat(pkg.manifestPath)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to stat package manifest"), "path", pkg.manifestPath)
	}
	mainInfo, err := r.fs.Stat(main)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to stat package main"), "path", main)
	}
	data, err := r.fs.ReadFile(main)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read package main"), "path", main)
	}

	m := &domain.Module{
		Name:      name,
		Fullpath:  main,
		Contents:  string(data),
		IsPackage: true,
		Mtime: domain.Mtime{
			pkg.manifestPath: manifestInfo.ModTime(),
			main:             mainInfo.ModTime(),
		},
	}
	return r.describe(sess, m, lib), nil
}

// describe fills the display name, kind and library context of m.
func (r *Resolver) describe(sess *domain.Session, m *domain.Module, lib *library) *domain.Module {
	m.Kind = domain.KindOf(m.Fullpath)
	m.RelName = sess.Project.Rel(filepath.FromSlash(m.Name.String()))
	if lib == nil {
		m.Lib, m.LibName, m.External = "", "", false
		return m
	}

	m.Lib = lib.root
	m.LibName = lib.name
	m.External = lib.external
	if rel, ok := domain.RelWithin(lib.root, filepath.FromSlash(m.Name.String())); ok && lib.external {
		if rel == "." {
			m.RelName = lib.name
		} else {
			m.RelName = lib.name + "/" + rel
		}
	}
	return m
}
