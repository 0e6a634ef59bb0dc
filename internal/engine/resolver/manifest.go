package resolver

import (
	"encoding/json"
	"path/filepath"

	"go.trai.ch/stitch/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	manifestName    = "package.json"
	defaultMain     = "index.js"
	defaultExt      = ".js"
	fallbackModules = "src"
)

// manifest is the subset of package.json the resolver reads.
type manifest struct {
	Main        string `json:"main"`
	Directories struct {
		Modules string `json:"modules"`
	} `json:"directories"`
}

type packageInfo struct {
	dir          string
	manifestPath string
	manifest     manifest
	// modules is the directory nested references of the package are remapped into.
	modules string
}

// readPackage loads and memoizes the manifest of dir.
func (r *Resolver) readPackage(sess *domain.Session, dir string) (*packageInfo, error) {
	v, err := sess.Memo().Do("package:"+dir, func() (any, error) {
		path := filepath.Join(dir, manifestName)
		info, err := r.fs.Stat(path)
		if err != nil || info.IsDir() {
			return nil, zerr.With(zerr.Wrap(domain.ErrNotAPackage, "no package manifest"), "directory", dir)
		}

		data, err := r.fs.ReadFile(path)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to read package manifest"), "path", path)
		}

		pkg := &packageInfo{dir: dir, manifestPath: path}
		if err := json.Unmarshal(data, &pkg.manifest); err != nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidPackageManifest, err.Error()), "path", path)
		}

		pkg.modules = dir
		if m := pkg.manifest.Directories.Modules; m != "" {
			pkg.modules = filepath.Join(dir, m)
		} else if info, err := r.fs.Stat(filepath.Join(dir, fallbackModules)); err == nil && info.IsDir() {
			pkg.modules = filepath.Join(dir, fallbackModules)
		}
		return pkg, nil
	})
	if err != nil {
		return nil, err
	}
	pkg, _ := v.(*packageInfo)
	return pkg, nil
}

// mainPath returns the file the package exports.
func (r *Resolver) mainPath(pkg *packageInfo) (string, error) {
	main := pkg.manifest.Main
	if main == "" {
		main = defaultMain
	}
	target := filepath.Join(pkg.dir, main)

	if info, err := r.fs.Stat(target); err == nil {
		if !info.IsDir() {
			return target, nil
		}
		target = filepath.Join(target, defaultMain)
		if info, err := r.fs.Stat(target); err == nil && !info.IsDir() {
			return target, nil
		}
	} else if info, err := r.fs.Stat(target + defaultExt); err == nil && !info.IsDir() {
		return target + defaultExt, nil
	}

	err := zerr.With(zerr.Wrap(domain.ErrModuleNotFound, "package main file is missing"), "package", pkg.dir)
	return "", zerr.With(err, "main", main)
}
