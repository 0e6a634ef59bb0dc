package domain

import "go.trai.ch/zerr"

var (
	// ErrModuleNotFound is returned when a reference cannot be located in any search root.
	ErrModuleNotFound = zerr.New("module not found")

	// ErrNotAPackage is returned when a reference resolves to a directory without a package manifest.
	ErrNotAPackage = zerr.New("directory is not a package")

	// ErrInvalidPackageManifest is returned when a package manifest cannot be parsed.
	ErrInvalidPackageManifest = zerr.New("invalid package manifest")

	// ErrUnresolvedModules aggregates every resolution failure of a build.
	ErrUnresolvedModules = zerr.New("unresolved module references")

	// ErrInconsistentReference is returned when one module references the same target eagerly and lazily.
	ErrInconsistentReference = zerr.New("module referenced both eagerly and lazily")

	// ErrModuleAlreadyExists is returned when a module name is inserted twice into the table.
	ErrModuleAlreadyExists = zerr.New("module already exists")

	// ErrCycleDetected is returned when a topological sort cannot drain its ready queue.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrInvalidManifestReference is returned when a dependency edge points at a module absent from the table.
	ErrInvalidManifestReference = zerr.New("dependency edge references unknown module")

	// ErrUnassignedModule is returned when a module reaches packing without a bundle.
	ErrUnassignedModule = zerr.New("module has no bundle assignment")

	// ErrCacheCorrupt is returned when the cache file is not a well-formed array of entries.
	ErrCacheCorrupt = zerr.New("cache file is corrupt")

	// ErrCacheNotFound is returned when no cache file exists yet.
	ErrCacheNotFound = zerr.New("cache file not found")

	// ErrConfigNotFound is returned when no stitch.yaml exists in the working directory or its parents.
	ErrConfigNotFound = zerr.New("could not find stitch.yaml")

	// ErrInvalidConfig is returned when the project configuration fails validation.
	ErrInvalidConfig = zerr.New("invalid configuration")

	// ErrNoEntries is returned when the entry patterns match no files.
	ErrNoEntries = zerr.New("no entry modules matched")

	// ErrAssetNotFound is returned when an asset token names a file that does not exist.
	ErrAssetNotFound = zerr.New("asset not found")
)
