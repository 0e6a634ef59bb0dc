package domain

import "fmt"

// DiagnosticKind names a non-fatal condition found during a build.
type DiagnosticKind string

const (
	// DiagnosticBuiltinSkipped marks a reference to a platform built-in that was not bundled.
	DiagnosticBuiltinSkipped DiagnosticKind = "builtin-skipped"
	// DiagnosticAmbiguousReference marks a module both required at startup and lazily requested elsewhere.
	DiagnosticAmbiguousReference DiagnosticKind = "ambiguous-reference"
	// DiagnosticDroppedBundleEdge marks a static bundle edge into a lazily loaded bundle.
	DiagnosticDroppedBundleEdge DiagnosticKind = "dropped-bundle-edge"
	// DiagnosticOrphanDropped marks a node removed by the topological sort.
	DiagnosticOrphanDropped DiagnosticKind = "orphan-dropped"
	// DiagnosticStaleCacheEntry marks a cache entry discarded during validation.
	DiagnosticStaleCacheEntry DiagnosticKind = "stale-cache-entry"
	// DiagnosticCacheUnusable marks a cache file that could not be read.
	DiagnosticCacheUnusable DiagnosticKind = "cache-unusable"
)

// Diagnostic is a warning recorded on the build session.
type Diagnostic struct {
	Kind    DiagnosticKind
	Subject string
	Message string
}

// String formats the diagnostic for logs.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Kind, d.Subject, d.Message)
}
