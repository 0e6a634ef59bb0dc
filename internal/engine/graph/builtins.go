package graph

import "strings"

// nodeBuiltins are the top-level Node.js core modules. References to them are never bundled.
var nodeBuiltins = map[string]bool{
	"assert":              true,
	"async_hooks":         true,
	"buffer":              true,
	"child_process":       true,
	"cluster":             true,
	"console":             true,
	"constants":           true,
	"crypto":              true,
	"dgram":               true,
	"diagnostics_channel": true,
	"dns":                 true,
	"domain":              true,
	"events":              true,
	"fs":                  true,
	"http":                true,
	"http2":               true,
	"https":               true,
	"inspector":           true,
	"module":              true,
	"net":                 true,
	"os":                  true,
	"path":                true,
	"perf_hooks":          true,
	"process":             true,
	"punycode":            true,
	"querystring":         true,
	"readline":            true,
	"repl":                true,
	"stream":              true,
	"string_decoder":      true,
	"sys":                 true,
	"timers":              true,
	"tls":                 true,
	"trace_events":        true,
	"tty":                 true,
	"url":                 true,
	"util":                true,
	"v8":                  true,
	"vm":                  true,
	"wasi":                true,
	"worker_threads":      true,
	"zlib":                true,
}

// isBuiltin reports whether ref names a platform built-in, either a Node core module
// (with or without the "node:" prefix, subpaths like "fs/promises" included) or one of extra.
func isBuiltin(ref string, extra []string) bool {
	if strings.HasPrefix(ref, "node:") {
		return true
	}
	base, _, _ := strings.Cut(ref, "/")
	if nodeBuiltins[base] {
		return true
	}
	for _, e := range extra {
		if e == ref || e == base {
			return true
		}
	}
	return false
}
