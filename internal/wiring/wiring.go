// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/stitch/internal/adapters/assets"
	_ "go.trai.ch/stitch/internal/adapters/cas"
	_ "go.trai.ch/stitch/internal/adapters/config"
	_ "go.trai.ch/stitch/internal/adapters/fs"
	_ "go.trai.ch/stitch/internal/adapters/logger"
	_ "go.trai.ch/stitch/internal/adapters/output"
	_ "go.trai.ch/stitch/internal/adapters/style"
	_ "go.trai.ch/stitch/internal/adapters/telemetry"
	// Register app and engine nodes.
	_ "go.trai.ch/stitch/internal/app"
	_ "go.trai.ch/stitch/internal/engine/cache"
	_ "go.trai.ch/stitch/internal/engine/graph"
	_ "go.trai.ch/stitch/internal/engine/resolver"
)
