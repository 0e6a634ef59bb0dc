package wiring_test

import (
	"context"
	"testing"

	"github.com/grindlemire/graft"
	"github.com/stretchr/testify/require"
	"go.trai.ch/stitch/internal/core/ports"
	"go.trai.ch/stitch/internal/engine/cache"
	"go.trai.ch/stitch/internal/engine/graph"
	_ "go.trai.ch/stitch/internal/wiring"
)

func resolve[T any](t *testing.T) {
	t.Helper()
	v, _, err := graft.ExecuteFor[T](context.Background())
	require.NoError(t, err)
	require.NotNil(t, v)
}

// TestGraftNodes ensures that every port the pipeline consumes has a registered node.
func TestGraftNodes(t *testing.T) {
	resolve[ports.Logger](t)
	resolve[ports.Tracer](t)
	resolve[ports.ConfigLoader](t)
	resolve[ports.FileSystem](t)
	resolve[ports.EntryResolver](t)
	resolve[ports.ModuleResolver](t)
	resolve[ports.CacheStore](t)
	resolve[ports.StyleProcessor](t)
	resolve[ports.AssetProcessor](t)
	resolve[ports.OutputWriter](t)
	resolve[*graph.Builder](t)
	resolve[*cache.Manager](t)
}
