package assets

import (
	"context"

	"github.com/grindlemire/graft"
	fsadapter "go.trai.ch/stitch/internal/adapters/fs"
	"go.trai.ch/stitch/internal/core/ports"
)

// NodeID is the unique identifier for the asset processor Graft node.
const NodeID graft.ID = "adapter.assets"

func init() {
	graft.Register(graft.Node[ports.AssetProcessor]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fsadapter.FileSystemNodeID, fsadapter.WalkerNodeID},
		Run: func(ctx context.Context) (ports.AssetProcessor, error) {
			files, err := graft.Dep[ports.FileSystem](ctx)
			if err != nil {
				return nil, err
			}
			walker, err := graft.Dep[*fsadapter.Walker](ctx)
			if err != nil {
				return nil, err
			}
			return NewProcessor(files, walker), nil
		},
	})
}
