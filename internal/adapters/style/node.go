package style

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/stitch/internal/core/ports"
)

// NodeID is the unique identifier for the style processor Graft node.
const NodeID graft.ID = "adapter.style"

func init() {
	graft.Register(graft.Node[ports.StyleProcessor]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.StyleProcessor, error) {
			return NewProcessor(), nil
		},
	})
}
