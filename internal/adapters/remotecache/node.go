package remotecache

import (
	"context"

	"github.com/grindlemire/graft"

	"go.strata.build/strata/internal/core/ports"
)

// NodeID registers the default RemoteCache: a Noop until a remote endpoint
// is configured. Deployments that set one replace this node's Run to build
// an HTTP instead, or register a higher-priority override.
const NodeID graft.ID = "adapter.remote_cache"

func init() {
	graft.Register(graft.Node[ports.RemoteCache]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.RemoteCache, error) {
			return New(), nil
		},
	})
}
