package toolchain

import (
	"context"

	"github.com/grindlemire/graft"

	"go.strata.build/strata/internal/adapters/toolchain/nix"
	"go.strata.build/strata/internal/core/domain"
	"go.strata.build/strata/internal/core/ports"
)

// NodeID registers the ToolchainRegistry with every known plugin wired in.
// Adding a new toolchain id means registering its plugin's node as a
// dependency here and calling Register below.
const NodeID graft.ID = "adapter.toolchain_registry"

func init() {
	graft.Register(graft.Node[ports.ToolchainRegistry]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{nix.NodeID},
		Run: func(ctx context.Context) (ports.ToolchainRegistry, error) {
			nixPlugin, err := graft.Dep[ports.ToolchainPlugin](ctx)
			if err != nil {
				return nil, err
			}

			r := NewRegistry()
			r.Register(domain.Id("nix"), nixPlugin)
			return r, nil
		},
	})
}
