package nix

import (
	"context"
	"path/filepath"

	"github.com/grindlemire/graft"

	"go.strata.build/strata/internal/core/ports"
)

const NodeID graft.ID = "adapter.toolchain_nix"

func init() {
	graft.Register(graft.Node[ports.ToolchainPlugin]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.ToolchainPlugin, error) {
			return New(filepath.Join(".strata", "cache", "nix-env.json")), nil
		},
	})
}
