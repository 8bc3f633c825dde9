package telemetry

import (
	"context"

	"github.com/grindlemire/graft"

	"go.strata.build/strata/internal/core/ports"
)

// NodeID registers the OTel-backed Telemetry, the TUI-facing sibling of
// telemetry/progrock's CI-facing NodeID ("adapter.telemetry"). The two are
// kept under distinct ids so a consumer can pick either one to depend on
// depending on whether it's running interactively or in CI, without the
// graft registry seeing two registrations fight over the same id.
const NodeID graft.ID = "adapter.telemetry.otel"

func init() {
	graft.Register(graft.Node[ports.Telemetry]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Telemetry, error) {
			return NewOTelTelemetry("strata", nil), nil
		},
	})
}
