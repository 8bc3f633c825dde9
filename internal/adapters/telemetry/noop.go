package telemetry

import (
	"context"
	"io"

	"go.strata.build/strata/internal/core/domain"
	"go.strata.build/strata/internal/core/ports"
)

// Noop is a ports.Telemetry that discards everything, used when no TUI or
// CI recorder is attached (e.g. scripted / non-interactive invocations).
type Noop struct{}

// NewNoop returns a Noop telemetry recorder.
func NewNoop() *Noop { return &Noop{} }

// Record returns ctx unchanged and a vertex that discards everything.
func (*Noop) Record(ctx context.Context, _ domain.ActionNode) (context.Context, ports.Vertex) {
	return ctx, &noopVertex{}
}

// Close does nothing.
func (*Noop) Close() error { return nil }

type noopVertex struct{}

func (*noopVertex) Stdout() io.Writer           { return io.Discard }
func (*noopVertex) Stderr() io.Writer           { return io.Discard }
func (*noopVertex) Log(domain.LogLevel, string) {}
func (*noopVertex) Complete(error)              {}
func (*noopVertex) Cached(bool)                 {}
