// Package progrock provides the Progrock implementation of the telemetry adapter.
package progrock

import (
	"context"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	"go.strata.build/strata/internal/core/domain"
	"go.strata.build/strata/internal/core/ports"
)

// Recorder implements the ports.Telemetry interface using the github.com/vito/progrock library.
type Recorder struct {
	tape *progrock.Tape
	rec  *progrock.Recorder
}

// New creates a new Recorder with a default tape.
func New() ports.Telemetry {
	tape := progrock.NewTape()
	rec := progrock.NewRecorder(tape)
	return &Recorder{
		tape: tape,
		rec:  rec,
	}
}

// Record starts recording a new vertex for node, named with its human label
// and keyed by its stable node key so re-running the same node reuses the
// same digest across a tape.
func (r *Recorder) Record(ctx context.Context, node domain.ActionNode) (context.Context, ports.Vertex) {
	d := digest.FromString(node.Key())
	v := r.rec.Vertex(d, node.Label())
	return ctx, &Vertex{vertex: v}
}

// Close flushes and closes the recording session.
func (r *Recorder) Close() error {
	return r.tape.Close()
}
