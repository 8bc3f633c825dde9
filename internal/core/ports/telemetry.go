package ports

import (
	"context"
	"io"

	"go.strata.build/strata/internal/core/domain"
)

// Vertex is a single recorded unit of work — one Action — in the pipeline's
// event stream. Both the progrock-backed CI recorder and the otel-backed
// TUI bridge implement it.
type Vertex interface {
	// Stdout returns a writer capturing the action's standard output.
	Stdout() io.Writer
	// Stderr returns a writer capturing the action's error output.
	Stderr() io.Writer
	// Log records a structured log line associated with this vertex.
	Log(level domain.LogLevel, msg string)
	// Complete marks the vertex finished, successfully or with err.
	Complete(err error)
	// Cached marks the vertex as served from cache rather than executed.
	Cached(fromRemote bool)
}

type vertexKey struct{}

// ContextWithVertex returns a context carrying v, retrievable with VertexFromContext.
func ContextWithVertex(ctx context.Context, v Vertex) context.Context {
	return context.WithValue(ctx, vertexKey{}, v)
}

// VertexFromContext retrieves the Vertex embedded by ContextWithVertex, if any.
func VertexFromContext(ctx context.Context) (Vertex, bool) {
	v, ok := ctx.Value(vertexKey{}).(Vertex)
	return v, ok
}

// Telemetry is the factory for recording the pipeline's Action lifecycle.
//
//go:generate go run go.uber.org/mock/mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks
type Telemetry interface {
	// Record starts recording a vertex for the given action node.
	Record(ctx context.Context, node domain.ActionNode) (context.Context, Vertex)
	// Close flushes and closes the recording session.
	Close() error
}
