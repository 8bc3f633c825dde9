package telemetry

import (
	"context"
	"io"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"go.strata.build/strata/internal/core/domain"
	"go.strata.build/strata/internal/core/ports"
)

// OTelTelemetry is the TUI-facing ports.Telemetry backend: one OTel span per
// Action, with Operation-level output and log lines recorded as span events.
// A TUIBridge registered as a span processor on the tracer provider turns
// those spans into Bubble Tea messages for internal/adapters/tui.
type OTelTelemetry struct {
	tracer trace.Tracer
}

// NewOTelTelemetry creates an OTelTelemetry drawing spans from tp's tracer
// named name. A nil tp falls back to the process-global provider, which the
// caller is expected to have configured (typically with a TUIBridge span
// processor) before the first Record call.
func NewOTelTelemetry(name string, tp trace.TracerProvider) *OTelTelemetry {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &OTelTelemetry{tracer: tp.Tracer(name)}
}

// Record starts a span for node, named with its human label and tagged with
// its stable node key.
func (t *OTelTelemetry) Record(ctx context.Context, node domain.ActionNode) (context.Context, ports.Vertex) {
	ctx, span := t.tracer.Start(ctx, node.Label())
	span.SetAttributes(attribute.String("strata.node_key", node.Key()))
	return ctx, &OTelVertex{span: span}
}

// Close is a no-op: the tracer provider's own lifecycle (flush/shutdown) is
// owned by whoever constructed it, not by the Telemetry facade.
func (t *OTelTelemetry) Close() error { return nil }

// OTelVertex implements ports.Vertex over a single OTel span.
type OTelVertex struct {
	span trace.Span

	mu       sync.Mutex
	batchers []*BatchProcessor
}

// Stdout returns a writer that batches output and appends it as stdout span
// events, so a process writing byte-by-byte or line-by-line doesn't produce
// one span event per write.
func (v *OTelVertex) Stdout() io.Writer { return v.newEventWriter("stdout") }

// Stderr returns a writer that batches output and appends it as stderr span events.
func (v *OTelVertex) Stderr() io.Writer { return v.newEventWriter("stderr") }

// newEventWriter wires a BatchProcessor in front of a span event: writes
// coalesce for up to DefaultTimeLimit or DefaultSizeLimit bytes before being
// recorded as a single event, rather than one event per Write call. The
// batcher is tracked so Complete can drain it before the span ends.
func (v *OTelVertex) newEventWriter(event string) io.Writer {
	w := &eventWriter{span: v.span, event: event}
	bp := NewBatchProcessor(DefaultSizeLimit, DefaultTimeLimit, w.flush)

	v.mu.Lock()
	v.batchers = append(v.batchers, bp)
	v.mu.Unlock()

	return bp
}

// Log adds a structured log event to the span.
func (v *OTelVertex) Log(level domain.LogLevel, msg string) {
	v.span.AddEvent("log", trace.WithAttributes(
		attribute.String("level", level.String()),
		attribute.String("message", msg),
	))
}

// Complete drains any buffered stdout/stderr output, ends the span, and
// marks it errored if err is non-nil.
func (v *OTelVertex) Complete(err error) {
	v.mu.Lock()
	batchers := v.batchers
	v.mu.Unlock()
	for _, bp := range batchers {
		_ = bp.Close()
	}

	if err != nil {
		v.span.RecordError(err)
		v.span.SetStatus(codes.Error, err.Error())
	}
	v.span.End()
}

// Cached tags the span as served from cache rather than executed.
func (v *OTelVertex) Cached(fromRemote bool) {
	v.span.SetAttributes(
		attribute.Bool("strata.cached", true),
		attribute.Bool("strata.cached_remote", fromRemote),
	)
	v.span.AddEvent("cached")
}

// eventWriter records one batch of coalesced output as a single span event.
// It is never written to directly; a BatchProcessor sits in front of it and
// calls flush once per size/time window.
type eventWriter struct {
	span  trace.Span
	event string
}

func (w *eventWriter) flush(p []byte) {
	w.span.AddEvent(w.event, trace.WithAttributes(attribute.String("data", string(p))))
}
