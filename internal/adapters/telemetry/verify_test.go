package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"go.strata.build/strata/internal/core/domain"
	"go.strata.build/strata/internal/core/ports"
)

func TestInterfaceSatisfaction(t *testing.T) {
	var _ ports.Telemetry = (*OTelTelemetry)(nil)
	var _ ports.Vertex = (*OTelVertex)(nil)
	var _ ports.Telemetry = (*Noop)(nil)
	var _ ports.Vertex = (*noopVertex)(nil)
}

func TestOTelTelemetry_Record(t *testing.T) {
	tel := NewOTelTelemetry("test-tracer", nil)
	assert.NotNil(t, tel)

	node := domain.NewSyncWorkspaceNode()
	ctx, vertex := tel.Record(context.Background(), node)
	assert.NotNil(t, ctx)
	assert.NotNil(t, vertex)

	vertex.Log(domain.LogLevelInfo, "hello")
	n, err := vertex.Stdout().Write([]byte("test log"))
	assert.NoError(t, err)
	assert.Equal(t, 8, n)

	vertex.Complete(errors.New("boom"))
}

func TestNoop_Record(t *testing.T) {
	tel := NewNoop()
	assert.NotNil(t, tel)

	node := domain.NewSyncWorkspaceNode()
	ctx, vertex := tel.Record(context.Background(), node)
	assert.NotNil(t, ctx)
	assert.NotNil(t, vertex)

	vertex.Log(domain.LogLevelInfo, "hello")
	n, err := vertex.Stdout().Write([]byte("test log"))
	assert.NoError(t, err)
	assert.Equal(t, 8, n)

	vertex.Cached(false)
	vertex.Complete(nil)
}
