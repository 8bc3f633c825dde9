// Package remotecache implements ports.RemoteCache: a no-op collaborator
// that always misses, and an HTTP-based one for environments that configure
// a remote cache endpoint. spec.md §6 treats any remote-cache error as
// non-fatal — callers degrade to local-only caching on any failure here.
package remotecache

import (
	"context"

	"go.strata.build/strata/internal/core/ports"
)

var _ ports.RemoteCache = (*Noop)(nil)

// Noop always reports a miss and never persists anything. It is the default
// RemoteCache when no remote endpoint is configured.
type Noop struct{}

// New creates a Noop remote cache.
func New() *Noop {
	return &Noop{}
}

func (*Noop) Has(context.Context, string) (bool, error)      { return false, nil }
func (*Noop) Download(context.Context, string, string) error { return nil }
func (*Noop) Upload(context.Context, string, string) error   { return nil }
