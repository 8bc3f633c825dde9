package watcher

import (
	"context"
	"time"

	"github.com/grindlemire/graft"

	"go.strata.build/strata/internal/core/ports"
)

// WatcherNodeID is the unique identifier for the file watcher Graft node.
const WatcherNodeID graft.ID = "adapter.watcher"

func init() {
	graft.Register(graft.Node[ports.Watcher]{
		ID:        WatcherNodeID,
		Cacheable: false,
		Run: func(_ context.Context) (ports.Watcher, error) {
			return NewWatcher()
		},
	})
}

// DefaultDebounceWindow is how long `strata watch` waits for file system
// activity to settle before triggering a rebuild.
const DefaultDebounceWindow = 200 * time.Millisecond
