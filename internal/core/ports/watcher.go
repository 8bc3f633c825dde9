package ports

import (
	"context"
	"iter"
)

// WatchOp is the kind of file system change a Watcher observed.
type WatchOp uint8

const (
	// OpCreate indicates a file or directory was created.
	OpCreate WatchOp = iota
	// OpWrite indicates a file was modified.
	OpWrite
	// OpRemove indicates a file or directory was removed.
	OpRemove
	// OpRename indicates a file or directory was renamed.
	OpRename
)

// WatchEvent is a single file system change reported by a Watcher.
type WatchEvent struct {
	// Path is the absolute path of the file or directory that changed.
	Path string
	// Operation is the type of change that occurred.
	Operation WatchOp
}

// Watcher observes file system changes under a root directory, feeding
// `strata watch`'s rebuild loop.
type Watcher interface {
	// Start begins watching root recursively. It returns once the initial
	// directory tree has been registered with the underlying OS mechanism;
	// events are delivered asynchronously afterward.
	Start(ctx context.Context, root string) error
	// Stop stops the watcher and releases its resources.
	Stop() error
	// Events returns an iterator of file system events. The sequence ends
	// when the watcher is stopped or its context is cancelled.
	Events() iter.Seq[WatchEvent]
}
