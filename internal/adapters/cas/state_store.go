package cas

import (
	"path/filepath"

	"go.strata.build/strata/internal/core/ports"
)

var _ ports.StateStore = (*StateStore)(nil)

// StateStore persists the last known input/output hash pair for each target
// under .strata/cache/states, independent of whether the output archive
// itself is still on disk.
type StateStore struct {
	dir string
}

// NewStateStore creates a StateStore rooted at cacheRoot/states.
func NewStateStore(cacheRoot string) (*StateStore, error) {
	dir, err := ensureDir(filepath.Join(cacheRoot, "states"))
	if err != nil {
		return nil, err
	}
	return &StateStore{dir: dir}, nil
}

// Get retrieves the last recorded state for target, if present.
func (s *StateStore) Get(target string) (*ports.TaskState, bool, error) {
	var state ports.TaskState
	ok, err := readJSON(keyFilename(s.dir, target), &state)
	if err != nil || !ok {
		return nil, false, err
	}
	return &state, true, nil
}

// Put stores state, keyed by its own Target field.
func (s *StateStore) Put(state ports.TaskState) error {
	return writeJSON(keyFilename(s.dir, state.Target), state)
}
