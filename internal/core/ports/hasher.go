package ports

import "go.strata.build/strata/internal/core/domain"

// Hasher computes the content-addressed hash that gates a task's cache
// lookup (C1). Implementations accumulate ordered fragments (command,
// environment, file digests, dependency hashes) and finalize over the
// whole fragment array.
type Hasher interface {
	// ComputeInputHash returns the task's cache key: a hash over its command,
	// resolved environment, input file contents and declared toolchains.
	ComputeInputHash(task *domain.Task, env map[string]string, root string) (string, error)

	// ComputeFileHash returns a fast content digest for a single file,
	// used as one fragment of ComputeInputHash.
	ComputeFileHash(path string) (uint64, error)
}
