package ports

import "context"

// VCS is the version-control collaborator the task dispatcher consults
// during SyncWorkspace and SyncProject actions to record changed files on
// the action's sync operation.
type VCS interface {
	// ChangedFiles returns workspace-relative paths changed since base,
	// or all tracked files if base is empty.
	ChangedFiles(ctx context.Context, root, base string) ([]string, error)
	// IsRepository reports whether root is inside a recognized repository.
	IsRepository(root string) bool
}
