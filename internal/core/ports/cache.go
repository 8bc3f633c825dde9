package ports

import "context"

// CacheMode gates which cache operations C2 will perform, driven by the
// STRATA_CACHE environment variable (spec.md §6).
type CacheMode string

const (
	CacheModeOff       CacheMode = "off"
	CacheModeRead      CacheMode = "read"
	CacheModeReadWrite CacheMode = "read-write"
	CacheModeWrite     CacheMode = "write"
)

// CanRead reports whether this mode permits serving a cache hit.
func (m CacheMode) CanRead() bool {
	return m == CacheModeRead || m == CacheModeReadWrite
}

// CanWrite reports whether this mode permits persisting a new entry.
func (m CacheMode) CanWrite() bool {
	return m == CacheModeWrite || m == CacheModeReadWrite
}

// HashManifest is the record stored under
// .strata/cache/hashes/<sha256 of hash>.json. The task runner stores only
// the task's command in Fragments, not the fragment list the hasher
// digested, so a stored manifest does not reproduce its Hash.
type HashManifest struct {
	Hash      string
	Fragments []string
}

// ManifestStore persists and retrieves hash manifests.
type ManifestStore interface {
	Get(hash string) (*HashManifest, bool, error)
	Put(manifest HashManifest) error
}

// OutputArchiveStore persists and restores a task's declared outputs as a
// single archive keyed by input hash.
type OutputArchiveStore interface {
	Has(hash string) (bool, error)
	Archive(ctx context.Context, hash, root string, outputs []string) error
	Hydrate(ctx context.Context, hash, root string) error
}

// TaskState is the record stored under .strata/cache/states/<sha256 of target>.json:
// the last known input/output hash pair for a target, independent of
// whether the archive itself is still present.
type TaskState struct {
	Target     string
	InputHash  string
	OutputHash string
}

// StateStore persists and retrieves per-target last-run state.
type StateStore interface {
	Get(target string) (*TaskState, bool, error)
	Put(state TaskState) error
}

// RemoteCache is the optional collaborator C2 consults on a local miss and
// populates on a local write, when configured. A nil RemoteCache or a
// reachability failure degrades to local-only caching (spec.md §6).
type RemoteCache interface {
	Has(ctx context.Context, hash string) (bool, error)
	Download(ctx context.Context, hash, destDir string) error
	Upload(ctx context.Context, hash, srcDir string) error
}
