package domain

import "go.trai.ch/zerr"

// Sentinel errors the core domain and engine layers wrap with zerr.Wrap /
// zerr.With to attach context (target, path, hash, etc.) on the way up to
// the CLI, which prints the full chain with "%+v".
var (
	// Configuration / graph construction

	// ErrConfigNotFound is returned when no workspace or project configuration
	// file is found walking up from the current directory.
	ErrConfigNotFound = zerr.New("configuration not found")
	// ErrInvalidConfig is returned when a configuration file fails to parse or
	// fails schema validation.
	ErrInvalidConfig = zerr.New("invalid configuration")
	// ErrProjectNotFound is returned when a referenced project id or alias does
	// not exist in the workspace graph.
	ErrProjectNotFound = zerr.New("project not found")
	// ErrTaskNotFound is returned when a requested task is not found on its project.
	ErrTaskNotFound = zerr.New("task not found")
	// ErrTaskAlreadyExists is returned when a project declares the same task id twice.
	ErrTaskAlreadyExists = zerr.New("task already exists")
	// ErrInvalidTargetScope is returned when a target string fails to parse
	// against the Id grammar or names an unknown scope prefix.
	ErrInvalidTargetScope = zerr.New("invalid target scope")
	// ErrAmbiguousAlias is returned when a project alias resolves to more than
	// one project id.
	ErrAmbiguousAlias = zerr.New("ambiguous project alias")
	// ErrMissingDependency is returned when a task or project dependency
	// references an id that doesn't exist.
	ErrMissingDependency = zerr.New("missing dependency")
	// ErrDependsOnAllowFailure is returned when a task declares a dependency on
	// a task with AllowFailure set, which the builder forbids.
	ErrDependsOnAllowFailure = zerr.New("cannot depend on an allow-failure task")
	// ErrInternalTarget is returned when a run request names a task whose id
	// marks it internal (by convention, a leading underscore) and therefore
	// not directly runnable, only usable as a dependency.
	ErrInternalTarget = zerr.New("target is internal and cannot be run directly")
	// ErrPersistentHasDependents is returned when a persistent task is found
	// to have a RunTask dependent already scheduled in the same build.
	ErrPersistentHasDependents = zerr.New("persistent task cannot have dependents")
	// ErrCycleDetected is returned when the action graph builder finds a cycle.
	ErrCycleDetected = zerr.New("cycle detected")
	// ErrNoToolchainForLanguage is returned when a project's language has no
	// registered toolchain plugin and the project declares no explicit toolchain.
	ErrNoToolchainForLanguage = zerr.New("no toolchain registered for language")
	// ErrNoTargetsSpecified is returned when a run request names no targets.
	ErrNoTargetsSpecified = zerr.New("no targets specified")

	// Execution

	// ErrActionFailed is returned when an action's underlying operation exits
	// non-zero and the action does not allow failure.
	ErrActionFailed = zerr.New("action failed")
	// ErrActionAborted is returned when the pipeline's internal abort token
	// fires before an action starts or while it is running.
	ErrActionAborted = zerr.New("action aborted")
	// ErrActionTimedOut is returned when a task's configured timeout elapses
	// before its process exits.
	ErrActionTimedOut = zerr.New("action timed out")
	// ErrExpectedOutputMissing is returned when a task with ExpectOutputs set
	// exits zero but a declared output path does not exist afterward.
	ErrExpectedOutputMissing = zerr.New("expected output missing")
	// ErrMutexHeld is returned internally when a task's declared mutex cannot
	// be acquired before the pipeline gives up waiting (cancellation raced the wait).
	ErrMutexHeld = zerr.New("mutex held by another action")
	// ErrInteractiveConflict is returned when more than one interactive task
	// would need stdin concurrently.
	ErrInteractiveConflict = zerr.New("only one interactive action may run at a time")
	// ErrNoShellAvailable is returned when a task sets Shell but no platform
	// shell can be located.
	ErrNoShellAvailable = zerr.New("no shell available")

	// Cache

	// ErrCacheCorrupt is returned when a cache manifest or archive fails
	// integrity verification on read.
	ErrCacheCorrupt = zerr.New("cache entry corrupt")
	// ErrCacheUnavailable is returned when the cache directory can't be
	// created or written to.
	ErrCacheUnavailable = zerr.New("cache unavailable")
	// ErrRemoteCacheUnreachable is returned when a configured remote cache
	// can't be reached; callers treat this as a soft failure and fall back
	// to local-only caching.
	ErrRemoteCacheUnreachable = zerr.New("remote cache unreachable")
	// ErrOutputOutsideProject is returned when a resolved output path escapes
	// its project root (e.g. via a symlink), which the runner refuses to clean
	// or hydrate into.
	ErrOutputOutsideProject = zerr.New("output path escapes project root")

	// I/O / toolchain

	// ErrWorkspaceRootNotFound is returned when no workspace root can be
	// located.
	ErrWorkspaceRootNotFound = zerr.New("workspace root not found")
	// ErrToolchainInstallFailed is returned when a ToolchainPlugin fails to
	// resolve or install a requested version.
	ErrToolchainInstallFailed = zerr.New("toolchain install failed")
	// ErrDependencyInstallFailed is returned when a package manager's install
	// step exits non-zero.
	ErrDependencyInstallFailed = zerr.New("dependency install failed")
	// ErrVCSUnavailable is returned when the VCS collaborator can't determine
	// changed files (e.g. not a repository, binary not on PATH).
	ErrVCSUnavailable = zerr.New("vcs unavailable")

	// ErrFileOpenFailed is returned when a file being hashed can't be opened.
	ErrFileOpenFailed = zerr.New("failed to open file")
	// ErrFileHashFailed is returned when streaming a file's content into the
	// hasher fails partway through.
	ErrFileHashFailed = zerr.New("failed to hash file")
	// ErrPathStatFailed is returned when stat-ing an input or output path fails.
	ErrPathStatFailed = zerr.New("failed to stat path")
	// ErrWriteHashFailed is returned when writing an intermediate digest into
	// the enclosing hash fragment fails.
	ErrWriteHashFailed = zerr.New("failed to write hash fragment")
)
