// Package graphbuilder implements the action-graph builder (C4): it
// translates a set of run requests against a workspace graph into a
// deduplicated ActionGraph, wiring the SyncWorkspace / SetupToolchain /
// InstallDeps / SyncProject / RunTask edges of spec.md §4.4 (no
// InstallProjectDeps nodes are emitted). Cycle detection and topological ordering are delegated to
// domain.ActionGraph.Validate, grounded on the teacher's
// domain.Graph.Validate (getSortedTaskNames for deterministic
// disconnected-component ordering); the dedup-by-node-key traversal itself
// is new, since the teacher's graph only ever held one kind of node.
package graphbuilder

import "go.strata.build/strata/internal/core/domain"

// ModeKind tags which form a SyncMode takes.
type ModeKind int

const (
	// ModeDefault defers to the builder's own judgment (treated as enabled
	// for any id actually reached while resolving run requests).
	ModeDefault ModeKind = iota
	// ModeEnabled forces the decision to Enabled for every id.
	ModeEnabled
	// ModeOnly restricts the decision to an explicit allow-list of ids.
	ModeOnly
)

// SyncMode is the three-valued enum spec.md §4.4 uses for sync_projects,
// setup_toolchains and install_dependencies: Default, Enabled(bool), or
// Only(list of ids). The id space differs per option (project ids for
// sync_projects, toolchain ids for the other two); Admits is keyed
// generically on domain.Id.
type SyncMode struct {
	Kind    ModeKind
	Enabled bool
	Only    map[domain.Id]struct{}
}

// Default returns the Default mode: admits everything the builder reaches.
func Default() SyncMode { return SyncMode{Kind: ModeDefault} }

// Enabled returns a mode that forces every id to enabled or disabled.
func Enabled(on bool) SyncMode { return SyncMode{Kind: ModeEnabled, Enabled: on} }

// Only returns a mode that admits exactly the given ids.
func Only(ids ...domain.Id) SyncMode {
	set := make(map[domain.Id]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return SyncMode{Kind: ModeOnly, Only: set}
}

// Admits reports whether id is allowed under this mode.
func (m SyncMode) Admits(id domain.Id) bool {
	switch m.Kind {
	case ModeEnabled:
		return m.Enabled
	case ModeOnly:
		_, ok := m.Only[id]
		return ok
	default:
		return true
	}
}

// DependentsMode controls whether focusing a target also schedules its
// downstream dependents.
type DependentsMode int

const (
	// DependentsNone schedules only the requested targets.
	DependentsNone DependentsMode = iota
	// DependentsDirect also schedules immediate dependents.
	DependentsDirect
	// DependentsDeep also schedules dependents transitively.
	DependentsDeep
)

// Options configures one Build call.
type Options struct {
	// SyncWorkspace emits the SyncWorkspace singleton root.
	SyncWorkspace bool
	// SyncProjects decides, per project id, whether to emit a SyncProject node.
	SyncProjects SyncMode
	// SetupToolchains decides, per toolchain id, whether to emit a SetupToolchain node.
	SetupToolchains SyncMode
	// InstallDependencies decides, per toolchain id, whether to emit an
	// InstallDeps node at the workspace root. The builder emits no
	// InstallProjectDeps nodes, for sub-workspace projects or otherwise.
	InstallDependencies SyncMode
	// ToolchainVersions supplies the workspace-default version requirement for
	// a toolchain id; the config schema carries no per-project override
	// (spec.md §6 treats full schema validation as out of scope), so this map
	// is the builder's only source of version requirements.
	ToolchainVersions map[domain.Id]string
	// Dependents controls whether resolving a target also schedules its dependents.
	Dependents DependentsMode
	// CheckDependencies is not read by Build: whatever its value, a declared
	// task dependency that cannot be resolved rejects the whole request
	// unless the dependency is marked Optional.
	CheckDependencies bool
}

// DefaultOptions returns the options spec.md's examples run under: workspace
// sync on, projects and toolchains synced/set-up for everything reached,
// dependencies installed for everything reached, no dependents expansion.
func DefaultOptions() Options {
	return Options{
		SyncWorkspace:       true,
		SyncProjects:        Default(),
		SetupToolchains:     Default(),
		InstallDependencies: Default(),
		Dependents:          DependentsNone,
	}
}

func (o Options) versionFor(toolchain domain.Id) string {
	return o.ToolchainVersions[toolchain]
}
