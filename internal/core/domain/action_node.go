package domain

import "fmt"

// ActionNodeKind tags which ActionNode variant a node is.
type ActionNodeKind int

const (
	// KindSyncWorkspace is the singleton workspace-sync node.
	KindSyncWorkspace ActionNodeKind = iota
	// KindSetupToolchain resolves and installs one toolchain version.
	KindSetupToolchain
	// KindInstallDeps installs workspace-root dependencies for one toolchain.
	KindInstallDeps
	// KindInstallProjectDeps installs project-scoped dependencies for one toolchain.
	KindInstallProjectDeps
	// KindSyncProject syncs one project.
	KindSyncProject
	// KindRunTask runs one task.
	KindRunTask
)

// String returns a human-readable label for the kind, used in node labels.
func (k ActionNodeKind) String() string {
	switch k {
	case KindSyncWorkspace:
		return "SyncWorkspace"
	case KindSetupToolchain:
		return "SetupToolchain"
	case KindInstallDeps:
		return "InstallDeps"
	case KindInstallProjectDeps:
		return "InstallProjectDeps"
	case KindSyncProject:
		return "SyncProject"
	case KindRunTask:
		return "RunTask"
	default:
		return "Unknown"
	}
}

// Runtime is the resolved (toolchain, version requirement) pair a task runs against.
type Runtime struct {
	ToolchainID Id
	VersionReq  string
}

// String renders the runtime as "toolchain@versionReq".
func (r Runtime) String() string {
	if r.VersionReq == "" {
		return r.ToolchainID.String()
	}
	return r.ToolchainID.String() + "@" + r.VersionReq
}

// ActionNode is the tagged sum of discrete units of work the builder can emit.
// Equality and hashing are over the full variant payload, which is what the
// builder uses to deduplicate nodes across overlapping run requests.
type ActionNode struct {
	Kind ActionNodeKind

	// SetupToolchain / InstallDeps / InstallProjectDeps
	ToolchainID Id
	VersionReq  string

	// InstallDeps / InstallProjectDeps
	Root string

	// InstallProjectDeps / SyncProject / RunTask
	Project Id

	// SyncProject
	ProjectToolchains []Id

	// RunTask
	TaskTarget  Target
	Runtime     Runtime
	Persistent  bool
	Interactive bool
}

// NewSyncWorkspaceNode builds the singleton SyncWorkspace node.
func NewSyncWorkspaceNode() ActionNode {
	return ActionNode{Kind: KindSyncWorkspace}
}

// NewSetupToolchainNode builds a SetupToolchain node for one (toolchain, version) pair.
func NewSetupToolchainNode(toolchain Id, versionReq string) ActionNode {
	return ActionNode{Kind: KindSetupToolchain, ToolchainID: toolchain, VersionReq: versionReq}
}

// NewInstallDepsNode builds a workspace-root InstallDeps node.
func NewInstallDepsNode(toolchain Id, versionReq, root string) ActionNode {
	return ActionNode{Kind: KindInstallDeps, ToolchainID: toolchain, VersionReq: versionReq, Root: root}
}

// NewInstallProjectDepsNode builds a project-scoped InstallProjectDeps node.
func NewInstallProjectDepsNode(toolchain Id, versionReq string, project Id) ActionNode {
	return ActionNode{Kind: KindInstallProjectDeps, ToolchainID: toolchain, VersionReq: versionReq, Project: project}
}

// NewSyncProjectNode builds a SyncProject node.
func NewSyncProjectNode(project Id, toolchains []Id) ActionNode {
	return ActionNode{Kind: KindSyncProject, Project: project, ProjectToolchains: append([]Id(nil), toolchains...)}
}

// NewRunTaskNode builds a RunTask node.
func NewRunTaskNode(target Target, runtime Runtime, persistent, interactive bool) ActionNode {
	return ActionNode{
		Kind:        KindRunTask,
		TaskTarget:  target,
		Project:     target.Project,
		Runtime:     runtime,
		Persistent:  persistent,
		Interactive: interactive,
	}
}

// Key returns a comparable value uniquely identifying this node's variant
// payload; two nodes with equal keys are the same node for deduplication
// purposes. It is safe to use as a Go map key.
func (n ActionNode) Key() string {
	switch n.Kind {
	case KindSyncWorkspace:
		return "sync-workspace"
	case KindSetupToolchain:
		return fmt.Sprintf("setup-toolchain:%s@%s", n.ToolchainID, n.VersionReq)
	case KindInstallDeps:
		return fmt.Sprintf("install-deps:%s@%s:%s", n.ToolchainID, n.VersionReq, n.Root)
	case KindInstallProjectDeps:
		return fmt.Sprintf("install-project-deps:%s@%s:%s", n.ToolchainID, n.VersionReq, n.Project)
	case KindSyncProject:
		return fmt.Sprintf("sync-project:%s", n.Project)
	case KindRunTask:
		return fmt.Sprintf("run-task:%s", n.TaskTarget.String())
	default:
		return fmt.Sprintf("unknown:%#v", n)
	}
}

// Label returns a human-readable description used in cycle-error paths and
// plan output.
func (n ActionNode) Label() string {
	switch n.Kind {
	case KindSyncWorkspace:
		return "SyncWorkspace"
	case KindSetupToolchain:
		return fmt.Sprintf("SetupToolchain(%s)", Runtime{n.ToolchainID, n.VersionReq})
	case KindInstallDeps:
		return fmt.Sprintf("InstallDeps(%s)", Runtime{n.ToolchainID, n.VersionReq})
	case KindInstallProjectDeps:
		return fmt.Sprintf("InstallProjectDeps(%s, %s)", Runtime{n.ToolchainID, n.VersionReq}, n.Project)
	case KindSyncProject:
		return fmt.Sprintf("SyncProject(%s)", n.Project)
	case KindRunTask:
		return fmt.Sprintf("RunTask(%s)", n.TaskTarget.String())
	default:
		return "Unknown"
	}
}
