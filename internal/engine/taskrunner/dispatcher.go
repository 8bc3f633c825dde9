package taskrunner

import (
	"context"
	"time"

	"go.trai.ch/zerr"

	"go.strata.build/strata/internal/core/domain"
	"go.strata.build/strata/internal/core/ports"
	"go.strata.build/strata/internal/core/workspace"
)

// Dispatcher implements pipeline.Executor: it routes each ActionNode to the
// collaborator that knows how to run its kind, so the pipeline itself never
// needs to know what a SetupToolchain or SyncProject node actually does.
type Dispatcher struct {
	Graph      *workspace.Graph
	Toolchains ports.ToolchainRegistry
	VCS        ports.VCS
	Runner     *Runner
	Logger     ports.Logger
}

// Execute dispatches node to its handler and returns the resulting Action.
func (d *Dispatcher) Execute(ctx context.Context, node domain.ActionNode) *domain.Action {
	switch node.Kind {
	case domain.KindRunTask:
		return d.Runner.Run(ctx, node.TaskTarget, node.Runtime, node.Persistent, node.Interactive)
	case domain.KindSyncWorkspace:
		return d.syncWorkspace(ctx, node)
	case domain.KindSetupToolchain:
		return d.setupToolchain(ctx, node)
	case domain.KindInstallDeps:
		return d.installDeps(ctx, node, node.Root)
	case domain.KindInstallProjectDeps:
		return d.installProjectDeps(ctx, node)
	case domain.KindSyncProject:
		return d.syncProject(ctx, node)
	default:
		return &domain.Action{Node: node, Status: domain.ActionStatusInvalid, StartedAt: time.Now(), FinishedAt: time.Now()}
	}
}

func (d *Dispatcher) syncWorkspace(ctx context.Context, node domain.ActionNode) *domain.Action {
	action := &domain.Action{Node: node, StartedAt: time.Now()}
	op := domain.Operation{Kind: domain.OperationSyncOperation, StartedAt: time.Now()}

	root := d.Graph.Root()
	if d.VCS != nil && d.VCS.IsRepository(root) {
		changed, err := d.VCS.ChangedFiles(ctx, root, "")
		if err != nil {
			return d.abortOp(action, op, domain.ErrVCSUnavailable, err)
		}
		op.ChangedFiles = changed
	}

	op.Status = domain.OperationStatusPassed
	op.EndedAt = time.Now()
	action.Operations = append(action.Operations, op)
	action.Status = domain.ActionStatusPassed
	action.FinishedAt = time.Now()
	return action
}

func (d *Dispatcher) setupToolchain(ctx context.Context, node domain.ActionNode) *domain.Action {
	action := &domain.Action{Node: node, StartedAt: time.Now()}
	op := domain.Operation{Kind: domain.OperationSyncOperation, StartedAt: time.Now()}

	plugin, ok := d.Toolchains.Plugin(node.ToolchainID)
	if !ok {
		return d.abortOp(action, op, domain.ErrNoToolchainForLanguage, nil)
	}

	resolved, err := plugin.Setup(ctx, node.VersionReq)
	if err != nil {
		return d.abortOp(action, op, domain.ErrToolchainInstallFailed, err)
	}

	op.Status = domain.OperationStatusPassed
	op.Command = resolved
	op.EndedAt = time.Now()
	action.Operations = append(action.Operations, op)
	action.Status = domain.ActionStatusPassed
	action.FinishedAt = time.Now()
	return action
}

func (d *Dispatcher) installDeps(ctx context.Context, node domain.ActionNode, dir string) *domain.Action {
	action := &domain.Action{Node: node, StartedAt: time.Now()}
	op := domain.Operation{Kind: domain.OperationSyncOperation, StartedAt: time.Now()}

	plugin, ok := d.Toolchains.Plugin(node.ToolchainID)
	if !ok {
		return d.abortOp(action, op, domain.ErrNoToolchainForLanguage, nil)
	}

	if err := plugin.InstallDeps(ctx, node.VersionReq, dir); err != nil {
		return d.abortOp(action, op, domain.ErrDependencyInstallFailed, err)
	}

	op.Status = domain.OperationStatusPassed
	op.EndedAt = time.Now()
	action.Operations = append(action.Operations, op)
	action.Status = domain.ActionStatusPassed
	action.FinishedAt = time.Now()
	return action
}

func (d *Dispatcher) installProjectDeps(ctx context.Context, node domain.ActionNode) *domain.Action {
	project, err := d.Graph.Project(node.Project.String())
	if err != nil {
		action := &domain.Action{Node: node, StartedAt: time.Now()}
		return d.abortOp(action, domain.Operation{Kind: domain.OperationSyncOperation, StartedAt: time.Now()}, domain.ErrProjectNotFound, err)
	}
	return d.installDeps(ctx, node, project.Root)
}

func (d *Dispatcher) syncProject(ctx context.Context, node domain.ActionNode) *domain.Action {
	action := &domain.Action{Node: node, StartedAt: time.Now()}
	op := domain.Operation{Kind: domain.OperationSyncOperation, StartedAt: time.Now()}

	project, err := d.Graph.Project(node.Project.String())
	if err != nil {
		return d.abortOp(action, op, domain.ErrProjectNotFound, err)
	}

	if d.VCS != nil && d.VCS.IsRepository(project.Root) {
		changed, cerr := d.VCS.ChangedFiles(ctx, project.Root, "")
		if cerr != nil {
			return d.abortOp(action, op, domain.ErrVCSUnavailable, cerr)
		}
		op.ChangedFiles = changed
	}

	op.Status = domain.OperationStatusPassed
	op.EndedAt = time.Now()
	action.Operations = append(action.Operations, op)
	action.Status = domain.ActionStatusPassed
	action.FinishedAt = time.Now()
	return action
}

// abortOp marks op failed, appends it to action, and sets action to the
// FailedAndAbort status: every node kind but RunTask is infrastructure that
// everything transitively depends on, so its own failure always gates.
func (d *Dispatcher) abortOp(action *domain.Action, op domain.Operation, sentinel error, cause error) *domain.Action {
	op.Status = domain.OperationStatusFailed
	op.EndedAt = time.Now()
	action.Operations = append(action.Operations, op)
	action.Status = domain.ActionStatusFailedAndAbort
	if cause != nil {
		action.Err = zerr.With(zerr.Wrap(cause, sentinel.Error()), "node", action.Node.Label())
	} else {
		action.Err = zerr.With(sentinel, "node", action.Node.Label())
	}
	action.FinishedAt = time.Now()
	return action
}
