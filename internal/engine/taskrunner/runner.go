// Package taskrunner implements the task runner (C6): for a RunTask action,
// it resolves inputs, computes the cache key, checks local and remote cache,
// hydrates a hit or executes a miss with retry, verifies declared outputs,
// and persists the resulting state. Cache-check-then-execute-then-persist is
// grounded on the teacher's scheduler.checkTaskCache / handleSuccess split;
// retry and verification are new, since the teacher has neither.
package taskrunner

import (
	"bytes"
	"context"
	"time"

	"go.trai.ch/zerr"

	"go.strata.build/strata/internal/core/domain"
	"go.strata.build/strata/internal/core/ports"
	"go.strata.build/strata/internal/core/workspace"
)

// Runner executes a single RunTask action against its collaborators.
type Runner struct {
	Graph        *workspace.Graph
	Hasher       ports.Hasher
	Verifier     ports.Verifier
	Executor     ports.Executor
	Manifests    ports.ManifestStore
	States       ports.StateStore
	Archives     ports.OutputArchiveStore
	Remote       ports.RemoteCache // nil disables remote caching
	CacheMode    ports.CacheMode
	Logger       ports.Logger
	ToolchainEnv func(ctx context.Context, toolchains []domain.Id, dir string) ([]string, error)
}

// Run executes target's task and returns the completed Action record. It
// never returns an error directly; failures are captured in Action.Err so
// the pipeline can decide whether they gate dependents.
func (r *Runner) Run(ctx context.Context, target domain.Target, runtime domain.Runtime, persistent, interactive bool) *domain.Action {
	node := domain.NewRunTaskNode(target, runtime, persistent, interactive)
	action := &domain.Action{Node: node, Status: domain.ActionStatusRunning, StartedAt: time.Now()}

	task, err := r.Graph.Task(target)
	if err != nil {
		return r.fail(action, err)
	}
	project, err := r.Graph.Project(target.Project.String())
	if err != nil {
		return r.fail(action, err)
	}

	root := project.Root
	if task.Options.RunFromWorkspaceRoot {
		root = r.Graph.Root()
	}

	env := map[string]string{}
	for _, name := range task.InputEnvVars {
		if v, ok := task.Env[name]; ok {
			env[name] = v
		}
	}
	for k, v := range task.Env {
		env[k] = v
	}

	if !task.Options.Cache {
		r.execute(ctx, action, task, root)
		return r.finish(action)
	}

	hashOp := domain.Operation{Kind: domain.OperationHashGeneration, StartedAt: time.Now()}
	inputHash, err := r.Hasher.ComputeInputHash(task, env, root)
	hashOp.EndedAt = time.Now()
	if err != nil {
		hashOp.Status = domain.OperationStatusFailed
		action.Operations = append(action.Operations, hashOp)
		return r.fail(action, zerr.Wrap(err, "compute input hash"))
	}
	hashOp.Status = domain.OperationStatusPassed
	hashOp.Hash = inputHash
	action.Operations = append(action.Operations, hashOp)

	if cached := r.tryServeFromCache(ctx, action, task, root, inputHash); cached {
		return r.finish(action)
	}

	r.execute(ctx, action, task, root)

	if action.Status.IsSuccess() && r.CacheMode.CanWrite() {
		r.persist(ctx, task, root, inputHash)
	}

	return r.finish(action)
}

// tryServeFromCache checks the state store for a matching input hash and,
// on a hit, hydrates outputs from the local or remote archive store.
func (r *Runner) tryServeFromCache(ctx context.Context, action *domain.Action, task *domain.Task, root, inputHash string) bool {
	if !r.CacheMode.CanRead() {
		return false
	}

	state, ok, err := r.States.Get(task.Target.String())
	if err != nil || !ok || state.InputHash != inputHash {
		return false
	}

	hydrateOp := domain.Operation{Kind: domain.OperationOutputHydration, StartedAt: time.Now()}

	has, err := r.Archives.Has(inputHash)
	fromRemote := false
	if (err != nil || !has) && r.Remote != nil {
		if remoteHas, rerr := r.Remote.Has(ctx, inputHash); rerr == nil && remoteHas {
			if derr := r.Remote.Download(ctx, inputHash, "."); derr == nil {
				has, fromRemote = true, true
			}
		}
	}
	if !has {
		return false
	}

	if err := r.Archives.Hydrate(ctx, inputHash, root); err != nil {
		hydrateOp.Status = domain.OperationStatusFailed
		hydrateOp.EndedAt = time.Now()
		action.Operations = append(action.Operations, hydrateOp)
		return false
	}

	hydrateOp.Status = domain.OperationStatusPassed
	hydrateOp.EndedAt = time.Now()
	action.Operations = append(action.Operations, hydrateOp)

	if ok, _ := r.Verifier.VerifyOutputs(root, task.Outputs); !ok && task.Options.ExpectOutputs {
		return false
	}

	if fromRemote {
		action.Status = domain.ActionStatusCachedFromRemote
	} else {
		action.Status = domain.ActionStatusCached
	}
	return true
}

// execute spawns the task's command, retrying up to task.Options.RetryCount
// additional times on a non-zero exit, and records one TaskExecution
// operation per attempt.
func (r *Runner) execute(ctx context.Context, action *domain.Action, task *domain.Task, root string) {
	runCtx := ctx
	var cancel context.CancelFunc
	if task.Options.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, task.Options.Timeout)
		defer cancel()
	}

	attempts := task.Options.RetryCount + 1
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		op := domain.Operation{Kind: domain.OperationTaskExecution, StartedAt: time.Now(), Command: task.Command}

		var env []string
		if r.ToolchainEnv != nil {
			var envErr error
			env, envErr = r.ToolchainEnv(runCtx, task.Toolchains, root)
			if envErr != nil {
				op.Status = domain.OperationStatusFailed
				op.EndedAt = time.Now()
				action.Operations = append(action.Operations, op)
				lastErr = envErr
				continue
			}
		}

		var stdout, stderr bytes.Buffer
		result, err := r.Executor.Execute(runCtx, ports.ExecRequest{
			Task:        task,
			Dir:         root,
			Env:         env,
			Stdout:      &stdout,
			Stderr:      &stderr,
			Interactive: task.Options.Interactive,
		})
		op.EndedAt = time.Now()
		op.ExitCode = result.ExitCode
		op.Stdout = stdout.String()
		op.Stderr = stderr.String()

		if err == nil {
			op.Status = domain.OperationStatusPassed
			action.Operations = append(action.Operations, op)
			if task.Options.ExpectOutputs && len(task.Outputs) > 0 {
				if ok, _ := r.Verifier.VerifyOutputs(root, task.Outputs); !ok {
					action.Status = domain.ActionStatusInvalid
					action.Err = zerr.With(domain.ErrExpectedOutputMissing, "target", task.Target.String())
					return
				}
			}
			action.Status = domain.ActionStatusPassed
			return
		}

		op.Status = domain.OperationStatusFailed
		action.Operations = append(action.Operations, op)
		lastErr = err
	}

	if task.Options.AllowFailure {
		action.Status = domain.ActionStatusFailed
	} else {
		action.Status = domain.ActionStatusFailedAndAbort
	}
	action.Err = zerr.With(lastErr, "target", task.Target.String())
}

func (r *Runner) persist(ctx context.Context, task *domain.Task, root, inputHash string) {
	if err := r.Archives.Archive(ctx, inputHash, root, task.Outputs); err != nil {
		r.Logger.Warn("failed to archive outputs", "target", task.Target.String(), "error", err.Error())
		return
	}
	if err := r.States.Put(ports.TaskState{Target: task.Target.String(), InputHash: inputHash}); err != nil {
		r.Logger.Warn("failed to persist task state", "target", task.Target.String(), "error", err.Error())
	}
	if err := r.Manifests.Put(ports.HashManifest{Hash: inputHash, Fragments: []string{task.Command}}); err != nil {
		r.Logger.Warn("failed to persist hash manifest", "target", task.Target.String(), "error", err.Error())
	}
	if r.Remote != nil {
		if err := r.Remote.Upload(ctx, inputHash, root); err != nil {
			r.Logger.Warn("failed to upload to remote cache", "target", task.Target.String(), "error", err.Error())
		}
	}
}

func (r *Runner) fail(action *domain.Action, err error) *domain.Action {
	action.Status = domain.ActionStatusFailed
	action.Err = err
	return r.finish(action)
}

func (r *Runner) finish(action *domain.Action) *domain.Action {
	action.FinishedAt = time.Now()
	return action
}
