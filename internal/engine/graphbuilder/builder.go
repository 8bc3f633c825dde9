package graphbuilder

import (
	"strings"

	"go.trai.ch/zerr"

	"go.strata.build/strata/internal/core/domain"
	"go.strata.build/strata/internal/core/workspace"
)

// Builder translates run requests into a deduplicated ActionGraph against a
// fixed workspace graph.
type Builder struct {
	Graph   *workspace.Graph
	Options Options
}

// New creates a Builder over graph with opts.
func New(graph *workspace.Graph, opts Options) *Builder {
	return &Builder{Graph: graph, Options: opts}
}

// state is the mutable bookkeeping threaded through one Build call.
type state struct {
	graph *domain.ActionGraph

	syncWorkspaceIdx  int
	haveSyncWorkspace bool

	// setupNodes and installNodes memoize SetupToolchain/InstallDeps node indices by the
	// (toolchain, version) pair, on top of ActionGraph's own node dedup, so
	// the builder never recomputes a version lookup twice.
	setupNodes   map[string]int
	installNodes map[string]int
	projectNodes map[domain.Id]int

	// inProgress and done guard against infinite recursion over a dependency
	// cycle; the graph's own Validate pass reports the cycle with a full
	// label path once construction finishes.
	inProgress map[string]bool
	done       map[string]bool

	// dependents maps a qualified target to the tasks that declared a
	// dependency on it, built lazily, only if Options.Dependents != None.
	dependents map[string][]domain.Target
}

// Build resolves every request to one or more qualified targets and returns
// the resulting ActionGraph, validated for acyclicity.
func (b *Builder) Build(requests []domain.Target) (*domain.ActionGraph, error) {
	st := &state{
		graph:        domain.NewActionGraph(),
		setupNodes:   map[string]int{},
		installNodes: map[string]int{},
		projectNodes: map[domain.Id]int{},
		inProgress:   map[string]bool{},
		done:         map[string]bool{},
	}

	if b.Options.Dependents != DependentsNone {
		st.dependents = b.buildDependentsIndex()
	}

	if b.Options.SyncWorkspace {
		st.syncWorkspaceIdx = st.graph.GetOrAddNode(domain.NewSyncWorkspaceNode())
		st.haveSyncWorkspace = true
	}

	var targets []domain.Target
	for _, req := range requests {
		resolved, err := b.resolveRequest(req)
		if err != nil {
			return nil, err
		}
		targets = append(targets, resolved...)
	}

	queue := append([]domain.Target(nil), targets...)
	queued := map[string]bool{}
	for _, t := range queue {
		queued[t.String()] = true
	}

	for len(queue) > 0 {
		target := queue[0]
		queue = queue[1:]

		task, err := b.Graph.Task(target)
		if err != nil {
			return nil, err
		}
		if isInternal(task.ID) {
			return nil, zerr.With(domain.ErrInternalTarget, "target", target.String())
		}

		if _, err := b.addTask(st, target); err != nil {
			return nil, err
		}

		if b.Options.Dependents != DependentsNone {
			for _, dependent := range st.dependents[target.String()] {
				if queued[dependent.String()] {
					continue
				}
				queued[dependent.String()] = true
				queue = append(queue, dependent)
				if b.Options.Dependents != DependentsDeep {
					continue
				}
			}
		}
	}

	if err := st.graph.Validate(); err != nil {
		return nil, err
	}
	return st.graph, nil
}

// resolveRequest expands a (possibly unqualified) top-level request into
// concrete qualified targets. ScopeDependenciesOfSelf and ScopeSelf only
// make sense relative to a task that is itself being resolved (step g of
// the algorithm), so a top-level request using either is an error.
func (b *Builder) resolveRequest(req domain.Target) ([]domain.Target, error) {
	switch req.Scope {
	case domain.ScopeQualified:
		return []domain.Target{req}, nil
	case domain.ScopeAllProjects:
		var out []domain.Target
		for _, p := range b.Graph.ProjectsWithTask(req.Task) {
			out = append(out, domain.NewQualifiedTarget(p.ID, req.Task))
		}
		return out, nil
	default:
		return nil, zerr.With(domain.ErrInvalidTargetScope, "target", req.String())
	}
}

// addTask ensures target's RunTask node (and everything it transitively
// requires) exists in st.graph, returning its node index. It is idempotent:
// calling it twice with the same target returns the same index without
// re-wiring edges.
func (b *Builder) addTask(st *state, target domain.Target) (int, error) {
	key := target.String()

	task, err := b.Graph.Task(target)
	if err != nil {
		return 0, err
	}

	node := domain.NewRunTaskNode(target, b.primaryRuntime(task), task.Options.Persistent, task.Options.Interactive)
	idx := st.graph.GetOrAddNode(node)

	if st.inProgress[key] || st.done[key] {
		// Already fully wired, or in progress higher up this recursion (a
		// real cycle): returning here avoids an unbounded recursive descent.
		// Validate reports any actual cycle once construction finishes.
		return idx, nil
	}
	st.inProgress[key] = true
	defer func() {
		delete(st.inProgress, key)
		st.done[key] = true
	}()

	if st.haveSyncWorkspace {
		st.graph.AddEdge(st.syncWorkspaceIdx, idx)
	}

	for _, toolchainID := range task.Toolchains {
		if !b.Options.SetupToolchains.Admits(toolchainID) {
			continue
		}
		setupIdx := b.ensureSetupToolchain(st, toolchainID)
		st.graph.AddEdge(setupIdx, idx)

		if !b.Options.InstallDependencies.Admits(toolchainID) {
			continue
		}
		installIdx := b.ensureInstallDeps(st, toolchainID, task)
		st.graph.AddEdge(setupIdx, installIdx)
		st.graph.AddEdge(installIdx, idx)
	}

	if b.Options.SyncProjects.Admits(target.Project) {
		b.ensureSyncProject(st, target.Project, idx)
	}

	for _, dep := range task.Dependencies {
		depTargets, err := b.resolveTaskDependency(dep.Target, target.Project)
		if err != nil {
			if dep.Optional {
				continue
			}
			return 0, err
		}
		for _, depTarget := range depTargets {
			depTask, err := b.Graph.Task(depTarget)
			if err != nil {
				if dep.Optional {
					continue
				}
				return 0, err
			}
			if depTask.Options.AllowFailure {
				return 0, zerr.With(domain.ErrDependsOnAllowFailure, "target", depTarget.String())
			}
			if depTask.Options.Persistent {
				return 0, zerr.With(domain.ErrPersistentHasDependents, "target", depTarget.String())
			}

			depIdx, err := b.addTask(st, depTarget)
			if err != nil {
				if dep.Optional {
					continue
				}
				return 0, err
			}
			st.graph.AddEdge(depIdx, idx)
		}
	}

	return idx, nil
}

// resolveTaskDependency expands a task-level dependency target (which may
// use any scope, including the self-relative ones valid only here) relative
// to owner, the project declaring the dependency.
func (b *Builder) resolveTaskDependency(dep domain.Target, owner domain.Id) ([]domain.Target, error) {
	switch dep.Scope {
	case domain.ScopeQualified:
		return []domain.Target{dep}, nil
	case domain.ScopeSelf:
		return []domain.Target{domain.NewQualifiedTarget(owner, dep.Task)}, nil
	case domain.ScopeDependenciesOfSelf:
		var out []domain.Target
		for _, depProject := range b.Graph.Dependencies(owner) {
			if p, err := b.Graph.Project(depProject.String()); err == nil {
				if _, ok := p.Tasks[dep.Task]; ok {
					out = append(out, domain.NewQualifiedTarget(depProject, dep.Task))
				}
			}
		}
		return out, nil
	case domain.ScopeAllProjects:
		var out []domain.Target
		for _, p := range b.Graph.ProjectsWithTask(dep.Task) {
			out = append(out, domain.NewQualifiedTarget(p.ID, dep.Task))
		}
		return out, nil
	default:
		return nil, zerr.With(domain.ErrInvalidTargetScope, "target", dep.String())
	}
}

func (b *Builder) ensureSetupToolchain(st *state, toolchainID domain.Id) int {
	versionReq := b.Options.versionFor(toolchainID)
	key := toolchainID.String() + "@" + versionReq
	if idx, ok := st.setupNodes[key]; ok {
		return idx
	}
	idx := st.graph.GetOrAddNode(domain.NewSetupToolchainNode(toolchainID, versionReq))
	st.setupNodes[key] = idx
	return idx
}

func (b *Builder) ensureInstallDeps(st *state, toolchainID domain.Id, task *domain.Task) int {
	versionReq := b.Options.versionFor(toolchainID)
	root := b.Graph.Root()
	key := toolchainID.String() + "@" + versionReq + ":" + root
	if idx, ok := st.installNodes[key]; ok {
		return idx
	}
	idx := st.graph.GetOrAddNode(domain.NewInstallDepsNode(toolchainID, versionReq, root))
	st.installNodes[key] = idx
	return idx
}

func (b *Builder) ensureSyncProject(st *state, projectID domain.Id, dependentIdx int) {
	idx := b.ensureSyncProjectNode(st, projectID)
	st.graph.AddEdge(idx, dependentIdx)

	for _, depProjectID := range b.Graph.Dependencies(projectID) {
		depIdx := b.ensureSyncProjectNode(st, depProjectID)
		st.graph.AddEdge(depIdx, idx)
	}
}

func (b *Builder) ensureSyncProjectNode(st *state, projectID domain.Id) int {
	if idx, ok := st.projectNodes[projectID]; ok {
		return idx
	}
	p, err := b.Graph.Project(projectID.String())
	var toolchains []domain.Id
	if err == nil {
		toolchains = p.Toolchains
	}
	idx := st.graph.GetOrAddNode(domain.NewSyncProjectNode(projectID, toolchains))
	st.projectNodes[projectID] = idx

	for _, toolchainID := range toolchains {
		if b.Options.SetupToolchains.Admits(toolchainID) {
			st.graph.AddEdge(b.ensureSetupToolchain(st, toolchainID), idx)
		}
	}
	return idx
}

// primaryRuntime picks the task's first declared toolchain as the Runtime
// recorded on its RunTask node, used only for display/labeling: the task
// runner resolves the hermetic environment from task.Toolchains directly.
func (b *Builder) primaryRuntime(task *domain.Task) domain.Runtime {
	if len(task.Toolchains) == 0 {
		return domain.Runtime{}
	}
	toolchainID := task.Toolchains[0]
	return domain.Runtime{ToolchainID: toolchainID, VersionReq: b.Options.versionFor(toolchainID)}
}

// buildDependentsIndex inverts every task's declared dependency edges into
// a target -> dependents map, used to expand Options.Dependents.
func (b *Builder) buildDependentsIndex() map[string][]domain.Target {
	index := map[string][]domain.Target{}
	for _, p := range b.Graph.Projects() {
		for _, task := range p.Tasks {
			self := domain.NewQualifiedTarget(p.ID, task.ID)
			for _, dep := range task.Dependencies {
				depTargets, err := b.resolveTaskDependency(dep.Target, p.ID)
				if err != nil {
					continue
				}
				for _, depTarget := range depTargets {
					key := depTarget.String()
					index[key] = append(index[key], self)
				}
			}
		}
	}
	return index
}

// isInternal reports whether a task id marks it internal by convention (a
// leading underscore): usable only as a dependency, never run directly.
func isInternal(id domain.Id) bool {
	return strings.HasPrefix(id.String(), "_")
}
