package graphbuilder_test

import (
	"testing"

	"go.strata.build/strata/internal/core/domain"
	"go.strata.build/strata/internal/core/workspace"
	"go.strata.build/strata/internal/engine/graphbuilder"
)

func task(project, id domain.Id, deps ...domain.Target) *domain.Task {
	var dependencies []domain.TaskDependency
	for _, d := range deps {
		dependencies = append(dependencies, domain.TaskDependency{Target: d})
	}
	return &domain.Task{
		ID:           id,
		Target:       domain.NewQualifiedTarget(project, id),
		Command:      "true",
		Dependencies: dependencies,
		Options:      domain.DefaultTaskOptions(),
	}
}

func buildGraph(t *testing.T, projects ...*domain.Project) *workspace.Graph {
	t.Helper()
	g, err := workspace.New(t.TempDir(), projects)
	if err != nil {
		t.Fatalf("workspace.New: %v", err)
	}
	return g
}

func TestBuild_SingleTaskNoDeps(t *testing.T) {
	app := &domain.Project{
		ID:   "app",
		Root: t.TempDir(),
		Tasks: map[domain.Id]*domain.Task{
			"build": task("app", "build"),
		},
	}
	wg := buildGraph(t, app)

	b := graphbuilder.New(wg, graphbuilder.DefaultOptions())
	ag, err := b.Build([]domain.Target{domain.NewQualifiedTarget("app", "build")})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	order := ag.TopologicalOrder()
	if len(order) != 3 {
		t.Fatalf("NodeCount = %d, want 3 (SyncWorkspace, SyncProject, RunTask)", len(order))
	}

	var kinds []domain.ActionNodeKind
	for _, idx := range order {
		kinds = append(kinds, ag.Node(idx).Kind)
	}
	want := []domain.ActionNodeKind{domain.KindSyncWorkspace, domain.KindSyncProject, domain.KindRunTask}
	for i, k := range want {
		if kinds[i] != k {
			t.Errorf("kinds[%d] = %v, want %v (full: %v)", i, kinds[i], k, kinds)
		}
	}
}

func TestBuild_TaskDependencyOrdering(t *testing.T) {
	app := &domain.Project{
		ID:   "app",
		Root: t.TempDir(),
		Tasks: map[domain.Id]*domain.Task{
			"build": task("app", "build", domain.NewQualifiedTarget("app", "generate")),
			"generate": task("app", "generate"),
		},
	}
	wg := buildGraph(t, app)

	b := graphbuilder.New(wg, graphbuilder.DefaultOptions())
	ag, err := b.Build([]domain.Target{domain.NewQualifiedTarget("app", "build")})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	genIdx, buildIdx := -1, -1
	for i := 0; i < ag.NodeCount(); i++ {
		n := ag.Node(i)
		if n.Kind != domain.KindRunTask {
			continue
		}
		switch n.TaskTarget.Task {
		case "generate":
			genIdx = i
		case "build":
			buildIdx = i
		}
	}
	if genIdx == -1 || buildIdx == -1 {
		t.Fatalf("expected both RunTask nodes, got generate=%d build=%d", genIdx, buildIdx)
	}

	genPos, buildPos := -1, -1
	for pos, idx := range ag.TopologicalOrder() {
		if idx == genIdx {
			genPos = pos
		}
		if idx == buildIdx {
			buildPos = pos
		}
	}
	if genPos >= buildPos {
		t.Errorf("expected generate (pos %d) before build (pos %d)", genPos, buildPos)
	}
}

func TestBuild_DeduplicatesSharedToolchain(t *testing.T) {
	taskA := task("app", "a")
	taskA.Toolchains = []domain.Id{"nix"}
	taskB := task("app", "b")
	taskB.Toolchains = []domain.Id{"nix"}

	app := &domain.Project{
		ID:         "app",
		Root:       t.TempDir(),
		Toolchains: []domain.Id{"nix"},
		Tasks: map[domain.Id]*domain.Task{
			"a": taskA,
			"b": taskB,
		},
	}
	wg := buildGraph(t, app)

	b := graphbuilder.New(wg, graphbuilder.DefaultOptions())
	ag, err := b.Build([]domain.Target{
		domain.NewQualifiedTarget("app", "a"),
		domain.NewQualifiedTarget("app", "b"),
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	setupCount := 0
	for i := 0; i < ag.NodeCount(); i++ {
		if ag.Node(i).Kind == domain.KindSetupToolchain {
			setupCount++
		}
	}
	if setupCount != 1 {
		t.Errorf("SetupToolchain node count = %d, want 1 (shared across both tasks)", setupCount)
	}
}

func TestBuild_CycleDetected(t *testing.T) {
	app := &domain.Project{
		ID:   "app",
		Root: t.TempDir(),
		Tasks: map[domain.Id]*domain.Task{
			"a": task("app", "a", domain.NewQualifiedTarget("app", "b")),
			"b": task("app", "b", domain.NewQualifiedTarget("app", "a")),
		},
	}
	wg := buildGraph(t, app)

	b := graphbuilder.New(wg, graphbuilder.DefaultOptions())
	_, err := b.Build([]domain.Target{domain.NewQualifiedTarget("app", "a")})
	if err == nil {
		t.Fatal("expected a cycle error")
	}
}

func TestBuild_RejectsDependencyOnAllowFailureTask(t *testing.T) {
	allowFailing := task("app", "lint")
	allowFailing.Options.AllowFailure = true

	app := &domain.Project{
		ID:   "app",
		Root: t.TempDir(),
		Tasks: map[domain.Id]*domain.Task{
			"build": task("app", "build", domain.NewQualifiedTarget("app", "lint")),
			"lint":  allowFailing,
		},
	}
	wg := buildGraph(t, app)

	b := graphbuilder.New(wg, graphbuilder.DefaultOptions())
	_, err := b.Build([]domain.Target{domain.NewQualifiedTarget("app", "build")})
	if err == nil {
		t.Fatal("expected an error for depending on an allow-failure task")
	}
}

func TestBuild_RejectsInternalTargetRunDirectly(t *testing.T) {
	app := &domain.Project{
		ID:   "app",
		Root: t.TempDir(),
		Tasks: map[domain.Id]*domain.Task{
			"_prepare": task("app", "_prepare"),
		},
	}
	wg := buildGraph(t, app)

	b := graphbuilder.New(wg, graphbuilder.DefaultOptions())
	_, err := b.Build([]domain.Target{domain.NewQualifiedTarget("app", "_prepare")})
	if err == nil {
		t.Fatal("expected an error for running an internal target directly")
	}
}

func TestBuild_InternalTargetUsableAsDependency(t *testing.T) {
	app := &domain.Project{
		ID:   "app",
		Root: t.TempDir(),
		Tasks: map[domain.Id]*domain.Task{
			"build":    task("app", "build", domain.NewQualifiedTarget("app", "_prepare")),
			"_prepare": task("app", "_prepare"),
		},
	}
	wg := buildGraph(t, app)

	b := graphbuilder.New(wg, graphbuilder.DefaultOptions())
	ag, err := b.Build([]domain.Target{domain.NewQualifiedTarget("app", "build")})
	if err != nil {
		t.Fatalf("Build() error = %v, want an internal task to be runnable as a dependency", err)
	}
	if ag.NodeCount() == 0 {
		t.Fatal("expected a non-empty graph")
	}
}

func TestBuild_AllProjectsScopeExpandsToEveryDeclaringProject(t *testing.T) {
	api := &domain.Project{
		ID:   "api",
		Root: t.TempDir(),
		Tasks: map[domain.Id]*domain.Task{
			"build": task("api", "build"),
		},
	}
	web := &domain.Project{
		ID:   "web",
		Root: t.TempDir(),
		Tasks: map[domain.Id]*domain.Task{
			"build": task("web", "build"),
		},
	}
	wg := buildGraph(t, api, web)

	b := graphbuilder.New(wg, graphbuilder.DefaultOptions())
	ag, err := b.Build([]domain.Target{{Task: "build", Scope: domain.ScopeAllProjects}})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	runTasks := 0
	for i := 0; i < ag.NodeCount(); i++ {
		if ag.Node(i).Kind == domain.KindRunTask {
			runTasks++
		}
	}
	if runTasks != 2 {
		t.Errorf("RunTask node count = %d, want 2 (one per project)", runTasks)
	}
}
