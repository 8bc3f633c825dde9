package domain_test

import (
	"testing"

	"go.strata.build/strata/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestActionGraph_GetOrAddNode_Dedup(t *testing.T) {
	g := domain.NewActionGraph()
	a := g.GetOrAddNode(domain.NewSyncWorkspaceNode())
	b := g.GetOrAddNode(domain.NewSyncWorkspaceNode())

	if a != b {
		t.Fatalf("expected the singleton SyncWorkspace node to dedup, got indices %d and %d", a, b)
	}
	if g.NodeCount() != 1 {
		t.Fatalf("expected 1 node, got %d", g.NodeCount())
	}
}

func TestActionGraph_Validate_Cycle(t *testing.T) {
	g := domain.NewActionGraph()
	targetA := domain.NewQualifiedTarget("app", "build")
	targetB := domain.NewQualifiedTarget("app", "lint")

	a := g.GetOrAddNode(domain.NewRunTaskNode(targetA, domain.Runtime{}, false, false))
	b := g.GetOrAddNode(domain.NewRunTaskNode(targetB, domain.Runtime{}, false, false))

	g.AddEdge(b, a) // build depends on lint
	g.AddEdge(a, b) // lint depends on build: cycle

	err := g.Validate()
	if err == nil {
		t.Fatal("expected cycle error, got nil")
	}
	if _, ok := err.(*zerr.Error); !ok {
		t.Fatalf("expected *zerr.Error, got %T", err)
	}
}

func TestActionGraph_Validate_TopologicalOrder(t *testing.T) {
	g := domain.NewActionGraph()

	// sync-workspace -> setup-toolchain -> run-task(A) -> run-task(B)
	sync := g.GetOrAddNode(domain.NewSyncWorkspaceNode())
	toolchain := g.GetOrAddNode(domain.NewSetupToolchainNode("go", "1.25.3"))
	runA := g.GetOrAddNode(domain.NewRunTaskNode(domain.NewQualifiedTarget("app", "build"), domain.Runtime{}, false, false))
	runB := g.GetOrAddNode(domain.NewRunTaskNode(domain.NewQualifiedTarget("app", "test"), domain.Runtime{}, false, false))

	g.AddEdge(sync, toolchain)
	g.AddEdge(toolchain, runA)
	g.AddEdge(runA, runB)

	if err := g.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	order := g.TopologicalOrder()
	pos := make(map[int]int, len(order))
	for i, idx := range order {
		pos[idx] = i
	}

	if pos[sync] >= pos[toolchain] {
		t.Errorf("expected sync-workspace before setup-toolchain in topological order")
	}
	if pos[toolchain] >= pos[runA] {
		t.Errorf("expected setup-toolchain before run-task(build) in topological order")
	}
	if pos[runA] >= pos[runB] {
		t.Errorf("expected run-task(build) before run-task(test) in topological order")
	}
}

func TestActionGraph_Roots(t *testing.T) {
	g := domain.NewActionGraph()
	sync := g.GetOrAddNode(domain.NewSyncWorkspaceNode())
	toolchain := g.GetOrAddNode(domain.NewSetupToolchainNode("go", "1.25.3"))
	orphan := g.GetOrAddNode(domain.NewSetupToolchainNode("node", "20"))

	g.AddEdge(sync, toolchain)

	roots := g.Roots()
	if len(roots) != 2 {
		t.Fatalf("expected 2 roots, got %d: %v", len(roots), roots)
	}
	if roots[0] != sync || roots[1] != orphan {
		t.Errorf("expected roots in insertion order [sync, orphan], got %v", roots)
	}
}

func TestActionGraph_AddEdge_Idempotent(t *testing.T) {
	g := domain.NewActionGraph()
	a := g.GetOrAddNode(domain.NewSyncWorkspaceNode())
	b := g.GetOrAddNode(domain.NewSetupToolchainNode("go", "1.25.3"))

	g.AddEdge(a, b)
	g.AddEdge(a, b)

	if got := len(g.Successors(a)); got != 1 {
		t.Fatalf("expected AddEdge to be idempotent, got %d successors", got)
	}
}
