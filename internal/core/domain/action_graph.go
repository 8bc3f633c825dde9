package domain

import (
	"iter"
	"sort"

	"go.trai.ch/zerr"
)

// ActionGraph is a directed acyclic graph over ActionNodes, built once by the
// action-graph builder and never mutated afterward. An edge u -> v means
// "u must complete successfully before v starts".
type ActionGraph struct {
	nodes []ActionNode
	index map[string]int // node key -> index into nodes

	// edges[i] holds the indices of nodes that i has an edge *to* (successors).
	edges [][]int
	// predecessors[i] holds the indices of nodes with an edge *to* i.
	predecessors [][]int

	order []int // topological order, populated by Validate
}

// NewActionGraph creates an empty ActionGraph.
func NewActionGraph() *ActionGraph {
	return &ActionGraph{index: make(map[string]int)}
}

// GetOrAddNode returns the index of the node, inserting it if not already
// present. Insertion order is preserved, which the builder relies on for
// deterministic tie-breaking in the topological sort.
func (g *ActionGraph) GetOrAddNode(n ActionNode) int {
	key := n.Key()
	if idx, ok := g.index[key]; ok {
		return idx
	}
	idx := len(g.nodes)
	g.nodes = append(g.nodes, n)
	g.edges = append(g.edges, nil)
	g.predecessors = append(g.predecessors, nil)
	g.index[key] = idx
	return idx
}

// AddEdge adds an edge from -> to. Both endpoints must already be in the graph.
func (g *ActionGraph) AddEdge(from, to int) {
	for _, existing := range g.edges[from] {
		if existing == to {
			return
		}
	}
	g.edges[from] = append(g.edges[from], to)
	g.predecessors[to] = append(g.predecessors[to], from)
}

// Node returns the node at the given index.
func (g *ActionGraph) Node(idx int) ActionNode {
	return g.nodes[idx]
}

// NodeCount returns the number of nodes in the graph.
func (g *ActionGraph) NodeCount() int {
	return len(g.nodes)
}

// Successors returns the indices of nodes with an edge from idx.
func (g *ActionGraph) Successors(idx int) []int {
	return g.edges[idx]
}

// Predecessors returns the indices of nodes with an edge to idx.
func (g *ActionGraph) Predecessors(idx int) []int {
	return g.predecessors[idx]
}

// Roots returns the indices of nodes with no predecessors, in insertion order.
func (g *ActionGraph) Roots() []int {
	var roots []int
	for i := range g.nodes {
		if len(g.predecessors[i]) == 0 {
			roots = append(roots, i)
		}
	}
	return roots
}

// Validate checks the graph for cycles using depth-first search and, on
// success, populates the topological order retrievable via Walk. Ties
// (disconnected components, siblings) are broken by insertion order so that
// two builds from an identical set of requests produce an identical plan.
func (g *ActionGraph) Validate() error {
	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)
	state := make([]int, len(g.nodes))
	order := make([]int, 0, len(g.nodes))
	var path []int

	// Walking predecessors (a node's dependencies) and appending a node to
	// order only after all of its predecessors are appended yields
	// dependencies-before-dependents directly, with no final reversal
	// needed — the same shape as the teacher's graph.Validate, which
	// recurses into task.Dependencies before appending the task itself.
	var visit func(i int) error
	visit = func(i int) error {
		state[i] = visiting
		path = append(path, i)

		pred := append([]int(nil), g.predecessors[i]...)
		sort.Ints(pred)
		for _, dep := range pred {
			switch state[dep] {
			case visiting:
				return g.buildCycleError(path, dep)
			case unvisited:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		state[i] = visited
		path = path[:len(path)-1]
		order = append(order, i)
		return nil
	}

	for i := range g.nodes {
		if state[i] == unvisited {
			if err := visit(i); err != nil {
				return err
			}
		}
	}

	g.order = order
	return nil
}

func (g *ActionGraph) buildCycleError(path []int, back int) error {
	startIdx := -1
	for i, n := range path {
		if n == back {
			startIdx = i
			break
		}
	}
	label := ""
	for i := startIdx; i < len(path); i++ {
		label += g.nodes[path[i]].Label() + " -> "
	}
	label += g.nodes[back].Label()
	return zerr.With(ErrCycleDetected, "cycle", label)
}

// Walk returns an iterator over node indices in topological order. Validate
// must have been called successfully first.
func (g *ActionGraph) Walk() iter.Seq[int] {
	return func(yield func(int) bool) {
		for _, idx := range g.order {
			if !yield(idx) {
				return
			}
		}
	}
}

// TopologicalOrder returns the full topological order as node indices.
func (g *ActionGraph) TopologicalOrder() []int {
	return append([]int(nil), g.order...)
}
