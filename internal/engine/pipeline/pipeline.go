// Package pipeline implements the action pipeline (C5): a worker pool that
// walks an ActionGraph in dependency order, running each action's executor
// with bounded concurrency. A node whose status doesn't count as a success
// (domain.ActionStatus.IsSuccess) marks its direct successors Skipped rather
// than letting them run against a dependency that never produced its
// outputs; the skip cascades transitively as each successor is reached.
// Context cancellation, or a node finishing FailedAndAbort
// (domain.ActionStatus.IsAbort), trips an internal abort token so nothing
// not already running starts; nodes that never start are recorded Skipped.
// The in-degree / ready-queue / results-channel shape is carried over from
// the teacher's scheduler.Run, generalized from a flat task graph to the
// full ActionGraph.
package pipeline

import (
	"context"
	"errors"
	"sync"

	"go.strata.build/strata/internal/core/domain"
	"go.strata.build/strata/internal/core/ports"
)

// Executor runs a single action to completion and reports its terminal record.
type Executor interface {
	Execute(ctx context.Context, node domain.ActionNode) *domain.Action
}

// Pipeline runs every action in an ActionGraph with bounded concurrency.
type Pipeline struct {
	graph       *domain.ActionGraph
	executor    Executor
	telemetry   ports.Telemetry
	logger      ports.Logger
	concurrency int

	mu      sync.Mutex
	actions []*domain.Action
}

// New creates a Pipeline over graph, running actions through executor with
// at most concurrency in flight at once.
func New(graph *domain.ActionGraph, executor Executor, telemetry ports.Telemetry, logger ports.Logger, concurrency int) *Pipeline {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Pipeline{
		graph:       graph,
		executor:    executor,
		telemetry:   telemetry,
		logger:      logger,
		concurrency: concurrency,
		actions:     make([]*domain.Action, graph.NodeCount()),
	}
}

// Actions returns the terminal Action record for every node, indexed the
// same way as the underlying ActionGraph. Call after Run returns.
func (p *Pipeline) Actions() []*domain.Action {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*domain.Action(nil), p.actions...)
}

type outcome struct {
	idx    int
	action *domain.Action
}

// Run executes every node in the graph, respecting dependency order, and
// returns the joined errors of every action that did not succeed. Once ctx
// is cancelled or a node finishes FailedAndAbort, actions already running
// are waited for but nothing new starts; every node that never started is
// recorded as Skipped.
func (p *Pipeline) Run(ctx context.Context) error {
	n := p.graph.NodeCount()
	inDegree := make([]int, n)
	for i := 0; i < n; i++ {
		inDegree[i] = len(p.graph.Predecessors(i))
	}

	var ready []int
	for _, r := range p.graph.Roots() {
		ready = append(ready, r)
	}

	abortCtx, abort := context.WithCancel(ctx)
	defer abort()
	defer func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		for i, a := range p.actions {
			if a == nil {
				p.actions[i] = &domain.Action{Node: p.graph.Node(i), Status: domain.ActionStatusSkipped}
			}
		}
	}()

	results := make(chan outcome, p.concurrency)
	active := 0
	var errs error
	skipped := make([]bool, n)

	for active > 0 || len(ready) > 0 {
		for len(ready) > 0 && active < p.concurrency && abortCtx.Err() == nil {
			idx := ready[0]
			ready = ready[1:]

			if skipped[idx] {
				active++
				go func(idx int) {
					results <- outcome{idx: idx, action: &domain.Action{Node: p.graph.Node(idx), Status: domain.ActionStatusSkipped}}
				}(idx)
				continue
			}

			active++
			go p.runOne(abortCtx, idx, results)
		}

		if abortCtx.Err() != nil && active == 0 {
			break
		}

		select {
		case out := <-results:
			active--
			p.mu.Lock()
			p.actions[out.idx] = out.action
			p.mu.Unlock()

			if out.action.Err != nil {
				errs = errors.Join(errs, out.action.Err)
			}
			if out.action.Status.IsAbort() {
				abort()
			}

			propagateSkip := skipped[out.idx] || !out.action.Status.IsSuccess()
			for _, dep := range p.graph.Successors(out.idx) {
				inDegree[dep]--
				if propagateSkip {
					skipped[dep] = true
				}
				if inDegree[dep] == 0 {
					ready = append(ready, dep)
				}
			}
		case <-ctx.Done():
			if active == 0 {
				errs = errors.Join(errs, ctx.Err())
				return errs
			}
		}
	}

	if ctx.Err() != nil {
		errs = errors.Join(errs, ctx.Err())
	}
	return errs
}

func (p *Pipeline) runOne(ctx context.Context, idx int, results chan<- outcome) {
	node := p.graph.Node(idx)

	var vertex ports.Vertex
	if p.telemetry != nil {
		ctx, vertex = p.telemetry.Record(ctx, node)
	}

	action := p.executor.Execute(ctx, node)

	if vertex != nil {
		if action.Status == domain.ActionStatusCached || action.Status == domain.ActionStatusCachedFromRemote {
			vertex.Cached(action.Status == domain.ActionStatusCachedFromRemote)
		}
		vertex.Complete(action.Err)
	}

	results <- outcome{idx: idx, action: action}
}
