// Package app wires the engine components (config, graph builder, pipeline,
// task runner) into the orchestration a CLI command actually calls.
package app

import (
	"context"
	"runtime"

	"go.trai.ch/zerr"

	"go.strata.build/strata/internal/core/domain"
	"go.strata.build/strata/internal/core/ports"
	"go.strata.build/strata/internal/core/workspace"
	"go.strata.build/strata/internal/engine/graphbuilder"
	"go.strata.build/strata/internal/engine/pipeline"
	"go.strata.build/strata/internal/engine/taskrunner"
)

// App orchestrates one invocation: load the workspace, build the action
// graph for the requested targets, and run it through the pipeline.
type App struct {
	configLoader ports.ConfigLoader
	toolchains   ports.ToolchainRegistry
	vcs          ports.VCS
	runner       *taskrunner.Runner
	logger       ports.Logger
	telemetry    ports.Telemetry
	concurrency  int
}

// New creates an App from its collaborators. concurrency <= 0 defaults to
// runtime.NumCPU().
func New(
	loader ports.ConfigLoader,
	toolchains ports.ToolchainRegistry,
	vcs ports.VCS,
	runner *taskrunner.Runner,
	logger ports.Logger,
	telemetry ports.Telemetry,
	concurrency int,
) *App {
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	return &App{
		configLoader: loader,
		toolchains:   toolchains,
		vcs:          vcs,
		runner:       runner,
		logger:       logger,
		telemetry:    telemetry,
		concurrency:  concurrency,
	}
}

// RunOptions configures one Run call: which targets to schedule and how the
// action graph around them should be built.
type RunOptions struct {
	Targets []string
	Graph   graphbuilder.Options
}

// Run loads the workspace rooted at cwd, builds the action graph for opts'
// targets, and executes it to completion.
func (a *App) Run(ctx context.Context, cwd string, opts RunOptions) error {
	wg, ag, err := a.buildGraph(cwd, opts)
	if err != nil {
		return err
	}

	// The runner is built once at startup, before any workspace is loaded;
	// bind it to this invocation's graph before dispatching.
	a.runner.Graph = wg

	dispatcher := &taskrunner.Dispatcher{
		Graph:      wg,
		Toolchains: a.toolchains,
		VCS:        a.vcs,
		Runner:     a.runner,
		Logger:     a.logger,
	}

	p := pipeline.New(ag, dispatcher, a.telemetry, a.logger, a.concurrency)
	if err := p.Run(ctx); err != nil {
		return zerr.Wrap(err, "build execution failed")
	}
	return nil
}

// Graph loads the workspace rooted at cwd and builds the action graph for
// opts' targets without executing it, for commands that only need to
// inspect the plan (e.g. "strata graph").
func (a *App) Graph(_ context.Context, cwd string, opts RunOptions) (*domain.ActionGraph, error) {
	_, ag, err := a.buildGraph(cwd, opts)
	return ag, err
}

func (a *App) buildGraph(cwd string, opts RunOptions) (*workspace.Graph, *domain.ActionGraph, error) {
	if len(opts.Targets) == 0 {
		return nil, nil, domain.ErrNoTargetsSpecified
	}

	wg, err := a.configLoader.Load(cwd)
	if err != nil {
		return nil, nil, zerr.Wrap(err, "failed to load configuration")
	}

	var targets []domain.Target
	for _, name := range opts.Targets {
		t, err := domain.ParseTarget(name)
		if err != nil {
			return nil, nil, zerr.With(err, "target", name)
		}
		targets = append(targets, t)
	}

	ag, err := graphbuilder.New(wg, opts.Graph).Build(targets)
	if err != nil {
		return nil, nil, zerr.Wrap(err, "failed to build action graph")
	}
	return wg, ag, nil
}
