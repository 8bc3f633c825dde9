// Package ports defines the interfaces the core engine uses to talk to its
// collaborators, so the engine depends only on these contracts and never on
// a concrete adapter package.
package ports

import (
	"context"

	"go.strata.build/strata/internal/core/domain"
)

// ToolchainPlugin resolves and installs one toolchain's runtimes, and
// constructs the hermetic environment a task or install step runs under.
// Implementations are registered per toolchain id (e.g. "go", "node").
//
//go:generate go run go.uber.org/mock/mockgen -source=toolchain.go -destination=mocks/mock_toolchain.go -package=mocks
type ToolchainPlugin interface {
	// Setup resolves versionReq to a concrete version and ensures it is
	// installed, returning an identifier stable across runs for the same
	// resolved version (used as part of the environment cache key).
	Setup(ctx context.Context, versionReq string) (resolvedVersion string, err error)

	// Environment constructs the "KEY=VALUE" environment for running
	// commands against the given resolved version, rooted at dir.
	Environment(ctx context.Context, resolvedVersion, dir string) ([]string, error)

	// InstallDeps installs workspace- or project-scoped dependencies
	// (e.g. `go mod download`, `npm install`) rooted at dir.
	InstallDeps(ctx context.Context, resolvedVersion, dir string) error
}

// ToolchainRegistry resolves a toolchain id to its plugin.
type ToolchainRegistry interface {
	Plugin(toolchain domain.Id) (ToolchainPlugin, bool)
}
