package app

import (
	"os"
	"path/filepath"

	"go.trai.ch/zerr"

	"go.strata.build/strata/internal/adapters/cas"
	"go.strata.build/strata/internal/adapters/config"
	"go.strata.build/strata/internal/adapters/fs"
	"go.strata.build/strata/internal/adapters/logger"
	"go.strata.build/strata/internal/adapters/shell"
	"go.strata.build/strata/internal/adapters/telemetry"
	"go.strata.build/strata/internal/adapters/toolchain"
	"go.strata.build/strata/internal/adapters/toolchain/nix"
	"go.strata.build/strata/internal/adapters/vcs"
	"go.strata.build/strata/internal/core/ports"
	"go.strata.build/strata/internal/engine/hash"
	"go.strata.build/strata/internal/engine/taskrunner"
)

// Components bundles the application and the pieces of it the CLI layer
// needs direct access to (for flag-driven overrides like --cache=off).
type Components struct {
	App    *App
	Logger ports.Logger
}

// NewApp builds an App with every adapter wired by hand (no DI container):
// logger and config first, then the cache/hash/toolchain collaborators the
// task runner needs, then the runner and dispatcher-facing registries.
// workspaceRoot is used only to resolve the on-disk cache directory; the
// workspace itself is (re)loaded per Run call from the caller's cwd.
func NewApp(workspaceRoot string, concurrency int) (*Components, error) {
	loggerAdapter := logger.New()
	configLoader := config.NewLoader(loggerAdapter)

	walker := fs.NewWalker()
	fileHasher := fs.NewHasher(walker)
	resolver := fs.NewResolver()
	verifier := fs.NewVerifier()
	inputHasher := hash.New(resolver, fileHasher)

	cacheRoot := filepath.Join(workspaceRoot, ".strata", "cache")
	if err := cas.WriteCacheDirTag(cacheRoot); err != nil {
		return nil, zerr.Wrap(err, "prepare cache directory")
	}
	manifests, err := cas.NewManifestStore(cacheRoot)
	if err != nil {
		return nil, zerr.Wrap(err, "open manifest store")
	}
	states, err := cas.NewStateStore(cacheRoot)
	if err != nil {
		return nil, zerr.Wrap(err, "open state store")
	}
	archives, err := cas.NewArchiveStore(cacheRoot)
	if err != nil {
		return nil, zerr.Wrap(err, "open archive store")
	}

	nixPlugin := nix.New(filepath.Join(cacheRoot, "nix-env.json"))
	registry := toolchain.NewRegistry()
	registry.Register("nix", nixPlugin)

	shellExecutor := shell.NewExecutor(loggerAdapter)
	git := vcs.New()

	runner := &taskrunner.Runner{
		Hasher:       inputHasher,
		Verifier:     verifier,
		Executor:     shellExecutor,
		Manifests:    manifests,
		States:       states,
		Archives:     archives,
		Remote:       nil,
		CacheMode:    cas.ModeFromEnv(os.Getenv("STRATA_CACHE")),
		Logger:       loggerAdapter,
		ToolchainEnv: taskrunner.BuildToolchainEnv(registry, nil),
	}

	app := New(configLoader, registry, git, runner, loggerAdapter, telemetry.NewNoop(), concurrency)
	return &Components{App: app, Logger: loggerAdapter}, nil
}
