package taskrunner

import (
	"context"

	"go.trai.ch/zerr"

	"go.strata.build/strata/internal/core/domain"
	"go.strata.build/strata/internal/core/ports"
)

// BuildToolchainEnv returns a Runner.ToolchainEnv closure that resolves each
// of a task's declared toolchains through registry, using versions as the
// workspace-wide version requirement per toolchain id, and concatenates
// their hermetic environments. Later toolchains' entries come after earlier
// ones, so a task declaring ["go", "node"] sees go's environment first.
func BuildToolchainEnv(registry ports.ToolchainRegistry, versions map[domain.Id]string) func(ctx context.Context, toolchains []domain.Id, dir string) ([]string, error) {
	return func(ctx context.Context, toolchains []domain.Id, dir string) ([]string, error) {
		var env []string
		for _, id := range toolchains {
			plugin, ok := registry.Plugin(id)
			if !ok {
				return nil, zerr.With(domain.ErrNoToolchainForLanguage, "toolchain", id.String())
			}
			resolved, err := plugin.Setup(ctx, versions[id])
			if err != nil {
				return nil, zerr.With(domain.ErrToolchainInstallFailed, "toolchain", id.String())
			}
			toolchainEnv, err := plugin.Environment(ctx, resolved, dir)
			if err != nil {
				return nil, err
			}
			env = append(env, toolchainEnv...)
		}
		return env, nil
	}
}
