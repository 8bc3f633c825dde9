// Package toolchain implements ports.ToolchainRegistry: a lookup from
// toolchain id to ports.ToolchainPlugin, generalizing the teacher's
// Nix-only environment adapter into "pluggable per toolchain id" per
// spec.md §6, with an explicit no-op plugin for unregistered ids.
package toolchain

import (
	"context"

	"go.strata.build/strata/internal/core/domain"
	"go.strata.build/strata/internal/core/ports"
)

var _ ports.ToolchainRegistry = (*Registry)(nil)

// Registry looks up a toolchain plugin by id, falling back to a no-op
// plugin for any id nothing was registered under.
type Registry struct {
	plugins map[domain.Id]ports.ToolchainPlugin
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{plugins: make(map[domain.Id]ports.ToolchainPlugin)}
}

// Register binds a plugin to a toolchain id, replacing any existing binding.
func (r *Registry) Register(id domain.Id, plugin ports.ToolchainPlugin) {
	r.plugins[id] = plugin
}

// Plugin returns the plugin registered for toolchain, or the no-op plugin
// if none was registered; ok is always true, since every toolchain id
// resolves to at least the no-op plugin (spec.md §6: "When absent,
// SetupToolchain is a no-op returning Skipped").
func (r *Registry) Plugin(toolchain domain.Id) (ports.ToolchainPlugin, bool) {
	if p, ok := r.plugins[toolchain]; ok {
		return p, true
	}
	return noopPlugin{}, true
}

// noopPlugin satisfies ports.ToolchainPlugin without doing any work, for
// toolchain ids with no registered collaborator.
type noopPlugin struct{}

func (noopPlugin) Setup(context.Context, string) (string, error)                { return "", nil }
func (noopPlugin) Environment(context.Context, string, string) ([]string, error) { return nil, nil }
func (noopPlugin) InstallDeps(context.Context, string, string) error             { return nil }
