// Package nix implements a ports.ToolchainPlugin backed by the Nix package
// manager, registered for the "nix" toolchain id. Setup installs a package
// set via `nix build`, grounded on the teacher's Manager.Install; Environment
// resolves the corresponding dev-shell environment via `nix print-dev-env`,
// grounded on the teacher's env_factory.go Adapter.Resolve, generalized from
// a standalone Environment collaborator into one step of ToolchainPlugin.
package nix

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.trai.ch/zerr"

	"go.strata.build/strata/internal/core/domain"
	"go.strata.build/strata/internal/core/ports"
)

const (
	dirPerm  = 0o750
	filePerm = 0o600
)

var _ ports.ToolchainPlugin = (*Plugin)(nil)

// Plugin resolves and installs package sets with Nix, and derives their
// environment variables with a cached `nix print-dev-env` call.
type Plugin struct {
	cachePath string
	mu        sync.Mutex
}

// New creates a Plugin whose resolved-environment cache lives at cachePath.
func New(cachePath string) *Plugin {
	return &Plugin{cachePath: cachePath}
}

// Setup resolves versionReq — a space-separated list of nixpkgs attribute
// names, e.g. "nodejs_20 pnpm" — into store paths via `nix build`, and
// returns versionReq itself as the stable identifier for this resolved set
// (the store paths are an implementation detail; the attribute list is what
// makes two SetupToolchain nodes the same cache key).
func (p *Plugin) Setup(ctx context.Context, versionReq string) (string, error) {
	for _, pkg := range splitPackages(versionReq) {
		if _, err := p.install(ctx, pkg); err != nil {
			return "", err
		}
	}
	return versionReq, nil
}

// Environment returns the "KEY=VALUE" environment `nix print-dev-env`
// produces for resolvedVersion's package set, memoized on disk by a hash of
// the package list.
func (p *Plugin) Environment(ctx context.Context, resolvedVersion, dir string) ([]string, error) {
	deps := splitPackages(resolvedVersion)
	sort.Strings(deps)

	hash, err := hashDeps(deps)
	if err != nil {
		return nil, zerr.Wrap(err, "hash nix package set")
	}

	if cached, ok := p.checkCache(hash); ok {
		return toEnvSlice(cached), nil
	}

	vars, err := p.resolveEnvironment(ctx, deps)
	if err != nil {
		return nil, err
	}

	if err := p.updateCache(hash, vars); err != nil {
		return nil, zerr.Wrap(err, "update nix environment cache")
	}

	return toEnvSlice(vars), nil
}

// InstallDeps is a no-op: Nix's own package install already happened in
// Setup, and this toolchain id has no separate project dependency manager.
func (p *Plugin) InstallDeps(context.Context, string, string) error {
	return nil
}

func splitPackages(versionReq string) []string {
	return strings.Fields(versionReq)
}

func toEnvSlice(vars map[string]string) []string {
	out := make([]string, 0, len(vars))
	for k, v := range vars {
		out = append(out, k+"="+v)
	}
	return out
}

// install ensures pkg is available in the Nix store, returning its store path.
func (p *Plugin) install(ctx context.Context, pkg string) (string, error) {
	flakeRef := fmt.Sprintf("nixpkgs#%s", pkg)

	//nolint:gosec // flakeRef is built from a workspace-declared package name
	cmd := exec.CommandContext(ctx, "nix", "build", "--json", "--no-link", flakeRef)
	output, err := cmd.Output()
	if err != nil {
		stderr := ""
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr = strings.TrimSpace(string(exitErr.Stderr))
		}
		nixErr := zerr.With(zerr.Wrap(err, domain.ErrToolchainInstallFailed.Error()), "package", pkg)
		return "", zerr.With(nixErr, "stderr", stderr)
	}

	var results []struct {
		Outputs map[string]string `json:"outputs"`
	}
	if err := json.Unmarshal(output, &results); err != nil {
		return "", zerr.With(zerr.Wrap(err, "parse nix build output"), "package", pkg)
	}
	if len(results) == 0 {
		return "", zerr.With(domain.ErrToolchainInstallFailed, "package", pkg, "reason", "empty build result")
	}
	storePath, ok := results[0].Outputs["out"]
	if !ok || storePath == "" {
		return "", zerr.With(domain.ErrToolchainInstallFailed, "package", pkg, "reason", "no 'out' output")
	}
	return storePath, nil
}

// resolveEnvironment runs `nix print-dev-env` over deps and extracts the
// exported shell variables.
func (p *Plugin) resolveEnvironment(ctx context.Context, deps []string) (map[string]string, error) {
	expr := devShellExpression(deps)

	//nolint:gosec // expr is built from workspace-declared package names
	cmd := exec.CommandContext(ctx, "nix", "print-dev-env",
		"--extra-experimental-features", "nix-command flakes",
		"--json", "--expr", expr)
	output, err := cmd.Output()
	if err != nil {
		stderr := ""
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr = string(exitErr.Stderr)
		}
		return nil, zerr.With(zerr.With(zerr.Wrap(err, domain.ErrToolchainInstallFailed.Error()), "stderr", stderr), "expression", expr)
	}

	var envData struct {
		Variables map[string]struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		} `json:"variables"`
	}
	if err := json.Unmarshal(output, &envData); err != nil {
		return nil, zerr.Wrap(err, "parse nix dev-env output")
	}

	vars := make(map[string]string)
	for k, v := range envData.Variables {
		if v.Type == "exported" {
			vars[k] = v.Value
		}
	}
	return vars, nil
}

// devShellExpression builds a `pkgs.mkShell` expression over deps.
func devShellExpression(deps []string) string {
	if len(deps) == 0 {
		return "let pkgs = import <nixpkgs> {}; in pkgs.mkShell { buildInputs = []; }"
	}
	quoted := make([]string, len(deps))
	for i, d := range deps {
		quoted[i] = d
	}
	return fmt.Sprintf("let pkgs = import <nixpkgs> {}; in pkgs.mkShell { buildInputs = with pkgs; [ %s ]; }", strings.Join(quoted, " "))
}

func hashDeps(deps []string) (string, error) {
	h := sha256.New()
	for _, d := range deps {
		if _, err := h.Write([]byte(d)); err != nil {
			return "", err
		}
		if _, err := h.Write([]byte{0}); err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

type cacheFile map[string]map[string]string

func (p *Plugin) checkCache(hash string) (map[string]string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	f, err := os.Open(p.cachePath) //nolint:gosec // cachePath is operator-configured, not user input
	if err != nil {
		return nil, false
	}
	defer func() { _ = f.Close() }()

	var cache cacheFile
	if err := json.NewDecoder(f).Decode(&cache); err != nil {
		return nil, false
	}
	val, ok := cache[hash]
	return val, ok
}

func (p *Plugin) updateCache(hash string, vars map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	cache := make(cacheFile)
	if content, err := os.ReadFile(p.cachePath); err == nil { //nolint:gosec // cachePath is operator-configured, not user input
		_ = json.Unmarshal(content, &cache)
	}
	cache[hash] = vars

	if err := os.MkdirAll(filepath.Dir(p.cachePath), dirPerm); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p.cachePath, data, filePerm)
}
