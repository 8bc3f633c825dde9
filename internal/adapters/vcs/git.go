// Package vcs implements ports.VCS by shelling out to the git binary, the
// only VCS the core's interface contract is specified against (spec.md §6).
package vcs

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"go.trai.ch/zerr"

	"go.strata.build/strata/internal/core/domain"
	"go.strata.build/strata/internal/core/ports"
)

var _ ports.VCS = (*Git)(nil)

// Git is a local-only VCS collaborator backed by the git CLI.
type Git struct{}

// New creates a Git VCS collaborator.
func New() *Git {
	return &Git{}
}

// IsRepository reports whether root is inside a git work tree.
func (g *Git) IsRepository(root string) bool {
	cmd := exec.Command("git", "-C", root, "rev-parse", "--is-inside-work-tree") //nolint:gosec // root is workspace-controlled
	out, err := cmd.Output()
	return err == nil && strings.TrimSpace(string(out)) == "true"
}

// ChangedFiles returns paths changed since base (e.g. a commit-ish or
// branch name), relative to root. An empty base returns every tracked file.
func (g *Git) ChangedFiles(ctx context.Context, root, base string) ([]string, error) {
	args := []string{"-C", root}
	if base == "" {
		args = append(args, "ls-files")
	} else {
		args = append(args, "diff", "--name-only", base)
	}

	cmd := exec.CommandContext(ctx, "git", args...) //nolint:gosec // root/base are workspace-controlled
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrVCSUnavailable.Error()), "stderr", strings.TrimSpace(stderr.String()))
	}

	var files []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}
