// Package hash implements the content hasher (C1): the task's cache key is
// a SHA-256 digest over a JSON array of ordered fragments: one for the
// command and args, one for the sorted toolchain list, one for the
// environment, then one per input path. Within the input-path fragment, file content is
// digested with the faster xxhash algorithm the teacher's fs.Hasher already
// uses; only the outer manifest hash needs to be cryptographic.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"

	"go.strata.build/strata/internal/adapters/fs"
	"go.strata.build/strata/internal/core/domain"
	"go.strata.build/strata/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher assembles a task's input hash from ordered fragments and finalizes
// with SHA-256, per spec.md's content-addressing contract.
type Hasher struct {
	resolver ports.InputResolver
	files    *fs.Hasher
}

// New creates a Hasher backed by the given input resolver and file digester.
func New(resolver ports.InputResolver, files *fs.Hasher) *Hasher {
	return &Hasher{resolver: resolver, files: files}
}

// ComputeFileHash delegates to the underlying xxhash file digester.
func (h *Hasher) ComputeFileHash(path string) (uint64, error) {
	return h.files.ComputeFileHash(path)
}

// ComputeInputHash builds the ordered fragment array for task, env and root,
// then returns hex(sha256("[" + fragments.join(",") + "]")).
func (h *Hasher) ComputeInputHash(task *domain.Task, env map[string]string, root string) (string, error) {
	fragments, err := h.fragments(task, env, root)
	if err != nil {
		return "", err
	}
	return FinalizeFragments(fragments), nil
}

// FinalizeFragments renders the manifest hash: the literal string
// "[" + fragments.join(",") + "]", SHA-256'd and hex-encoded.
func FinalizeFragments(fragments []string) string {
	joined := "[" + strings.Join(fragments, ",") + "]"
	sum := sha256.Sum256([]byte(joined))
	return hex.EncodeToString(sum[:])
}

func (h *Hasher) fragments(task *domain.Task, env map[string]string, root string) ([]string, error) {
	var fragments []string

	fragments = append(fragments, jsonFragment(map[string]any{
		"command": task.Command,
		"args":    task.Args,
	}))

	toolchains := append([]domain.Id(nil), task.Toolchains...)
	sort.Slice(toolchains, func(i, j int) bool { return toolchains[i] < toolchains[j] })
	fragments = append(fragments, jsonFragment(map[string]any{"toolchains": toolchains}))

	envKeys := make([]string, 0, len(env))
	for k := range env {
		envKeys = append(envKeys, k)
	}
	sort.Strings(envKeys)
	envPairs := make([]string, 0, len(envKeys))
	for _, k := range envKeys {
		envPairs = append(envPairs, k+"="+env[k])
	}
	fragments = append(fragments, jsonFragment(map[string]any{"env": envPairs}))

	resolved, err := h.resolver.ResolveInputs(task.Inputs, root)
	if err != nil {
		return nil, zerr.Wrap(err, "resolve inputs for hashing")
	}

	for _, path := range resolved {
		digest, err := h.files.ComputePathHash(path)
		if err != nil {
			return nil, err
		}
		fragments = append(fragments, jsonFragment(map[string]any{"input": path, "digest": digest}))
	}

	return fragments, nil
}

func jsonFragment(v map[string]any) string {
	b, err := json.Marshal(v)
	if err != nil {
		// v is always built from strings/slices we control; Marshal cannot fail.
		panic(err)
	}
	return string(b)
}
