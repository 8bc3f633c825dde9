// Package cas implements the on-disk cache (C2): a hash-manifest store and
// a task-state store, both file-per-key JSON keyed by a sha256 of the key,
// plus a tar+zstd output archive store and the .strata/cache/CACHEDIR.TAG
// marker. Layout and file-per-key strategy are carried over from the
// teacher's build-info store.
package cas

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.strata.build/strata/internal/core/domain"
	"go.trai.ch/zerr"

	"crypto/sha256"
)

const (
	dirPerm  = 0o750
	filePerm = 0o644
)

func keyFilename(dir, key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(dir, hex.EncodeToString(sum[:])+".json")
}

func readJSON(path string, v any) (bool, error) {
	//nolint:gosec // path is built from a trusted directory and hashed key
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, zerr.Wrap(err, "read cache entry")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, zerr.Wrap(err, "unmarshal cache entry")
	}
	return true, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "marshal cache entry")
	}
	//nolint:gosec // path is built from a trusted directory and hashed key
	if err := os.WriteFile(path, data, filePerm); err != nil {
		return zerr.Wrap(err, "write cache entry")
	}
	return nil
}

func ensureDir(path string) (string, error) {
	clean := filepath.Clean(path)
	if err := os.MkdirAll(clean, dirPerm); err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrCacheUnavailable.Error()), "dir", clean)
	}
	return clean, nil
}
