package cas

import (
	"path/filepath"

	"go.strata.build/strata/internal/core/ports"
)

var _ ports.ManifestStore = (*ManifestStore)(nil)

// ManifestStore persists hash manifests under .strata/cache/hashes.
type ManifestStore struct {
	dir string
}

// NewManifestStore creates a ManifestStore rooted at cacheRoot/hashes.
func NewManifestStore(cacheRoot string) (*ManifestStore, error) {
	dir, err := ensureDir(filepath.Join(cacheRoot, "hashes"))
	if err != nil {
		return nil, err
	}
	return &ManifestStore{dir: dir}, nil
}

// Get retrieves the manifest stored for hash, if present.
func (s *ManifestStore) Get(hash string) (*ports.HashManifest, bool, error) {
	var m ports.HashManifest
	ok, err := readJSON(keyFilename(s.dir, hash), &m)
	if err != nil || !ok {
		return nil, false, err
	}
	return &m, true, nil
}

// Put stores a manifest, keyed by its own Hash field.
func (s *ManifestStore) Put(manifest ports.HashManifest) error {
	return writeJSON(keyFilename(s.dir, manifest.Hash), manifest)
}
