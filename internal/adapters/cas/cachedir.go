package cas

import (
	"os"
	"path/filepath"

	"go.trai.ch/zerr"

	"go.strata.build/strata/internal/core/ports"
)

const cachedirTagContent = "Signature: 8a477f597d28d172789f06886806bc55\n" +
	"# This file marks this directory as a cache directory per the\n" +
	"# CACHEDIR.TAG convention, so backup and sync tools can skip it.\n" +
	"# https://bford.info/cachedir/\n"

// WriteCacheDirTag writes the CACHEDIR.TAG marker into root if not already present.
func WriteCacheDirTag(root string) error {
	path := filepath.Join(root, "CACHEDIR.TAG")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(root, dirPerm); err != nil {
		return zerr.Wrap(err, "create cache root")
	}
	if err := os.WriteFile(path, []byte(cachedirTagContent), filePerm); err != nil {
		return zerr.Wrap(err, "write CACHEDIR.TAG")
	}
	return nil
}

// ModeFromEnv parses the STRATA_CACHE environment variable into a CacheMode,
// defaulting to read-write when unset or unrecognized.
func ModeFromEnv(value string) ports.CacheMode {
	switch ports.CacheMode(value) {
	case ports.CacheModeOff, ports.CacheModeRead, ports.CacheModeReadWrite, ports.CacheModeWrite:
		return ports.CacheMode(value)
	default:
		return ports.CacheModeReadWrite
	}
}
