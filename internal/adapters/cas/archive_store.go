package cas

import (
	"archive/tar"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"go.trai.ch/zerr"

	"go.strata.build/strata/internal/adapters/fs"
	"go.strata.build/strata/internal/core/domain"
	"go.strata.build/strata/internal/core/ports"
)

var _ ports.OutputArchiveStore = (*ArchiveStore)(nil)

// ArchiveStore persists a task's declared outputs as a single zstd-compressed
// tar archive per input hash, under .strata/cache/outputs. Tar framing is
// stdlib (no library in the example pack owns tar specifically); zstd
// compression is github.com/klauspost/compress, the same package the rest
// of the corpus pulls in for fast general-purpose compression.
type ArchiveStore struct {
	dir    string
	walker *fs.Walker
}

// NewArchiveStore creates an ArchiveStore rooted at cacheRoot/outputs.
func NewArchiveStore(cacheRoot string) (*ArchiveStore, error) {
	dir, err := ensureDir(filepath.Join(cacheRoot, "outputs"))
	if err != nil {
		return nil, err
	}
	return &ArchiveStore{dir: dir, walker: fs.NewWalker()}, nil
}

func (s *ArchiveStore) path(hash string) string {
	return filepath.Join(s.dir, hash+".tar.zst")
}

// Has reports whether an archive exists for hash.
func (s *ArchiveStore) Has(hash string) (bool, error) {
	_, err := os.Stat(s.path(hash))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, zerr.With(zerr.Wrap(err, domain.ErrPathStatFailed.Error()), "path", s.path(hash))
}

// Archive tars and compresses every output under root into hash's archive.
func (s *ArchiveStore) Archive(ctx context.Context, hash, root string, outputs []string) error {
	//nolint:gosec // path is constructed from a trusted cache directory and hash
	f, err := os.Create(s.path(hash))
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheUnavailable.Error()), "path", s.path(hash))
	}
	defer f.Close() //nolint:errcheck

	zw, err := zstd.NewWriter(f)
	if err != nil {
		return zerr.Wrap(err, "open zstd writer")
	}
	defer zw.Close() //nolint:errcheck

	tw := tar.NewWriter(zw)
	defer tw.Close() //nolint:errcheck

	for _, output := range outputs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		abs := filepath.Join(root, output)
		if err := s.writeEntry(tw, root, abs); err != nil {
			return err
		}
	}

	return nil
}

func (s *ArchiveStore) writeEntry(tw *tar.Writer, root, abs string) error {
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return zerr.With(zerr.Wrap(err, domain.ErrPathStatFailed.Error()), "path", abs)
	}

	if !info.IsDir() {
		return s.writeFile(tw, root, abs, info)
	}

	for file := range s.walker.WalkFiles(abs, nil) {
		fi, err := os.Stat(file)
		if err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrPathStatFailed.Error()), "path", file)
		}
		if err := s.writeFile(tw, root, file, fi); err != nil {
			return err
		}
	}
	return nil
}

func (s *ArchiveStore) writeFile(tw *tar.Writer, root, abs string, info os.FileInfo) error {
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return zerr.Wrap(err, "compute relative output path")
	}

	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return zerr.Wrap(err, "build tar header")
	}
	hdr.Name = filepath.ToSlash(rel)

	if err := tw.WriteHeader(hdr); err != nil {
		return zerr.Wrap(err, "write tar header")
	}

	//nolint:gosec // path is a resolved output under the project root
	f, err := os.Open(abs)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrFileOpenFailed.Error()), "path", abs)
	}
	defer f.Close() //nolint:errcheck

	if _, err := io.Copy(tw, f); err != nil {
		return zerr.With(zerr.Wrap(err, "write tar entry"), "path", abs)
	}
	return nil
}

// Hydrate extracts hash's archive into root, overwriting existing files.
func (s *ArchiveStore) Hydrate(ctx context.Context, hash, root string) error {
	//nolint:gosec // path is constructed from a trusted cache directory and hash
	f, err := os.Open(s.path(hash))
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrFileOpenFailed.Error()), "path", s.path(hash))
	}
	defer f.Close() //nolint:errcheck

	zr, err := zstd.NewReader(f)
	if err != nil {
		return zerr.Wrap(err, "open zstd reader")
	}
	defer zr.Close()

	tr := tar.NewReader(zr)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return zerr.Wrap(err, "read tar entry")
		}

		dest := filepath.Join(root, hdr.Name)
		rel, err := filepath.Rel(root, dest)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return zerr.With(domain.ErrOutputOutsideProject, "path", hdr.Name)
		}

		if err := os.MkdirAll(filepath.Dir(dest), dirPerm); err != nil {
			return zerr.Wrap(err, "create output directory")
		}
		//nolint:gosec // dest has already been checked to stay within root
		out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode))
		if err != nil {
			return zerr.With(zerr.Wrap(err, "create hydrated output"), "path", dest)
		}
		if _, err := io.Copy(out, tr); err != nil { //nolint:gosec // archive entries are our own prior output
			out.Close() //nolint:errcheck
			return zerr.With(zerr.Wrap(err, "write hydrated output"), "path", dest)
		}
		out.Close() //nolint:errcheck
	}
}
