package remotecache

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"go.trai.ch/zerr"

	"go.strata.build/strata/internal/core/domain"
	"go.strata.build/strata/internal/core/ports"
)

var _ ports.RemoteCache = (*HTTP)(nil)

// HTTP is a RemoteCache backed by a simple content-addressed HTTP endpoint:
// GET/PUT <baseURL>/<hash>.tar.zst. Any transport error is returned as
// ErrRemoteCacheUnreachable so callers can treat it as a soft failure.
type HTTP struct {
	baseURL string
	client  *http.Client
}

// NewHTTP creates an HTTP remote cache rooted at baseURL.
func NewHTTP(baseURL string, client *http.Client) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{baseURL: baseURL, client: client}
}

func (h *HTTP) objectURL(hash string) string {
	return fmt.Sprintf("%s/%s.tar.zst", h.baseURL, hash)
}

// Has reports whether the remote holds an archive for hash.
func (h *HTTP) Has(ctx context.Context, hash string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, h.objectURL(hash), nil)
	if err != nil {
		return false, zerr.Wrap(err, domain.ErrRemoteCacheUnreachable.Error())
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return false, zerr.Wrap(err, domain.ErrRemoteCacheUnreachable.Error())
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK, nil
}

// Download fetches hash's archive into destDir/<hash>.tar.zst for the local
// ArchiveStore to hydrate from.
func (h *HTTP) Download(ctx context.Context, hash, destDir string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.objectURL(hash), nil)
	if err != nil {
		return zerr.Wrap(err, domain.ErrRemoteCacheUnreachable.Error())
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return zerr.Wrap(err, domain.ErrRemoteCacheUnreachable.Error())
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return zerr.With(domain.ErrRemoteCacheUnreachable, "status", resp.StatusCode)
	}

	out, err := os.Create(filepath.Join(destDir, hash+".tar.zst")) //nolint:gosec // destDir is the local cache root
	if err != nil {
		return zerr.Wrap(err, "create local archive file")
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return zerr.Wrap(err, "write downloaded archive")
	}
	return nil
}

// Upload pushes srcDir/<hash>.tar.zst to the remote.
func (h *HTTP) Upload(ctx context.Context, hash, srcDir string) error {
	f, err := os.Open(filepath.Join(srcDir, hash+".tar.zst")) //nolint:gosec // srcDir is the local cache root
	if err != nil {
		return zerr.Wrap(err, "open local archive file")
	}
	defer func() { _ = f.Close() }()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, h.objectURL(hash), f)
	if err != nil {
		return zerr.Wrap(err, domain.ErrRemoteCacheUnreachable.Error())
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return zerr.Wrap(err, domain.ErrRemoteCacheUnreachable.Error())
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		return zerr.With(domain.ErrRemoteCacheUnreachable, "status", resp.StatusCode)
	}
	return nil
}
