package remotecache_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"go.strata.build/strata/internal/adapters/remotecache"
)

func TestHTTP_UploadDownloadRoundTrip(t *testing.T) {
	store := map[string][]byte{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hash := r.URL.Path
		switch r.Method {
		case http.MethodHead:
			if _, ok := store[hash]; !ok {
				w.WriteHeader(http.StatusNotFound)
			}
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			store[hash] = body
		case http.MethodGet:
			data, ok := store[hash]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_, _ = w.Write(data)
		}
	}))
	defer srv.Close()

	rc := remotecache.NewHTTP(srv.URL, srv.Client())

	srcDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(srcDir, "abc123.tar.zst"), []byte("archive-bytes"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if err := rc.Upload(context.Background(), "abc123", srcDir); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	has, err := rc.Has(context.Background(), "abc123")
	if err != nil || !has {
		t.Fatalf("Has() = %v, %v, want true, nil", has, err)
	}

	destDir := t.TempDir()
	if err := rc.Download(context.Background(), "abc123", destDir); err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	got, err := os.ReadFile(filepath.Join(destDir, "abc123.tar.zst"))
	if err != nil {
		t.Fatalf("read downloaded archive: %v", err)
	}
	if string(got) != "archive-bytes" {
		t.Errorf("downloaded content = %q, want %q", got, "archive-bytes")
	}
}

func TestHTTP_HasFalseOnMiss(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	rc := remotecache.NewHTTP(srv.URL, srv.Client())
	has, err := rc.Has(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Has() error = %v", err)
	}
	if has {
		t.Error("expected miss for unknown hash")
	}
}
