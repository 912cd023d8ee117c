package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher(maxAge time.Duration) *Fetcher {
	client := retryablehttp.NewClient()
	client.Logger = nil
	client.RetryMax = 0
	return NewFetcher(Options{MaxAge: maxAge, Client: client})
}

func TestEnsureCached_DownloadsWhenMissing(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte("a,b\n1,2\n"))
	}))
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "cache")
	f := newTestFetcher(7 * 24 * time.Hour)

	path, err := f.EnsureCached(context.Background(), srv.URL, dir, "data.csv")

	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(body))
}

func TestEnsureCached_FreshFileSkipsNetwork(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte("fresh"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("cached"), 0o644))

	// Just inside the freshness window: the boundary is inclusive.
	maxAge := 7 * 24 * time.Hour
	mtime := time.Now().Add(-maxAge).Add(time.Minute)
	require.NoError(t, os.Chtimes(path, mtime, mtime))

	f := newTestFetcher(maxAge)
	got, err := f.EnsureCached(context.Background(), srv.URL, dir, "data.csv")

	require.NoError(t, err)
	assert.Equal(t, path, got)
	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))

	body, _ := os.ReadFile(path)
	assert.Equal(t, "cached", string(body))
}

func TestEnsureCached_StaleFileIsRefreshed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("new content"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("old content"), 0o644))

	maxAge := 7 * 24 * time.Hour
	mtime := time.Now().Add(-maxAge).Add(-time.Minute)
	require.NoError(t, os.Chtimes(path, mtime, mtime))

	f := newTestFetcher(maxAge)
	_, err := f.EnsureCached(context.Background(), srv.URL, dir, "data.csv")

	require.NoError(t, err)
	body, _ := os.ReadFile(path)
	assert.Equal(t, "new content", string(body))
}

func TestEnsureCached_FailedDownloadKeepsOldCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("still valid"), 0o644))

	old := time.Now().Add(-30 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))

	f := newTestFetcher(7 * 24 * time.Hour)
	_, err := f.EnsureCached(context.Background(), srv.URL, dir, "data.csv")

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)

	body, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "still valid", string(body))

	// no stray temp files either
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestEnsureCached_UnreachableHostIsFetchError(t *testing.T) {
	f := newTestFetcher(time.Hour)

	_, err := f.EnsureCached(context.Background(), "http://127.0.0.1:1/none", t.TempDir(), "data.csv")

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
}
