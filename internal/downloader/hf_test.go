package downloader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte("GGUF-bytes"))
	}))
	defer srv.Close()
	t.Setenv("HUGGINGFACE_TOKEN", "hf_test")

	dir := t.TempDir()
	path, err := Fetch(context.Background(), srv.Client(), srv.URL+"/repo/resolve/main/tiny.gguf", dir, "")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "tiny.gguf"), path)
	assert.Equal(t, "Bearer hf_test", auth)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "GGUF-bytes", string(data))
}

func TestFetchKeepsExistingFile(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "m.gguf"), []byte("old"), 0o644))

	path, err := Fetch(context.Background(), srv.Client(), srv.URL+"/x", dir, "m.gguf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "m.gguf"), path)
	assert.Zero(t, calls)
}

func TestFetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gated", http.StatusUnauthorized)
	}))
	defer srv.Close()

	dir := t.TempDir()
	_, err := Fetch(context.Background(), srv.Client(), srv.URL+"/m.gguf", dir, "")
	assert.ErrorContains(t, err, "401")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "a failed pull leaves nothing behind")
}

func TestFetchNameIgnoresQuery(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte("GGUF"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	path, err := Fetch(context.Background(), srv.Client(), srv.URL+"/repo/resolve/main/tiny.gguf?download=true#frag", dir, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "tiny.gguf"), path)
	assert.Equal(t, "download=true", gotQuery)
}

func TestFetchURLWithoutFileName(t *testing.T) {
	dir := t.TempDir()
	_, err := Fetch(context.Background(), nil, "https://huggingface.co/?download=true", dir, "")
	assert.ErrorContains(t, err, "no file name")

	_, err = Fetch(context.Background(), nil, "://bad", dir, "")
	assert.Error(t, err)
}
