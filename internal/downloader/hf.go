// Package downloader fetches GGUF model files for the llama provider.
package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
)

// DefaultDir is where pulled models land unless the caller picks another.
const DefaultDir = "models"

// Fetch downloads rawURL into dir/name and returns the file path. An existing
// file is left alone. HUGGINGFACE_TOKEN, when set, is sent as a bearer
// token so gated repositories work.
func Fetch(ctx context.Context, client *http.Client, rawURL, dir, name string) (string, error) {
	if name == "" {
		u, err := url.Parse(rawURL)
		if err != nil {
			return "", fmt.Errorf("download: %w", err)
		}
		name = path.Base(u.Path)
		if name == "." || name == "/" {
			return "", fmt.Errorf("download: no file name in %q", rawURL)
		}
	}
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	outPath := filepath.Join(dir, name)
	if _, err := os.Stat(outPath); err == nil {
		// already exists
		return outPath, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	if tk := os.Getenv("HUGGINGFACE_TOKEN"); tk != "" {
		req.Header.Set("Authorization", "Bearer "+tk)
	}
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download failed: %s", resp.Status)
	}

	// Write to a temp file first so an interrupted pull never looks complete.
	tmp, err := os.CreateTemp(dir, name+".part-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("download %s: %w", rawURL, err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), outPath); err != nil {
		return "", err
	}
	return outPath, nil
}
