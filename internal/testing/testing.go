// Package testing provides test doubles and helpers shared by the
// workflow-wizard package tests.
package testing

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// FindRepoRoot finds the repository root by looking for go.mod
func FindRepoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find go.mod in any parent directory")
		}
		dir = parent
	}
}

// FixturePath returns the path of a file under testdata/fixtures.
func FixturePath(t *testing.T, name string) string {
	t.Helper()
	root, err := FindRepoRoot()
	if err != nil {
		t.Fatalf("failed to find repo root: %v", err)
	}
	return filepath.Join(root, "testdata", "fixtures", name)
}
