// Package testsupport holds helpers shared by the package test suites:
// fixture template trees, golden file management, and context plumbing.
package testsupport

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// Context returns a background context for tests; a single seam in case the
// suites later need deadlines or cancellation wired through.
func Context() context.Context {
	return context.Background()
}

// WriteTree materialises a map of relative paths to file contents under dir,
// creating intermediate directories. Paths use forward slashes.
func WriteTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for rel, content := range files {
		target := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", rel, err)
		}
		if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
}

// TemplateDir writes a builtin-format template tree into a fresh temp
// directory: a template.yaml plus files/ entries. The metadata document goes
// to the root; every other key lands under files/.
func TemplateDir(t *testing.T, metadata string, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	tree := map[string]string{"template.yaml": metadata}
	for rel, content := range files {
		tree["files/"+rel] = content
	}
	WriteTree(t, dir, tree)
	return dir
}

// ReadFile reads a generated file, failing the test on error.
func ReadFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

// WriteGolden writes data to a golden file when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, data []byte) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// CompareGolden diffs got against the golden file at path, refreshing it
// first when UPDATE_GOLDENS is set.
func CompareGolden(t *testing.T, path string, got []byte) {
	t.Helper()

	WriteGolden(t, path, got)
	want, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden %s: %v (run with UPDATE_GOLDENS=1 to create)", path, err)
	}
	if diff := cmp.Diff(string(want), string(got)); diff != "" {
		t.Fatalf("golden mismatch for %s (-want +got):\n%s", path, diff)
	}
}
