package contextloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAnalyzeGoProject(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"go.mod": "module example.com/svc\n\nrequire (\n\tgithub.com/spf13/cobra v1.8.0\n\tgoogle.golang.org/grpc v1.60.0\n)\n",
	})
	if err := os.MkdirAll(filepath.Join(dir, "cmd"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "internal"), 0o755); err != nil {
		t.Fatal(err)
	}

	analysis := Analyze(dir)
	if analysis.ProjectType != "go" || analysis.Language != "go" {
		t.Errorf("classification = %s/%s", analysis.ProjectType, analysis.Language)
	}
	if diff := cmp.Diff([]string{"cobra", "grpc"}, analysis.Frameworks); diff != "" {
		t.Errorf("frameworks mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"go-cmd-layout", "go-internal-layout"}, analysis.Patterns); diff != "" {
		t.Errorf("patterns mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeNodeProject(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"package.json": `{"dependencies": {"react": "^18", "typescript": "^5"}}`,
		"Dockerfile":   "FROM node:20",
	})

	analysis := Analyze(dir)
	if analysis.ProjectType != "node" || analysis.Language != "javascript" {
		t.Errorf("classification = %s/%s", analysis.ProjectType, analysis.Language)
	}
	if diff := cmp.Diff([]string{"react", "typescript"}, analysis.Frameworks); diff != "" {
		t.Errorf("frameworks mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"containerized"}, analysis.Patterns); diff != "" {
		t.Errorf("patterns mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeFirstMarkerWins(t *testing.T) {
	dir := t.TempDir()
	// Both manifests present: the marker table is ordered, package.json
	// decides the project type, go.mod still contributes frameworks.
	writeFiles(t, dir, map[string]string{
		"package.json": `{"dependencies": {"express": "^4"}}`,
		"go.mod":       "module x\n\nrequire github.com/gin-gonic/gin v1.9.0\n",
	})

	analysis := Analyze(dir)
	if analysis.ProjectType != "node" {
		t.Errorf("ProjectType = %s, want node", analysis.ProjectType)
	}
	if diff := cmp.Diff([]string{"express", "gin"}, analysis.Frameworks); diff != "" {
		t.Errorf("frameworks mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeUnknown(t *testing.T) {
	analysis := Analyze(t.TempDir())
	if analysis.ProjectType != "unknown" {
		t.Errorf("ProjectType = %s, want unknown", analysis.ProjectType)
	}
	if len(analysis.Frameworks) != 0 || len(analysis.Patterns) != 0 {
		t.Errorf("empty tree reported %+v", analysis)
	}
}
