package scaffold_test

import (
	"path/filepath"
	"testing"

	scaffold "github.com/goliatone/go-scaffold"
	"github.com/goliatone/go-scaffold/pkg/testsupport"
)

func TestGenerate(t *testing.T) {
	dir := testsupport.TemplateDir(t, "name: quickstart\n", map[string]string{
		"hello.txt.hbs": "hello {{name}}",
	})
	out := t.TempDir()

	result := scaffold.Generate(testsupport.Context(), scaffold.Spec{
		Name:       "demo",
		Source:     scaffold.SourceFromDir(dir),
		OutputPath: out,
	})
	if !result.Success {
		t.Fatalf("generate failed: %s", result.Error)
	}

	got := testsupport.ReadFile(t, filepath.Join(out, "hello.txt"))
	if got != "hello demo\n" {
		t.Errorf("hello.txt = %q", got)
	}
}
