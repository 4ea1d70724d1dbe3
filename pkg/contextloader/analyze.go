package contextloader

import (
	"os"
	"path/filepath"
	"strings"
)

// Analysis is a heuristic, best-effort classification of a file tree. It is
// advisory input to pipeline synthesis and never gates generation.
type Analysis struct {
	ProjectType string
	Language    string
	Frameworks  []string
	Patterns    []string
}

// marker ties an ecosystem manifest file to a project type and the
// dependency names worth reporting as frameworks. Order matters: the first
// marker found decides the project type.
type marker struct {
	file        string
	projectType string
	language    string
	frameworks  []framework
}

// framework pairs a substring to look for in a manifest with the framework
// name to report. Slices keep detection order deterministic.
type framework struct {
	needle string
	name   string
}

var pythonFrameworks = []framework{
	{"django", "django"},
	{"flask", "flask"},
	{"fastapi", "fastapi"},
}

var javaFrameworks = []framework{
	{"spring-boot", "spring"},
	{"quarkus", "quarkus"},
}

var markerTable = []marker{
	{"package.json", "node", "javascript", []framework{
		{`"react"`, "react"},
		{`"vue"`, "vue"},
		{`"express"`, "express"},
		{`"next"`, "nextjs"},
		{`"typescript"`, "typescript"},
	}},
	{"go.mod", "go", "go", []framework{
		{"gin-gonic/gin", "gin"},
		{"labstack/echo", "echo"},
		{"gofiber/fiber", "fiber"},
		{"spf13/cobra", "cobra"},
		{"grpc", "grpc"},
	}},
	{"Cargo.toml", "rust", "rust", []framework{
		{"actix-web", "actix"},
		{"rocket", "rocket"},
		{"axum", "axum"},
	}},
	{"pyproject.toml", "python", "python", pythonFrameworks},
	{"requirements.txt", "python", "python", pythonFrameworks},
	{"pom.xml", "java", "java", javaFrameworks},
	{"build.gradle", "java", "java", javaFrameworks},
}

// structuralPatterns maps directory names to reported layout patterns.
var structuralPatterns = []struct {
	dir     string
	pattern string
}{
	{"cmd", "go-cmd-layout"},
	{"internal", "go-internal-layout"},
	{"src", "src-layout"},
	{"tests", "test-suite"},
	{"test", "test-suite"},
	{".github", "github-workflows"},
	{"Dockerfile", "containerized"},
}

// Analyze inspects basePath for well-known marker files and returns a
// best-effort classification. It never fails: when nothing matches the
// project type is "unknown".
func Analyze(basePath string) *Analysis {
	analysis := &Analysis{ProjectType: "unknown"}

	for _, m := range markerTable {
		data, err := os.ReadFile(filepath.Join(basePath, m.file))
		if err != nil {
			continue
		}
		if analysis.ProjectType == "unknown" {
			analysis.ProjectType = m.projectType
			analysis.Language = m.language
		}
		content := string(data)
		for _, fw := range m.frameworks {
			if strings.Contains(content, fw.needle) && !containsString(analysis.Frameworks, fw.name) {
				analysis.Frameworks = append(analysis.Frameworks, fw.name)
			}
		}
	}

	for _, sp := range structuralPatterns {
		if _, err := os.Stat(filepath.Join(basePath, sp.dir)); err == nil {
			if !containsString(analysis.Patterns, sp.pattern) {
				analysis.Patterns = append(analysis.Patterns, sp.pattern)
			}
		}
	}
	return analysis
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
