// Package scaffold is the façade over the generation pipeline. Most
// consumers construct an orchestrator here and call Scaffold; the
// subpackages stay available for callers that need individual pieces such
// as the template engine or the context loader.
package scaffold

import (
	"context"

	"github.com/goliatone/go-scaffold/pkg/orchestrator"
	"github.com/goliatone/go-scaffold/pkg/templates"
)

// Re-exported request and result types so simple consumers only import the
// root package.
type (
	Spec          = orchestrator.Spec
	Result        = orchestrator.Result
	Source        = templates.Source
	Format        = templates.Format
	Option        = orchestrator.Option
	TemplateInfo  = templates.Info
	Variable      = templates.Variable
	GeneratedFile = templates.GeneratedFile
)

const (
	FormatBuiltin      = templates.FormatBuiltin
	FormatCopier       = templates.FormatCopier
	FormatCookiecutter = templates.FormatCookiecutter
)

// SourceFromDir locates a template rooted at a filesystem directory.
func SourceFromDir(path string) Source {
	return templates.SourceFromDir(path)
}

// New constructs an orchestrator with the default loader registry.
func New(options ...Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// Generate runs one scaffold with a throwaway orchestrator. Callers issuing
// repeated runs should hold on to New() instead to keep the metadata cache
// warm.
func Generate(ctx context.Context, spec Spec, options ...Option) Result {
	return New(options...).Scaffold(ctx, spec)
}
