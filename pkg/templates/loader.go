package templates

import "context"

// Format tags a template-layout convention with a stable name. The
// orchestrator maps detected formats to registered loaders.
type Format string

const (
	// FormatBuiltin is the native template.yaml + files/ convention.
	FormatBuiltin Format = "builtin"
	// FormatCopier and FormatCookiecutter are recognized by detection so
	// their marker files resolve to a named format, but no loader ships for
	// them; scaffolding one fails until a loader is registered.
	FormatCopier       Format = "copier"
	FormatCookiecutter Format = "cookiecutter"
)

// Loader reads a template's metadata and materializes its files into an
// output directory. New formats register a Loader with the orchestrator
// without modifying it.
type Loader interface {
	// Format reports the tag this loader handles.
	Format() Format

	// LoadMetadata reads the template's declared name, version, and variables.
	LoadMetadata(ctx context.Context, source Source) (Info, error)

	// Generate renders the template into outputPath using the merged variable
	// map and returns a record per emitted (or intentionally skipped) file.
	Generate(ctx context.Context, source Source, outputPath string, variables map[string]any) ([]GeneratedFile, error)
}
