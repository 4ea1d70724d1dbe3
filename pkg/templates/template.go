package templates

// VariableType is the declared semantic type of a template variable.
type VariableType string

const (
	VariableString VariableType = "string"
	VariableBool   VariableType = "boolean"
	VariableNumber VariableType = "number"
	VariableList   VariableType = "list"
)

// Variable describes one input a template declares. Default is optional; a
// variable without a default and without a caller-supplied value stays absent
// from the render context.
type Variable struct {
	Name        string       `yaml:"name"`
	Type        VariableType `yaml:"type"`
	Default     any          `yaml:"default,omitempty"`
	Prompt      string       `yaml:"prompt,omitempty"`
	Description string       `yaml:"description,omitempty"`
}

// Info is the metadata a loader reports for a located template. Loaded once
// per format detection and cached by the orchestrator.
type Info struct {
	Name        string     `yaml:"name"`
	Version     string     `yaml:"version"`
	Description string     `yaml:"description,omitempty"`
	Variables   []Variable `yaml:"variables,omitempty"`
}

// GeneratedFile records one output the loader produced. Skipped marks files a
// template intentionally withheld (the skip-file helper); such entries carry
// no content and are never written to disk.
type GeneratedFile struct {
	Path    string
	Content string
	Skipped bool
}
