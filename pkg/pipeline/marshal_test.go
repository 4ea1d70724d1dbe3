package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-scaffold/pkg/testsupport"
)

// The quoting rule exists so Harness runtime expressions survive emission
// untouched. Triggers: empty string, colon, comment marker, embedded
// newline, or the "<+" prefix. Everything else stays bare.
func TestFormatScalarQuoting(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"bare word", "latest", "latest"},
		{"bare phrase", "Run Tests", "Run Tests"},
		{"empty string", "", `""`},
		{"contains colon", "host: value", `"host: value"`},
		{"contains comment marker", "tag#1", `"tag#1"`},
		{"embedded newline", "a\nb", `"a\nb"`},
		{"expression prefix", "<+input>", `"<+input>"`},
		{"expression mid-string", "image-<+pipeline.sequenceId>", "image-<+pipeline.sequenceId>"},
		{"nil", nil, "null"},
		{"bool", true, "true"},
		{"int", 42, "42"},
		{"float", 1.5, "1.5"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := formatScalar(tc.value)
			if err != nil {
				t.Fatalf("formatScalar: %v", err)
			}
			if got != tc.want {
				t.Errorf("formatScalar(%v) = %s, want %s", tc.value, got, tc.want)
			}
		})
	}
}

func TestFormatScalarUnsupported(t *testing.T) {
	if _, err := formatScalar(struct{}{}); err == nil {
		t.Fatal("expected error for unsupported scalar type")
	}
}

func TestMarshalPreservesKeyOrder(t *testing.T) {
	doc := NewMap().
		Set("zebra", "z").
		Set("alpha", "a").
		Set("middle", NewMap().
			Set("y", 1).
			Set("b", 2))

	data, err := Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := "zebra: z\nalpha: a\nmiddle:\n  y: 1\n  b: 2\n"
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestMarshalSequences(t *testing.T) {
	doc := NewMap().
		Set("tags", []any{"<+pipeline.sequenceId>", "latest"}).
		Set("steps", []any{
			NewMap().Set("step", NewMap().
				Set("name", "Run Tests").
				Set("type", "Run")),
		}).
		Set("empty", []any{}).
		Set("none", NewMap())

	data, err := Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `tags:
  - "<+pipeline.sequenceId>"
  - latest
steps:
  - step:
      name: Run Tests
      type: Run
empty: []
none: {}
`
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestMarshalSynthesizedPipelineGolden(t *testing.T) {
	cfg := Synthesize(Request{
		Name:         "demo api",
		CI:           true,
		Environments: []string{"staging"},
	})

	data, err := Marshal(Document(cfg))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	testsupport.CompareGolden(t, filepath.Join("testdata", "pipeline.yaml"), data)
}

func TestMarshalSynthesizedPipelineParses(t *testing.T) {
	cfg := Synthesize(Request{
		Name:         "demo api",
		CI:           true,
		Environments: []string{"staging", "prod"},
	})

	data, err := Marshal(Document(cfg))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	// The hand-rolled output must remain standard-parseable YAML.
	var parsed map[string]any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("emitted document is not valid yaml: %v\n%s", err, data)
	}

	pipeline := parsed["pipeline"].(map[string]any)
	if pipeline["identifier"] != "demo_api" {
		t.Errorf("identifier = %v", pipeline["identifier"])
	}
	stages := pipeline["stages"].([]any)
	if len(stages) != 3 {
		t.Errorf("parsed %d stages, want 3", len(stages))
	}

	// Expressions survive the round trip byte for byte.
	first := stages[0].(map[string]any)["stage"].(map[string]any)
	spec := first["spec"].(map[string]any)
	execution := spec["execution"].(map[string]any)
	steps := execution["steps"].([]any)
	push := steps[1].(map[string]any)["step"].(map[string]any)
	pushSpec := push["spec"].(map[string]any)
	if pushSpec["connectorRef"] != "<+input>" {
		t.Errorf("connectorRef = %v, want <+input>", pushSpec["connectorRef"])
	}
}
