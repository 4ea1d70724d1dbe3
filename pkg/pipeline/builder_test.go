package pipeline

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-scaffold/pkg/contextloader"
)

func stageSummaries(cfg Config) []string {
	out := make([]string, 0, len(cfg.Stages))
	for _, stage := range cfg.Stages {
		out = append(out, stage.Identifier+":"+string(stage.Type))
	}
	return out
}

func TestSynthesizeStageOrder(t *testing.T) {
	cfg := Synthesize(Request{
		Name:         "my service",
		CI:           true,
		Environments: []string{"staging", "prod"},
	})

	want := []string{"build:CI", "deploy_staging:Deployment", "deploy_prod:Deployment"}
	if diff := cmp.Diff(want, stageSummaries(cfg)); diff != "" {
		t.Errorf("stage order mismatch (-want +got):\n%s", diff)
	}
	if cfg.Identifier != "my_service" {
		t.Errorf("pipeline identifier = %q", cfg.Identifier)
	}
	if cfg.OrgID != "default" {
		t.Errorf("OrgID = %q, want default fallback", cfg.OrgID)
	}
	if cfg.ProjectID != "my_service" {
		t.Errorf("ProjectID = %q, want derived fallback", cfg.ProjectID)
	}
}

func TestSynthesizeWithoutCI(t *testing.T) {
	cfg := Synthesize(Request{
		Name:         "svc",
		CI:           false,
		Environments: []string{"staging", "prod"},
	})

	want := []string{"deploy_staging:Deployment", "deploy_prod:Deployment"}
	if diff := cmp.Diff(want, stageSummaries(cfg)); diff != "" {
		t.Errorf("stage order mismatch (-want +got):\n%s", diff)
	}
}

func TestSynthesizeProductionApproval(t *testing.T) {
	cfg := Synthesize(Request{Name: "svc", Environments: []string{"dev", "prod", "prod-eu"}})

	hasApproval := func(stage StageConfig) bool {
		for _, step := range stage.Steps {
			if step.Type == StepApproval {
				return true
			}
		}
		return false
	}

	for _, stage := range cfg.Stages {
		switch stage.EnvironmentRef {
		case "dev":
			if hasApproval(stage) {
				t.Error("dev stage gained an approval step")
			}
		case "prod", "prod-eu":
			if !hasApproval(stage) {
				t.Errorf("%s stage missing approval step", stage.EnvironmentRef)
			}
			if stage.Steps[0].Type != StepApproval {
				t.Errorf("%s approval must precede deploy", stage.EnvironmentRef)
			}
		}
		if len(stage.RollbackSteps) != 1 || stage.RollbackSteps[0].Type != StepRollingRollback {
			t.Errorf("%s rollback steps = %+v", stage.EnvironmentRef, stage.RollbackSteps)
		}
	}
}

func TestSynthesizeTestCommand(t *testing.T) {
	tests := []struct {
		language string
		want     string
	}{
		{"go", "go test ./..."},
		{"javascript", "npm test"},
		{"python", "pytest"},
		{"rust", "cargo test"},
		{"java", "mvn test"},
		{"cobol", "make test"},
	}
	for _, tc := range tests {
		cfg := Synthesize(Request{
			Name: "svc",
			CI:   true,
			Analysis: &contextloader.Analysis{
				ProjectType: tc.language,
				Language:    tc.language,
			},
		})
		spec := cfg.Stages[0].Steps[0].Spec
		got, _ := spec.Get("command")
		if got != tc.want {
			t.Errorf("language %s: command = %v, want %q", tc.language, got, tc.want)
		}
	}

	cfg := Synthesize(Request{Name: "svc", CI: true})
	if got, _ := cfg.Stages[0].Steps[0].Spec.Get("command"); got != "make test" {
		t.Errorf("nil analysis: command = %v", got)
	}
}

func TestDocumentShape(t *testing.T) {
	cfg := Synthesize(Request{
		Name:         "svc",
		OrgID:        "platform",
		ProjectID:    "payments",
		CI:           true,
		Environments: []string{"staging"},
	})

	doc := Document(cfg)
	rootValue, ok := doc.Get("pipeline")
	if !ok {
		t.Fatal("document missing pipeline root")
	}
	root := rootValue.(*Map)

	wantKeys := []string{"name", "identifier", "orgIdentifier", "projectIdentifier", "stages"}
	if diff := cmp.Diff(wantKeys, root.Keys()); diff != "" {
		t.Errorf("root key order mismatch (-want +got):\n%s", diff)
	}

	stagesValue, _ := root.Get("stages")
	stages := stagesValue.([]any)
	if len(stages) != 2 {
		t.Fatalf("document has %d stages, want 2", len(stages))
	}

	deployWrapper := stages[1].(*Map)
	stageValue, _ := deployWrapper.Get("stage")
	stage := stageValue.(*Map)
	specValue, _ := stage.Get("spec")
	spec := specValue.(*Map)

	if v, _ := spec.Get("deploymentType"); v != "Kubernetes" {
		t.Errorf("deploymentType = %v", v)
	}
	envValue, _ := spec.Get("environment")
	if ref, _ := envValue.(*Map).Get("environmentRef"); ref != "staging" {
		t.Errorf("environmentRef = %v", ref)
	}
	execValue, _ := spec.Get("execution")
	if _, ok := execValue.(*Map).Get("rollbackSteps"); !ok {
		t.Error("deployment execution missing rollbackSteps")
	}
}
