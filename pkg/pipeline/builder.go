package pipeline

import (
	"strings"

	"github.com/goliatone/go-scaffold/pkg/contextloader"
)

// Request describes what to synthesize. Analysis is advisory: it shapes
// default commands but never decides whether synthesis succeeds.
type Request struct {
	Name         string
	OrgID        string
	ProjectID    string
	CI           bool
	Environments []string
	Analysis     *contextloader.Analysis
}

// Synthesize builds a pipeline with one build stage (when CI is requested)
// followed by one deployment stage per environment, in the order the
// environments were requested.
func Synthesize(req Request) Config {
	cfg := Config{
		Name:       req.Name,
		Identifier: SanitizeIdentifier(req.Name),
		OrgID:      req.OrgID,
		ProjectID:  req.ProjectID,
	}
	if cfg.OrgID == "" {
		cfg.OrgID = "default"
	}
	if cfg.ProjectID == "" {
		cfg.ProjectID = SanitizeIdentifier(req.Name)
	}

	if req.CI {
		cfg.Stages = append(cfg.Stages, buildStage(req.Analysis))
	}
	for _, env := range req.Environments {
		cfg.Stages = append(cfg.Stages, deployStage(env))
	}
	return cfg
}

func buildStage(analysis *contextloader.Analysis) StageConfig {
	return StageConfig{
		Name:       "Build",
		Identifier: SanitizeIdentifier("Build"),
		Type:       StageCI,
		Steps: []StepConfig{
			{
				Name:       "Run Tests",
				Identifier: SanitizeIdentifier("Run Tests"),
				Type:       StepRun,
				Timeout:    "10m",
				Spec: NewMap().
					Set("shell", "Sh").
					Set("command", testCommand(analysis)),
			},
			{
				Name:       "Build and Push Image",
				Identifier: SanitizeIdentifier("Build and Push Image"),
				Type:       StepBuildAndPush,
				Timeout:    "15m",
				Spec: NewMap().
					Set("connectorRef", "<+input>").
					Set("repo", "<+input>").
					Set("tags", []any{"<+pipeline.sequenceId>", "latest"}),
			},
		},
	}
}

func deployStage(env string) StageConfig {
	name := "Deploy " + env
	stage := StageConfig{
		Name:           name,
		Identifier:     SanitizeIdentifier(name),
		Type:           StageDeployment,
		EnvironmentRef: env,
		RollbackSteps: []StepConfig{
			{
				Name:       "Rollback Rollout",
				Identifier: SanitizeIdentifier("Rollback Rollout"),
				Type:       StepRollingRollback,
				Timeout:    "10m",
				Spec:       NewMap(),
			},
		},
	}

	if isProduction(env) {
		stage.Steps = append(stage.Steps, StepConfig{
			Name:       "Approve Deployment",
			Identifier: SanitizeIdentifier("Approve Deployment"),
			Type:       StepApproval,
			Timeout:    "1d",
			Spec: NewMap().
				Set("approvalMessage", "Approve deployment to "+env).
				Set("includePipelineExecutionHistory", true).
				Set("approvers", NewMap().
					Set("userGroups", []any{"<+input>"}).
					Set("minimumCount", 1)),
		})
	}

	stage.Steps = append(stage.Steps, StepConfig{
		Name:       "Rolling Deploy",
		Identifier: SanitizeIdentifier("Rolling Deploy"),
		Type:       StepRollingDeploy,
		Timeout:    "10m",
		Spec: NewMap().
			Set("skipDryRun", false).
			Set("pruningEnabled", false),
	})
	return stage
}

// testCommand picks a default test invocation from the detected language;
// "make test" when nothing was detected.
func testCommand(analysis *contextloader.Analysis) string {
	if analysis == nil {
		return "make test"
	}
	switch analysis.Language {
	case "go":
		return "go test ./..."
	case "javascript":
		return "npm test"
	case "python":
		return "pytest"
	case "rust":
		return "cargo test"
	case "java":
		return "mvn test"
	default:
		return "make test"
	}
}

func isProduction(env string) bool {
	lower := strings.ToLower(env)
	return lower == "prod" || lower == "production" || strings.HasPrefix(lower, "prod-")
}

// Document lowers a Config into the ordered document tree the serializer
// emits. Key order here is the key order in the file.
func Document(cfg Config) *Map {
	stages := make([]any, 0, len(cfg.Stages))
	for _, stage := range cfg.Stages {
		stages = append(stages, NewMap().Set("stage", stageDocument(stage)))
	}

	return NewMap().Set("pipeline", NewMap().
		Set("name", cfg.Name).
		Set("identifier", cfg.Identifier).
		Set("orgIdentifier", cfg.OrgID).
		Set("projectIdentifier", cfg.ProjectID).
		Set("stages", stages))
}

func stageDocument(stage StageConfig) *Map {
	doc := NewMap().
		Set("name", stage.Name).
		Set("identifier", stage.Identifier).
		Set("type", string(stage.Type))

	spec := NewMap()
	switch stage.Type {
	case StageCI:
		spec.Set("cloneCodebase", true)
		spec.Set("execution", NewMap().Set("steps", stepDocuments(stage.Steps)))
	case StageDeployment:
		spec.Set("deploymentType", "Kubernetes")
		spec.Set("environment", NewMap().
			Set("environmentRef", stage.EnvironmentRef).
			Set("deployToAll", false))
		execution := NewMap().Set("steps", stepDocuments(stage.Steps))
		if len(stage.RollbackSteps) > 0 {
			execution.Set("rollbackSteps", stepDocuments(stage.RollbackSteps))
		}
		spec.Set("execution", execution)
	default:
		spec.Set("execution", NewMap().Set("steps", stepDocuments(stage.Steps)))
	}
	doc.Set("spec", spec)
	return doc
}

func stepDocuments(steps []StepConfig) []any {
	out := make([]any, 0, len(steps))
	for _, step := range steps {
		doc := NewMap().
			Set("name", step.Name).
			Set("identifier", step.Identifier).
			Set("type", string(step.Type))
		if step.Timeout != "" {
			doc.Set("timeout", step.Timeout)
		}
		if step.Spec != nil {
			doc.Set("spec", step.Spec)
		}
		out = append(out, NewMap().Set("step", doc))
	}
	return out
}
