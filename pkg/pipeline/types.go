package pipeline

// StageType is the fixed vocabulary of stage kinds.
type StageType string

const (
	StageCI         StageType = "CI"
	StageDeployment StageType = "Deployment"
	StageApproval   StageType = "Approval"
	StageCustom     StageType = "Custom"
)

// StepType is the fixed vocabulary of step kinds.
type StepType string

const (
	StepRun             StepType = "Run"
	StepBuildAndPush    StepType = "BuildAndPushDockerRegistry"
	StepShellScript     StepType = "ShellScript"
	StepRollingDeploy   StepType = "K8sRollingDeploy"
	StepRollingRollback StepType = "K8sRollingRollback"
	StepApproval        StepType = "HarnessApproval"
)

// StepConfig is one typed step with a free-form spec map and an optional
// timeout string.
type StepConfig struct {
	Name       string
	Identifier string
	Type       StepType
	Spec       *Map
	Timeout    string
}

// StageConfig is one ordered stage. Deployment stages carry an environment
// reference and rollback steps alongside the forward step list.
type StageConfig struct {
	Name           string
	Identifier     string
	Type           StageType
	EnvironmentRef string
	Steps          []StepConfig
	RollbackSteps  []StepConfig
}

// Config is the nested pipeline description: pipeline, then ordered stages,
// then ordered steps. Built once per scaffold, serialized, not retained.
type Config struct {
	Name       string
	Identifier string
	OrgID      string
	ProjectID  string
	Stages     []StageConfig
}

// Map is an insertion-ordered string-keyed map. The serializer emits keys
// exactly in Set order, never alphabetized.
type Map struct {
	keys   []string
	values map[string]any
}

// NewMap returns an empty ordered map.
func NewMap() *Map {
	return &Map{values: make(map[string]any)}
}

// Set stores value under key, appending the key on first use and keeping its
// original position on overwrite. Returns the map for chaining.
func (m *Map) Set(key string, value any) *Map {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
	return m
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len reports the number of entries.
func (m *Map) Len() int {
	return len(m.keys)
}
