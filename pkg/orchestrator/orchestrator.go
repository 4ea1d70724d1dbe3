package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-scaffold/internal/builtin"
	"github.com/goliatone/go-scaffold/pkg/contextloader"
	"github.com/goliatone/go-scaffold/pkg/engine"
	"github.com/goliatone/go-scaffold/pkg/pipeline"
	"github.com/goliatone/go-scaffold/pkg/templates"
)

const (
	summaryFilename  = "GENERATED.md"
	harnessDir       = ".harness"
	pipelineFilename = "pipeline.yaml"
)

// formatMarkers is the ordered detection table: the first marker file found
// at the template source decides the format.
var formatMarkers = []struct {
	file   string
	format templates.Format
}{
	{"template.yaml", templates.FormatBuiltin},
	{"copier.yml", templates.FormatCopier},
	{"copier.yaml", templates.FormatCopier},
	{"cookiecutter.json", templates.FormatCookiecutter},
}

// Spec is one scaffold request. Created by the caller, immutable, consumed
// once.
type Spec struct {
	// Name is the target project name, available to templates as "name".
	Name string

	// Source locates the template.
	Source templates.Source

	// OutputPath is the directory generated files are written under.
	OutputPath string

	// Variables are caller-supplied values; they win over declared defaults.
	Variables map[string]any

	// Format pins the template format, bypassing detection.
	Format templates.Format

	// Description is free text carried into the companion summary.
	Description string

	// DryRun resolves metadata and variables without writing anything.
	DryRun bool

	// Pipeline requests Harness pipeline synthesis; it only takes effect
	// together with a non-empty Environments list.
	Pipeline bool

	// Environments are deployment targets, one deployment stage each, in
	// the order given.
	Environments []string
}

// HarnessResources describes the delivery-automation documents a scaffold
// run produced.
type HarnessResources struct {
	PipelineFile string
	Pipeline     pipeline.Config
}

// Result is the structured outcome of one scaffold call. A failed run still
// returns a well-formed Result with Success false, a human-readable Error,
// and whatever files were written before the failure.
type Result struct {
	Success          bool
	OutputPath       string
	Files            []templates.GeneratedFile
	Warnings         []string
	Error            string
	HarnessResources *HarnessResources
	Duration         time.Duration
}

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithRegistry injects a pre-populated loader registry.
func WithRegistry(registry *Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithLoader registers an additional format loader during construction.
func WithLoader(loader templates.Loader) Option {
	return func(o *Orchestrator) {
		o.extraLoaders = append(o.extraLoaders, loader)
	}
}

// WithEngine injects a custom template processor.
func WithEngine(proc *engine.Processor) Option {
	return func(o *Orchestrator) {
		o.engine = proc
	}
}

// WithContextLoader injects a custom context loader.
func WithContextLoader(loader *contextloader.Loader) Option {
	return func(o *Orchestrator) {
		o.contextLoader = loader
	}
}

// WithFS supplies an fs.FS that SourceKindFS template sources resolve
// against, for both format detection and the builtin loader.
func WithFS(fsys fs.FS) Option {
	return func(o *Orchestrator) {
		o.fs = fsys
	}
}

// WithLogger attaches a logrus logger; the default discards everything.
func WithLogger(logger *logrus.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.log = logger
		}
	}
}

// WithCI toggles the build stage in synthesized pipelines. Enabled by
// default.
func WithCI(enabled bool) Option {
	return func(o *Orchestrator) {
		o.ci = enabled
	}
}

// WithHarnessScope sets the org and project identifiers stamped into
// synthesized pipeline documents.
func WithHarnessScope(orgID, projectID string) Option {
	return func(o *Orchestrator) {
		o.orgID = orgID
		o.projectID = projectID
	}
}

// Orchestrator owns the format registry and caches and drives scaffold
// runs. Construct one per consumer; instances share no process-wide state.
type Orchestrator struct {
	registry      *Registry
	engine        *engine.Processor
	contextLoader *contextloader.Loader
	fs            fs.FS
	log           *logrus.Logger
	ci            bool
	orgID         string
	projectID     string
	listeners     []Listener
	extraLoaders  []templates.Loader

	cacheMu       sync.RWMutex
	metadataCache map[string]templates.Info
}

// New constructs an Orchestrator applying any provided options. Missing
// dependencies are initialised with the built-in implementations, and the
// builtin format loader is registered unless the injected registry already
// claims the tag.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		ci:            true,
		log:           discardLogger(),
		metadataCache: make(map[string]templates.Info),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

func (o *Orchestrator) applyDefaults() {
	if o.engine == nil {
		o.engine = engine.New()
	}
	if o.contextLoader == nil {
		o.contextLoader = contextloader.New(contextloader.WithLogger(o.log))
	}
	if o.registry == nil {
		o.registry = NewRegistry()
	}
	if !o.registry.Has(templates.FormatBuiltin) {
		o.registry.MustRegister(builtin.New(
			builtin.WithEngine(o.engine),
			builtin.WithFS(o.fs),
			builtin.WithLogger(o.log),
		))
	}
	for _, loader := range o.extraLoaders {
		if loader == nil {
			continue
		}
		o.registry.MustRegister(loader)
	}
	o.extraLoaders = nil
}

// Register adds a format loader after construction.
func (o *Orchestrator) Register(loader templates.Loader) error {
	return o.registry.Register(loader)
}

// ClearCache drops the metadata cache and the context loader's memoized
// passes.
func (o *Orchestrator) ClearCache() {
	o.cacheMu.Lock()
	o.metadataCache = make(map[string]templates.Info)
	o.cacheMu.Unlock()
	o.contextLoader.ClearCache()
}

// DetectFormat inspects the template source for the ordered marker table
// and returns the first match, defaulting to the builtin format.
func (o *Orchestrator) DetectFormat(source templates.Source) templates.Format {
	if source == nil {
		return templates.FormatBuiltin
	}
	for _, m := range formatMarkers {
		if o.sourceHasFile(source, m.file) {
			return m.format
		}
	}
	return templates.FormatBuiltin
}

func (o *Orchestrator) sourceHasFile(source templates.Source, name string) bool {
	switch source.Kind() {
	case templates.SourceKindDir:
		_, err := os.Stat(filepath.Join(source.Location(), name))
		return err == nil
	case templates.SourceKindFS:
		if o.fs == nil {
			return false
		}
		probe := name
		if loc := source.Location(); loc != "" && loc != "." {
			probe = loc + "/" + name
		}
		_, err := fs.Stat(o.fs, probe)
		return err == nil
	default:
		return false
	}
}

// Scaffold runs one generation end to end. It never returns an error:
// failures are converted into Result{Success: false} and surfaced through
// the scaffoldFailed event with the original error attached.
func (o *Orchestrator) Scaffold(ctx context.Context, spec Spec) Result {
	start := time.Now()
	o.emit(Event{Type: EventScaffoldStarted, Spec: spec})
	o.log.WithFields(logrus.Fields{
		"name":   spec.Name,
		"output": spec.OutputPath,
	}).Info("orchestrator: scaffold started")

	result, err := o.scaffold(ctx, spec)
	result.OutputPath = spec.OutputPath
	result.Duration = time.Since(start)

	if err != nil {
		result.Success = false
		result.Error = err.Error()
		o.log.WithError(err).Error("orchestrator: scaffold failed")
		o.emit(Event{Type: EventScaffoldFailed, Spec: spec, Err: err})
		return result
	}

	result.Success = true
	o.log.WithFields(logrus.Fields{
		"files":    len(result.Files),
		"duration": result.Duration,
	}).Info("orchestrator: scaffold completed")
	o.emit(Event{Type: EventScaffoldCompleted, Spec: spec, Result: &result})
	return result
}

func (o *Orchestrator) scaffold(ctx context.Context, spec Spec) (Result, error) {
	var result Result

	if err := ctx.Err(); err != nil {
		return result, err
	}
	if spec.Source == nil {
		return result, errors.New("orchestrator: template source is required")
	}
	if spec.OutputPath == "" {
		return result, errors.New("orchestrator: output path is required")
	}
	if spec.Name == "" {
		return result, errors.New("orchestrator: project name is required")
	}

	format := spec.Format
	if format == "" {
		format = o.DetectFormat(spec.Source)
	}
	loader, err := o.registry.Get(format)
	if err != nil {
		return result, err
	}

	info, err := o.loadMetadata(ctx, loader, spec.Source)
	if err != nil {
		return result, fmt.Errorf("orchestrator: load template metadata: %w", err)
	}

	variables := mergeVariables(info.Variables, spec.Variables)
	variables["name"] = spec.Name

	if spec.DryRun {
		result.Warnings = append(result.Warnings, "dry run: no files written")
		return result, nil
	}

	if err := os.MkdirAll(spec.OutputPath, 0o755); err != nil {
		return result, fmt.Errorf("orchestrator: create output directory: %w", err)
	}

	files, err := loader.Generate(ctx, spec.Source, spec.OutputPath, variables)
	result.Files = files
	if err != nil {
		return result, fmt.Errorf("orchestrator: generate: %w", err)
	}
	for i := range files {
		if files[i].Skipped {
			continue
		}
		o.emit(Event{Type: EventFileGenerated, Spec: spec, File: &files[i]})
	}

	summary, err := o.writeSummary(spec, info)
	if err != nil {
		return result, err
	}
	result.Files = append(result.Files, summary)
	o.emit(Event{Type: EventFileGenerated, Spec: spec, File: &summary})

	if spec.Pipeline && len(spec.Environments) > 0 {
		resources, file, warnings, err := o.synthesizePipeline(spec)
		result.Warnings = append(result.Warnings, warnings...)
		if err != nil {
			return result, err
		}
		result.HarnessResources = resources
		result.Files = append(result.Files, file)
		o.emit(Event{Type: EventFileGenerated, Spec: spec, File: &file})
	}

	return result, nil
}

func (o *Orchestrator) loadMetadata(ctx context.Context, loader templates.Loader, source templates.Source) (templates.Info, error) {
	key := string(source.Kind()) + ":" + source.Location()

	o.cacheMu.RLock()
	cached, ok := o.metadataCache[key]
	o.cacheMu.RUnlock()
	if ok {
		return cached, nil
	}

	info, err := loader.LoadMetadata(ctx, source)
	if err != nil {
		return templates.Info{}, err
	}

	o.cacheMu.Lock()
	o.metadataCache[key] = info
	o.cacheMu.Unlock()
	return info, nil
}

// mergeVariables starts from each declared variable's default and overlays
// the caller's values. Variables with neither a default nor a caller value
// stay absent rather than defaulting to an empty string.
func mergeVariables(declared []templates.Variable, supplied map[string]any) map[string]any {
	out := make(map[string]any, len(declared)+len(supplied))
	for _, v := range declared {
		if v.Default != nil {
			out[v.Name] = v.Default
		}
	}
	for k, v := range supplied {
		out[k] = v
	}
	return out
}

const summaryTemplate = `# {{projectName}}

Generated from template **{{templateName}}**{{#if templateVersion}} (version {{templateVersion}}){{/if}} on {{timestamp}}.

{{#if description}}{{description}}{{/if}}

## Template variables
{{#each declaredVariables}}
- ` + "`{{this.name}}`" + ` ({{this.type}}){{#if this.description}}: {{this.description}}{{/if}}
{{/each}}
`

func (o *Orchestrator) writeSummary(spec Spec, info templates.Info) (templates.GeneratedFile, error) {
	declared := make([]map[string]any, 0, len(info.Variables))
	for _, v := range info.Variables {
		declared = append(declared, map[string]any{
			"name":        v.Name,
			"type":        string(v.Type),
			"description": v.Description,
		})
	}

	summaryCtx := engine.NewContext(map[string]any{
		"name":              spec.Name,
		"templateName":      info.Name,
		"templateVersion":   info.Version,
		"description":       firstNonEmpty(spec.Description, info.Description),
		"declaredVariables": declared,
	})

	rendering, err := o.engine.Render(summaryTemplate, summaryCtx)
	if err != nil {
		return templates.GeneratedFile{}, fmt.Errorf("orchestrator: render summary: %w", err)
	}

	target := filepath.Join(spec.OutputPath, summaryFilename)
	if err := os.WriteFile(target, []byte(rendering.Text), 0o644); err != nil {
		return templates.GeneratedFile{}, fmt.Errorf("orchestrator: write summary: %w", err)
	}
	return templates.GeneratedFile{Path: summaryFilename, Content: rendering.Text}, nil
}

func (o *Orchestrator) synthesizePipeline(spec Spec) (*HarnessResources, templates.GeneratedFile, []string, error) {
	var warnings []string

	// The analysis is advisory: a failed context pass downgrades to a
	// warning and synthesis proceeds with defaults.
	var analysis *contextloader.Analysis
	loaded, err := o.contextLoader.Load(spec.OutputPath, spec.Variables, contextloader.Options{})
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("project analysis unavailable: %v", err))
	} else {
		analysis = loaded.Analysis
	}

	cfg := pipeline.Synthesize(pipeline.Request{
		Name:         spec.Name,
		OrgID:        o.orgID,
		ProjectID:    o.projectID,
		CI:           o.ci,
		Environments: spec.Environments,
		Analysis:     analysis,
	})

	data, err := pipeline.Marshal(pipeline.Document(cfg))
	if err != nil {
		return nil, templates.GeneratedFile{}, warnings, fmt.Errorf("orchestrator: serialize pipeline: %w", err)
	}

	dir := filepath.Join(spec.OutputPath, harnessDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, templates.GeneratedFile{}, warnings, fmt.Errorf("orchestrator: create %s: %w", harnessDir, err)
	}
	target := filepath.Join(dir, pipelineFilename)
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return nil, templates.GeneratedFile{}, warnings, fmt.Errorf("orchestrator: write pipeline document: %w", err)
	}

	rel := harnessDir + "/" + pipelineFilename
	resources := &HarnessResources{PipelineFile: rel, Pipeline: cfg}
	file := templates.GeneratedFile{Path: rel, Content: string(data)}
	return resources, file, warnings, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
