package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	scaffold "github.com/goliatone/go-scaffold"
	"github.com/goliatone/go-scaffold/pkg/orchestrator"
)

type varFlags map[string]any

func (v varFlags) String() string { return "" }

func (v varFlags) Set(raw string) error {
	key, value, ok := strings.Cut(raw, "=")
	if !ok {
		return fmt.Errorf("expected key=value, got %q", raw)
	}
	v[key] = value
	return nil
}

func main() {
	template := flag.String("template", "", "template directory")
	output := flag.String("output", ".", "output directory")
	name := flag.String("name", "", "project name")
	format := flag.String("format", "", "template format (default: auto-detect)")
	envs := flag.String("env", "", "comma-separated deployment environments")
	dryRun := flag.Bool("dry-run", false, "resolve the template without writing files")
	withPipeline := flag.Bool("pipeline", false, "synthesize a Harness pipeline document")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	vars := varFlags{}
	flag.Var(vars, "var", "template variable as key=value (repeatable)")
	flag.Parse()

	if *template == "" {
		log.Fatal("a template directory is required, pass -template")
	}
	if *name == "" {
		log.Fatal("a project name is required, pass -name")
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	gen := scaffold.New(orchestrator.WithLogger(logger))
	gen.On(func(event orchestrator.Event) {
		if event.Type == orchestrator.EventFileGenerated && event.File != nil {
			fmt.Printf("  create %s\n", event.File.Path)
		}
	})

	spec := scaffold.Spec{
		Name:       *name,
		Source:     scaffold.SourceFromDir(*template),
		OutputPath: *output,
		Variables:  vars,
		Format:     scaffold.Format(*format),
		DryRun:     *dryRun,
		Pipeline:   *withPipeline,
	}
	if *envs != "" {
		for _, env := range strings.Split(*envs, ",") {
			if env = strings.TrimSpace(env); env != "" {
				spec.Environments = append(spec.Environments, env)
			}
		}
	}

	result := gen.Scaffold(context.Background(), spec)
	for _, warning := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}
	if !result.Success {
		log.Fatalf("scaffold failed: %s", result.Error)
	}

	fmt.Printf("Generated %d files in %s (%s)\n", len(result.Files), result.OutputPath, result.Duration.Round(time.Millisecond))
	if result.HarnessResources != nil {
		fmt.Printf("Pipeline document: %s\n", result.HarnessResources.PipelineFile)
	}
}
