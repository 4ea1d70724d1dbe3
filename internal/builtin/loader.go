// Package builtin implements the native template format: a directory holding
// a template.yaml metadata file and a files/ tree whose file names and
// bodies are both rendered as templates.
package builtin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-scaffold/pkg/engine"
	"github.com/goliatone/go-scaffold/pkg/templates"
)

const (
	metadataFile = "template.yaml"
	filesDir     = "files"
)

// Option customises the loader.
type Option func(*Loader)

// WithEngine injects a template processor; the default is a processor with
// the standard helper set.
func WithEngine(proc *engine.Processor) Option {
	return func(l *Loader) {
		if proc != nil {
			l.engine = proc
		}
	}
}

// WithFS supplies the fs.FS that SourceKindFS sources resolve against.
func WithFS(fsys fs.FS) Option {
	return func(l *Loader) {
		l.fs = fsys
	}
}

// WithLogger attaches a logrus logger; the default discards everything.
func WithLogger(logger *logrus.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.log = logger
		}
	}
}

// Loader satisfies templates.Loader for the builtin format.
type Loader struct {
	engine *engine.Processor
	fs     fs.FS
	log    *logrus.Logger
}

var _ templates.Loader = (*Loader)(nil)

// New constructs a Loader, defaulting the engine when none is injected.
func New(options ...Option) *Loader {
	l := &Loader{log: discardLogger()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(l)
	}
	if l.engine == nil {
		l.engine = engine.New()
	}
	return l
}

// Format reports the builtin format tag.
func (l *Loader) Format() templates.Format {
	return templates.FormatBuiltin
}

// LoadMetadata parses the template.yaml at the root of the template source.
func (l *Loader) LoadMetadata(ctx context.Context, source templates.Source) (templates.Info, error) {
	if err := ctx.Err(); err != nil {
		return templates.Info{}, err
	}
	root, err := l.resolveRoot(source)
	if err != nil {
		return templates.Info{}, err
	}

	data, err := fs.ReadFile(root, metadataFile)
	if err != nil {
		return templates.Info{}, fmt.Errorf("builtin: read %s: %w", metadataFile, err)
	}
	var info templates.Info
	if err := yaml.Unmarshal(data, &info); err != nil {
		return templates.Info{}, fmt.Errorf("builtin: parse %s: %w", metadataFile, err)
	}
	if info.Name == "" {
		info.Name = path.Base(source.Location())
	}
	return info, nil
}

// Generate renders every file under files/ into outputPath in lexical walk
// order. File names and bodies are both templates; a skipFile signal inside
// a body withholds that one file without failing the batch. Rendered .yaml
// and .yml outputs go through the structure-preserving YAML round trip.
func (l *Loader) Generate(ctx context.Context, source templates.Source, outputPath string, variables map[string]any) ([]templates.GeneratedFile, error) {
	root, err := l.resolveRoot(source)
	if err != nil {
		return nil, err
	}
	renderCtx := engine.NewContext(variables)

	var generated []templates.GeneratedFile
	walkErr := fs.WalkDir(root, filesDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("builtin: walk template files: %w", err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}

		rel := strings.TrimPrefix(p, filesDir+"/")
		outRel, err := l.engine.RenderFilename(rel, renderCtx)
		if err != nil {
			return fmt.Errorf("builtin: render filename %s: %w", rel, err)
		}

		data, err := fs.ReadFile(root, p)
		if err != nil {
			return fmt.Errorf("builtin: read %s: %w", p, err)
		}

		rendering, err := l.renderBody(outRel, string(data), renderCtx)
		if err != nil {
			return fmt.Errorf("builtin: render %s: %w", rel, err)
		}
		if rendering.Skipped {
			l.log.WithField("file", outRel).Debug("builtin: file skipped by template")
			generated = append(generated, templates.GeneratedFile{Path: outRel, Skipped: true})
			return nil
		}

		target := filepath.Join(outputPath, filepath.FromSlash(outRel))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("builtin: create output dir for %s: %w", outRel, err)
		}
		if err := os.WriteFile(target, []byte(rendering.Text), 0o644); err != nil {
			return fmt.Errorf("builtin: write %s: %w", outRel, err)
		}

		generated = append(generated, templates.GeneratedFile{Path: outRel, Content: rendering.Text})
		return nil
	})
	if walkErr != nil {
		return generated, walkErr
	}
	return generated, nil
}

func (l *Loader) renderBody(outRel, body string, renderCtx *engine.Context) (engine.Rendering, error) {
	switch strings.ToLower(path.Ext(outRel)) {
	case ".yaml", ".yml":
		return l.engine.RenderYAML(body, renderCtx)
	default:
		return l.engine.Render(body, renderCtx)
	}
}

func (l *Loader) resolveRoot(source templates.Source) (fs.FS, error) {
	if source == nil {
		return nil, errors.New("builtin: source is nil")
	}
	switch source.Kind() {
	case templates.SourceKindDir:
		info, err := os.Stat(source.Location())
		if err != nil {
			return nil, fmt.Errorf("builtin: template source: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("builtin: template source %s is not a directory", source.Location())
		}
		return os.DirFS(source.Location()), nil
	case templates.SourceKindFS:
		if l.fs == nil {
			return nil, errors.New("builtin: fs support disabled, no fs.FS configured")
		}
		if source.Location() == "" || source.Location() == "." {
			return l.fs, nil
		}
		sub, err := fs.Sub(l.fs, source.Location())
		if err != nil {
			return nil, fmt.Errorf("builtin: resolve fs source: %w", err)
		}
		return sub, nil
	default:
		return nil, fmt.Errorf("builtin: unsupported source kind %q", source.Kind())
	}
}

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
