package engine

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/aymerick/raymond"
	"gopkg.in/yaml.v3"
)

// templateExtensions are the filename suffixes RenderFilename strips (one,
// at most) before rendering the remaining name.
var templateExtensions = []string{".hbs", ".tpl", ".tmpl"}

// Rendering is the explicit three-way outcome of a render call: rendered
// text, an intentional skip raised by the skipFile helper, or (via the error
// return) a failure. Skipped renderings carry no text.
type Rendering struct {
	Text    string
	Skipped bool
}

// ValidationResult reports whether a template parses, with the parser
// message when it does not.
type ValidationResult struct {
	Valid bool
	Error string
}

// Option customises a Processor before first use.
type Option func(*Processor)

// WithHelper registers an additional named helper alongside the standard set.
// Registering an existing name replaces it.
func WithHelper(name string, fn any) Option {
	return func(p *Processor) {
		name = strings.TrimSpace(name)
		if name == "" || fn == nil {
			return
		}
		p.helpers[name] = fn
	}
}

// WithPartial registers a named partial available to every template via
// {{> name}}.
func WithPartial(name, source string) Option {
	return func(p *Processor) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		p.partials[name] = source
	}
}

// Processor compiles and renders templates. Helpers and partials are held
// per instance and registered onto each parsed template, so multiple
// processors coexist in one process without shared registries.
type Processor struct {
	helpers  map[string]any
	partials map[string]string
}

// New constructs a Processor carrying the standard helper set plus any
// helpers and partials supplied through options.
func New(options ...Option) *Processor {
	p := &Processor{
		helpers:  defaultHelpers(),
		partials: map[string]string{},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(p)
	}
	return p
}

// Render compiles templateText and executes it against ctx. The returned
// text always ends in exactly one trailing newline. A skipFile signal inside
// the template yields Rendering{Skipped: true} and a nil error.
func (p *Processor) Render(templateText string, ctx *Context) (Rendering, error) {
	out, err := p.exec(templateText, ctx)
	if err != nil {
		if errors.Is(err, errSkipFile) {
			return Rendering{Skipped: true}, nil
		}
		return Rendering{}, err
	}
	return Rendering{Text: normalizeTrailingNewline(out)}, nil
}

// RenderFile reads a template from disk and renders it.
func (p *Processor) RenderFile(path string, ctx *Context) (Rendering, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rendering{}, fmt.Errorf("engine: read template %s: %w", path, err)
	}
	return p.Render(string(data), ctx)
}

// RenderFilename strips one trailing template extension (if present),
// renders the remaining name as a template, and trims trailing whitespace
// from the result.
func (p *Processor) RenderFilename(templateFilename string, ctx *Context) (string, error) {
	name := templateFilename
	for _, ext := range templateExtensions {
		if strings.HasSuffix(name, ext) {
			name = strings.TrimSuffix(name, ext)
			break
		}
	}
	out, err := p.exec(name, ctx)
	if err != nil {
		// The skip signal only makes sense inside a file body; a filename
		// template raising it is a template bug, reported as a plain error
		// so the sentinel never reaches callers.
		if errors.Is(err, errSkipFile) {
			return "", fmt.Errorf("engine: render filename %s: skip signal is not valid in a filename", templateFilename)
		}
		return "", err
	}
	return strings.TrimRight(out, " \t\r\n"), nil
}

// RenderYAML renders templateText and re-emits the result through a YAML
// round trip, guaranteeing the caller receives syntactically valid YAML even
// when the raw template carried inconsistent indentation. Re-emission may
// change formatting but never data content.
func (p *Processor) RenderYAML(templateText string, ctx *Context) (Rendering, error) {
	rendered, err := p.Render(templateText, ctx)
	if err != nil || rendered.Skipped {
		return rendered, err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(rendered.Text), &doc); err != nil {
		return Rendering{}, fmt.Errorf("engine: rendered output is not valid yaml: %w", err)
	}

	var buf strings.Builder
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return Rendering{}, fmt.Errorf("engine: re-emit yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return Rendering{}, fmt.Errorf("engine: re-emit yaml: %w", err)
	}
	return Rendering{Text: normalizeTrailingNewline(buf.String())}, nil
}

// Validate parses templateText without executing it.
func (p *Processor) Validate(templateText string) ValidationResult {
	if _, err := raymond.Parse(templateText); err != nil {
		return ValidationResult{Valid: false, Error: err.Error()}
	}
	return ValidationResult{Valid: true}
}

var interpolationPattern = regexp.MustCompile(`\{\{\{?\s*([^{}]+?)\s*\}?\}\}`)

// ExtractVariables scans templateText for interpolation sites and returns
// the sorted set of distinct top-level names referenced. Block and partial
// control tokens are skipped, a path's first segment is reported, and names
// matching a registered (or built-in) helper are excluded.
func (p *Processor) ExtractVariables(templateText string) []string {
	helperNames := make(map[string]struct{}, len(p.helpers)+len(builtinHelperNames))
	for name := range p.helpers {
		helperNames[name] = struct{}{}
	}
	for _, name := range builtinHelperNames {
		helperNames[name] = struct{}{}
	}

	seen := map[string]struct{}{}
	for _, match := range interpolationPattern.FindAllStringSubmatch(templateText, -1) {
		content := strings.TrimSpace(match[1])
		if content == "" || strings.ContainsAny(content[:1], "#/!>^&") || content == "else" {
			continue
		}

		fields := strings.Fields(content)
		token := strings.TrimLeft(fields[0], "(")
		if token == "" || token == "this" || strings.HasPrefix(token, "@") || isLiteral(token) {
			continue
		}

		name := token
		if i := strings.IndexAny(name, ".["); i >= 0 {
			name = name[:i]
		}
		if _, helper := helperNames[name]; helper {
			continue
		}
		seen[name] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// exec parses, wires helpers and partials, and executes. The skipFile helper
// panics with errSkipFile; raymond surfaces helper panics carrying an error
// as the Exec error, and the recover below covers any path where the panic
// escapes instead.
func (p *Processor) exec(templateText string, ctx *Context) (out string, err error) {
	tpl, parseErr := raymond.Parse(templateText)
	if parseErr != nil {
		return "", fmt.Errorf("engine: parse template: %w", parseErr)
	}
	tpl.RegisterHelpers(p.helpers)
	for name, source := range p.partials {
		tpl.RegisterPartial(name, source)
	}

	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok && errors.Is(e, errSkipFile) {
				err = errSkipFile
				return
			}
			panic(r)
		}
	}()

	out, err = tpl.Exec(ctx.flatten())
	if err != nil && !errors.Is(err, errSkipFile) {
		return "", fmt.Errorf("engine: execute template: %w", err)
	}
	return out, err
}

// isLiteral reports whether token is a quoted string, number, or boolean
// rather than a variable reference.
func isLiteral(token string) bool {
	if token == "true" || token == "false" || token == "null" {
		return true
	}
	if strings.HasPrefix(token, `"`) || strings.HasPrefix(token, "'") {
		return true
	}
	first := token[0]
	return first >= '0' && first <= '9'
}

// normalizeTrailingNewline guarantees the rendered string ends in exactly
// one trailing line break regardless of trailing whitespace in the source.
func normalizeTrailingNewline(s string) string {
	return strings.TrimRight(s, "\r\n") + "\n"
}
