package engine

import (
	"os"
	"os/user"
	"runtime"
	"time"

	"github.com/aymerick/raymond"
	"github.com/iancoleman/strcase"
)

// Context is the render-time environment. Variables carry caller-supplied
// values (highest precedence), Computed carries values derived at
// construction time, and Environment snapshots the host. A Context is built
// fresh per render call and never mutated after construction.
type Context struct {
	Variables   map[string]any
	Computed    map[string]any
	Environment map[string]any
}

// NewContext builds a Context around the supplied variable map. Computed
// values include the generation timestamp, the current date, and name
// variants derived from a "name" variable when one is present.
func NewContext(variables map[string]any) *Context {
	now := time.Now()
	computed := map[string]any{
		"timestamp": now.Format(time.RFC3339),
		"date":      now.Format("2006-01-02"),
		"year":      now.Year(),
	}
	if name, ok := variables["name"]; ok {
		raw := raymond.Str(name)
		computed["projectName"] = raw
		computed["projectNameKebab"] = strcase.ToKebab(raw)
		computed["projectNamePascal"] = strcase.ToCamel(raw)
		computed["projectNameSnake"] = strcase.ToSnake(raw)
	}

	username := os.Getenv("USER")
	if u, err := user.Current(); err == nil && u.Username != "" {
		username = u.Username
	}
	cwd, _ := os.Getwd()

	return &Context{
		Variables: variables,
		Computed:  computed,
		Environment: map[string]any{
			"cwd":      cwd,
			"user":     username,
			"platform": runtime.GOOS,
			"arch":     runtime.GOARCH,
		},
	}
}

// flatten merges the three maps into the single map templates see.
// Environment is lowest precedence, then Computed, then Variables. String
// values are wrapped in raymond.SafeString on the way in: the engine emits
// code and config files, never HTML, so double-stash interpolation must not
// entity-escape characters like & < > ' ".
func (c *Context) flatten() map[string]any {
	if c == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(c.Variables)+len(c.Computed)+len(c.Environment))
	for k, v := range c.Environment {
		out[k] = safeValue(v)
	}
	for k, v := range c.Computed {
		out[k] = safeValue(v)
	}
	for k, v := range c.Variables {
		out[k] = safeValue(v)
	}
	return out
}

// safeValue marks string values, recursively through maps and slices, as
// exempt from raymond's HTML escaping.
func safeValue(v any) any {
	switch t := v.(type) {
	case raymond.SafeString:
		return t
	case string:
		return raymond.SafeString(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = safeValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = safeValue(val)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = raymond.SafeString(val)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = safeValue(val)
		}
		return out
	default:
		return v
	}
}
