package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aymerick/raymond"
	"github.com/google/uuid"
	"github.com/iancoleman/strcase"
	"gopkg.in/yaml.v3"
)

// errSkipFile is the distinguished skip-file signal. The skipFile helper
// panics with it; raymond converts helper panics carrying an error into the
// Exec error, and the processor translates it into Rendering{Skipped: true}
// instead of surfacing a failure.
var errSkipFile = errors.New("engine: skip file")

// builtinHelperNames lists helper names raymond registers globally. Variable
// extraction must not report them as template variables.
var builtinHelperNames = []string{"if", "unless", "each", "with", "lookup", "log", "equal"}

// defaultHelpers returns the fixed standard helper set. The map is rebuilt
// per processor so instances never share mutable state.
func defaultHelpers() map[string]any {
	return map[string]any{
		// Case conversion. SafeString keeps raymond from entity-escaping
		// the results; the same applies to every string helper below.
		"upperCase":  func(v any) raymond.SafeString { return raymond.SafeString(strings.ToUpper(raymond.Str(v))) },
		"lowerCase":  func(v any) raymond.SafeString { return raymond.SafeString(strings.ToLower(raymond.Str(v))) },
		"capitalize": capitalize,
		"pascalCase": func(v any) raymond.SafeString { return raymond.SafeString(strcase.ToCamel(raymond.Str(v))) },
		"camelCase":  func(v any) raymond.SafeString { return raymond.SafeString(strcase.ToLowerCamel(raymond.Str(v))) },
		"snakeCase":  func(v any) raymond.SafeString { return raymond.SafeString(strcase.ToSnake(raymond.Str(v))) },
		"kebabCase":  func(v any) raymond.SafeString { return raymond.SafeString(strcase.ToKebab(raymond.Str(v))) },
		"dotCase":    func(v any) raymond.SafeString { return raymond.SafeString(strcase.ToDelimited(raymond.Str(v), '.')) },

		// Date and time. Layouts use Go reference-time syntax.
		"now": func(options *raymond.Options) raymond.SafeString {
			layout := time.RFC3339
			if params := options.Params(); len(params) > 0 {
				layout = raymond.Str(params[0])
			}
			return raymond.SafeString(time.Now().Format(layout))
		},
		"formatDate": formatDate,

		// Comparison and logic. Usable inline or as subexpressions inside #if.
		"eq":  func(a, b any) bool { return raymond.Str(a) == raymond.Str(b) },
		"ne":  func(a, b any) bool { return raymond.Str(a) != raymond.Str(b) },
		"lt":  func(a, b any) bool { return compareNumeric(a, b) < 0 },
		"gt":  func(a, b any) bool { return compareNumeric(a, b) > 0 },
		"and": func(a, b any) bool { return raymond.IsTrue(a) && raymond.IsTrue(b) },
		"or":  func(a, b any) bool { return raymond.IsTrue(a) || raymond.IsTrue(b) },
		"not": func(a any) bool { return !raymond.IsTrue(a) },

		// Arrays.
		"join":     joinHelper,
		"contains": containsHelper,
		"length":   func(v any) int { return len(toSlice(v)) },
		"first":    func(v any) any { return pick(toSlice(v), 0) },
		"last":     func(v any) any { s := toSlice(v); return pick(s, len(s)-1) },

		// Structured-data dump.
		"toYaml": toYamlHelper,

		"uuid": func(options *raymond.Options) raymond.SafeString { return raymond.SafeString(uuid.NewString()) },

		"default": func(v, fallback any) any {
			if raymond.Str(v) == "" {
				return safeValue(fallback)
			}
			return v
		},

		"replace": func(v, old, new any) raymond.SafeString {
			return raymond.SafeString(strings.ReplaceAll(raymond.Str(v), raymond.Str(old), raymond.Str(new)))
		},
		"trim": func(v any) raymond.SafeString { return raymond.SafeString(strings.TrimSpace(raymond.Str(v))) },

		// Harness runtime expressions. Emitted as SafeString so the raw
		// <+...> syntax survives rendering unescaped.
		"input":    func(options *raymond.Options) raymond.SafeString { return "<+input>" },
		"variable": scopedExpression("variables"),
		"secret": func(name any) raymond.SafeString {
			return raymond.SafeString(fmt.Sprintf("<+secrets.getValue(%q)>", raymond.Str(name)))
		},
		"pipeline": scopedExpression("pipeline"),
		"stage":    scopedExpression("stage"),
		"service":  scopedExpression("service"),
		"infra":    scopedExpression("infra"),
		"artifact": scopedExpression("artifact"),
		"manifest": scopedExpression("manifest"),

		// Control flow: abort this output file without failing the batch.
		"skipFile": func(cond any) string {
			if raymond.IsTrue(cond) {
				panic(errSkipFile)
			}
			return ""
		},
	}
}

// scopedExpression builds a helper that emits a Harness expression under the
// given scope, e.g. {{pipeline "name"}} -> <+pipeline.name>.
func scopedExpression(scope string) func(path any) raymond.SafeString {
	return func(path any) raymond.SafeString {
		return raymond.SafeString("<+" + scope + "." + raymond.Str(path) + ">")
	}
}

func capitalize(v any) raymond.SafeString {
	s := raymond.Str(v)
	if s == "" {
		return ""
	}
	return raymond.SafeString(strings.ToUpper(s[:1]) + s[1:])
}

// formatDate parses an RFC3339 value (or passes time.Time through) and
// reformats it with the supplied Go layout.
func formatDate(value, layout any) raymond.SafeString {
	l := raymond.Str(layout)
	if l == "" {
		l = "2006-01-02"
	}
	switch t := value.(type) {
	case time.Time:
		return raymond.SafeString(t.Format(l))
	default:
		parsed, err := time.Parse(time.RFC3339, raymond.Str(value))
		if err != nil {
			return raymond.SafeString(raymond.Str(value))
		}
		return raymond.SafeString(parsed.Format(l))
	}
}

func joinHelper(v, sep any) raymond.SafeString {
	items := toSlice(v)
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, raymond.Str(item))
	}
	return raymond.SafeString(strings.Join(parts, raymond.Str(sep)))
}

func containsHelper(v, needle any) bool {
	want := raymond.Str(needle)
	for _, item := range toSlice(v) {
		if raymond.Str(item) == want {
			return true
		}
	}
	return false
}

func toYamlHelper(v any) raymond.SafeString {
	out, err := yaml.Marshal(v)
	if err != nil {
		return ""
	}
	return raymond.SafeString(strings.TrimRight(string(out), "\n"))
}

func toSlice(v any) []any {
	switch s := v.(type) {
	case nil:
		return nil
	case []any:
		return s
	case []string:
		out := make([]any, len(s))
		for i, item := range s {
			out[i] = item
		}
		return out
	default:
		return []any{v}
	}
}

func pick(s []any, i int) any {
	if i < 0 || i >= len(s) {
		return nil
	}
	return s[i]
}

// compareNumeric compares two values numerically when both parse as floats,
// falling back to lexicographic comparison.
func compareNumeric(a, b any) int {
	as, bs := raymond.Str(a), raymond.Str(b)
	af, aerr := strconv.ParseFloat(as, 64)
	bf, berr := strconv.ParseFloat(bs, 64)
	if aerr == nil && berr == nil {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(as, bs)
}
