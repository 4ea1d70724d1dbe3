package pipeline

import (
	"fmt"
	"strconv"
	"strings"
)

// Marshal serializes an ordered document tree to YAML. This is deliberately
// not yaml.v3: general-purpose emitters re-quote and re-order in ways that
// corrupt Harness runtime expressions. Guarantees:
//
//   - key order is emitted exactly as constructed, never alphabetized;
//   - nesting indents two spaces per level;
//   - string scalars are quoted only when they contain a colon, contain a
//     comment marker (#), contain an embedded newline, or begin with the
//     Harness expression prefix "<+". Everything else is emitted bare.
func Marshal(doc *Map) ([]byte, error) {
	var b strings.Builder
	if err := writeMap(&b, doc, 0); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

func writeMap(b *strings.Builder, m *Map, indent int) error {
	pad := strings.Repeat("  ", indent)
	for _, key := range m.keys {
		value := m.values[key]
		switch v := value.(type) {
		case *Map:
			if v == nil || v.Len() == 0 {
				fmt.Fprintf(b, "%s%s: {}\n", pad, key)
				continue
			}
			fmt.Fprintf(b, "%s%s:\n", pad, key)
			if err := writeMap(b, v, indent+1); err != nil {
				return err
			}
		case []any:
			if len(v) == 0 {
				fmt.Fprintf(b, "%s%s: []\n", pad, key)
				continue
			}
			fmt.Fprintf(b, "%s%s:\n", pad, key)
			if err := writeSequence(b, v, indent+1); err != nil {
				return err
			}
		default:
			scalar, err := formatScalar(value)
			if err != nil {
				return fmt.Errorf("pipeline: key %q: %w", key, err)
			}
			fmt.Fprintf(b, "%s%s: %s\n", pad, key, scalar)
		}
	}
	return nil
}

func writeSequence(b *strings.Builder, items []any, indent int) error {
	pad := strings.Repeat("  ", indent)
	for _, item := range items {
		switch v := item.(type) {
		case *Map:
			var sub strings.Builder
			if err := writeMap(&sub, v, 0); err != nil {
				return err
			}
			writeDashed(b, pad, sub.String())
		case []any:
			var sub strings.Builder
			if err := writeSequence(&sub, v, 0); err != nil {
				return err
			}
			writeDashed(b, pad, sub.String())
		default:
			scalar, err := formatScalar(item)
			if err != nil {
				return err
			}
			fmt.Fprintf(b, "%s- %s\n", pad, scalar)
		}
	}
	return nil
}

// writeDashed prefixes a rendered block with "- " on its first line and
// aligns the remaining lines under it.
func writeDashed(b *strings.Builder, pad, block string) {
	lines := strings.Split(strings.TrimRight(block, "\n"), "\n")
	for i, line := range lines {
		if i == 0 {
			b.WriteString(pad + "- " + line + "\n")
		} else {
			b.WriteString(pad + "  " + line + "\n")
		}
	}
}

func formatScalar(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "null", nil
	case string:
		if needsQuoting(v) {
			return strconv.Quote(v), nil
		}
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported scalar type %T", value)
	}
}

// needsQuoting implements the exact trigger set: colon, comment marker,
// embedded newline, or a leading Harness expression prefix. Empty strings
// are quoted so they survive as strings.
func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	return strings.Contains(s, ":") ||
		strings.Contains(s, "#") ||
		strings.Contains(s, "\n") ||
		strings.HasPrefix(s, "<+")
}
