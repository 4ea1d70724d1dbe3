package pipeline

// SanitizeIdentifier derives a stable identifier from a display name:
// lower-cased, runs of non-alphanumeric characters collapsed to a single
// underscore, leading and trailing separators stripped. The function is
// idempotent: sanitizing an already-sanitized string returns it unchanged.
func SanitizeIdentifier(s string) string {
	out := make([]byte, 0, len(s))
	pendingSep := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z':
			c += 'a' - 'A'
			fallthrough
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			if pendingSep && len(out) > 0 {
				out = append(out, '_')
			}
			pendingSep = false
			out = append(out, c)
		default:
			pendingSep = true
		}
	}
	return string(out)
}
