package contextloader

const (
	defaultMaxDepth         = 10
	defaultMaxFileSize      = 256 * 1024
	defaultMaxContextTokens = 50_000

	// charsPerToken is the fixed characters-per-token estimation ratio.
	charsPerToken = 4
)

// defaultExcludes covers build artifacts, lockfiles, logs, source-control
// metadata, and minified/map files.
var defaultExcludes = []string{
	"**/.git/**",
	"**/.hg/**",
	"**/.svn/**",
	"**/node_modules/**",
	"**/vendor/**",
	"**/dist/**",
	"**/build/**",
	"**/target/**",
	"**/coverage/**",
	"**/*.min.js",
	"**/*.min.css",
	"**/*.map",
	"**/*.lock",
	"**/package-lock.json",
	"**/yarn.lock",
	"**/*.log",
	"**/.DS_Store",
}

// binaryExtensions classifies files that are recorded without content.
var binaryExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".ico": {}, ".webp": {},
	".pdf": {}, ".zip": {}, ".tar": {}, ".gz": {}, ".bz2": {}, ".7z": {},
	".exe": {}, ".bin": {}, ".so": {}, ".dylib": {}, ".dll": {}, ".a": {},
	".woff": {}, ".woff2": {}, ".ttf": {}, ".eot": {}, ".otf": {},
	".mp3": {}, ".mp4": {}, ".mov": {}, ".avi": {},
	".jar": {}, ".class": {}, ".pyc": {}, ".wasm": {},
}

// Options bounds a single Load pass. The zero value is safe; every field
// falls back to a default.
type Options struct {
	// MaxDepth limits traversal depth below the base path.
	MaxDepth int

	// Include and Exclude are doublestar glob patterns matched against the
	// slash-separated path relative to the base.
	Include []string
	Exclude []string

	// MaxFileSize is the per-file byte cap.
	MaxFileSize int64

	// MaxContextTokens is the global token ceiling for the pass.
	MaxContextTokens int
}

func (o Options) withDefaults() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = defaultMaxDepth
	}
	if len(o.Include) == 0 {
		o.Include = []string{"**/*"}
	}
	if o.Exclude == nil {
		o.Exclude = defaultExcludes
	}
	if o.MaxFileSize <= 0 {
		o.MaxFileSize = defaultMaxFileSize
	}
	if o.MaxContextTokens <= 0 {
		o.MaxContextTokens = defaultMaxContextTokens
	}
	return o
}

// estimateTokens applies the fixed characters-per-token ratio, rounding up.
func estimateTokens(s string) int {
	return (len(s) + charsPerToken - 1) / charsPerToken
}
