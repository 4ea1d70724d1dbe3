package contextloader

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sirupsen/logrus"
)

// truncationMarker is appended to the file whose content is cut to fit the
// remaining token budget.
const truncationMarker = "\n... [truncated]"

// FileEntry is one sampled source file. Content is empty when the file was
// skipped (binary, oversized, unreadable, or out of budget).
type FileEntry struct {
	Path       string
	Content    string
	Size       int64
	Extension  string
	Tokens     int
	Truncated  bool
	Skipped    bool
	SkipReason string
}

// Stats counts the outcomes of a single pass.
type Stats struct {
	Scanned    int
	Included   int
	Truncated  int
	Skipped    int
	Unreadable int
	TotalBytes int64
}

// Result is the outcome of one Load pass. TotalTokens never exceeds the
// configured MaxContextTokens.
type Result struct {
	BasePath    string
	Files       []FileEntry
	TotalTokens int
	Analysis    *Analysis
	Stats       Stats
}

// Option customises a Loader.
type Option func(*Loader)

// WithLogger attaches a logrus logger; the default discards everything.
func WithLogger(logger *logrus.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.log = logger
		}
	}
}

// Loader samples directories under a token budget and memoizes results per
// base path and variable map. Each Loader owns its cache; construct one per
// consumer rather than sharing process-wide state.
type Loader struct {
	mu    sync.RWMutex
	cache map[string]*Result
	log   *logrus.Logger
}

// New constructs a Loader with an empty cache.
func New(options ...Option) *Loader {
	l := &Loader{
		cache: make(map[string]*Result),
		log:   discardLogger(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(l)
	}
	return l
}

// Load samples basePath under opts. Results are memoized by base path and
// the exact variable map; a cache hit does not re-read disk.
func (l *Loader) Load(basePath string, variables map[string]any, opts Options) (*Result, error) {
	key := cacheKey(basePath, variables)

	l.mu.RLock()
	cached, ok := l.cache[key]
	l.mu.RUnlock()
	if ok {
		l.log.WithField("base", basePath).Debug("contextloader: cache hit")
		return cached, nil
	}

	result, err := l.scan(basePath, opts.withDefaults())
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.cache[key] = result
	l.mu.Unlock()
	return result, nil
}

// ClearCache drops all memoized results.
func (l *Loader) ClearCache() {
	l.mu.Lock()
	l.cache = make(map[string]*Result)
	l.mu.Unlock()
}

func (l *Loader) scan(basePath string, opts Options) (*Result, error) {
	info, err := os.Stat(basePath)
	if err != nil {
		return nil, fmt.Errorf("contextloader: stat base path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("contextloader: base path %s is not a directory", basePath)
	}

	result := &Result{BasePath: basePath}
	pruned := prunableDirs(opts.Exclude)
	budgetSpent := false

	walkErr := filepath.WalkDir(basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(basePath, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if strings.Count(rel, "/")+1 >= opts.MaxDepth {
				return fs.SkipDir
			}
			if _, skip := pruned[d.Name()]; skip {
				return fs.SkipDir
			}
			return nil
		}
		if !matchesAny(opts.Include, rel) || matchesAny(opts.Exclude, rel) {
			return nil
		}

		entry := FileEntry{
			Path:      rel,
			Extension: strings.ToLower(filepath.Ext(rel)),
		}
		if fi, statErr := d.Info(); statErr == nil {
			entry.Size = fi.Size()
		}
		result.Stats.Scanned++
		result.Stats.TotalBytes += entry.Size

		switch {
		case budgetSpent || result.TotalTokens >= opts.MaxContextTokens:
			entry.Skipped = true
			entry.SkipReason = "token budget exhausted"
		case entry.Size > opts.MaxFileSize:
			entry.Skipped = true
			entry.SkipReason = "exceeds max file size"
		case isBinary(entry.Extension):
			entry.Skipped = true
			entry.SkipReason = "binary"
		default:
			content, readErr := os.ReadFile(path)
			if readErr != nil {
				entry.Skipped = true
				entry.SkipReason = "unreadable"
				result.Stats.Unreadable++
				l.log.WithField("file", rel).WithError(readErr).Debug("contextloader: skipping unreadable file")
				break
			}
			tokens := estimateTokens(string(content))
			remaining := opts.MaxContextTokens - result.TotalTokens
			if tokens > remaining {
				entry.Content = truncate(string(content), remaining*charsPerToken)
				entry.Tokens = remaining
				entry.Truncated = true
				result.Stats.Truncated++
				budgetSpent = true
			} else {
				entry.Content = string(content)
				entry.Tokens = tokens
			}
			result.TotalTokens += entry.Tokens
			result.Stats.Included++
		}
		if entry.Skipped {
			result.Stats.Skipped++
		}

		result.Files = append(result.Files, entry)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("contextloader: walk %s: %w", basePath, walkErr)
	}

	result.Analysis = Analyze(basePath)
	l.log.WithFields(logrus.Fields{
		"base":   basePath,
		"files":  result.Stats.Scanned,
		"tokens": result.TotalTokens,
	}).Debug("contextloader: pass complete")
	return result, nil
}

// truncate cuts content to at most limit bytes, preferring the nearest
// preceding line boundary when that boundary lies in the final fifth of the
// cut, and appends the truncation marker.
func truncate(content string, limit int) string {
	if limit <= 0 {
		return truncationMarker
	}
	if limit >= len(content) {
		return content
	}
	cut := content[:limit]
	if nl := strings.LastIndexByte(cut, '\n'); nl > limit*4/5 {
		cut = cut[:nl]
	}
	return cut + truncationMarker
}

func matchesAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func isBinary(ext string) bool {
	_, ok := binaryExtensions[ext]
	return ok
}

// prunableDirs extracts plain directory names from "**/name/**" exclude
// patterns so the walk never descends into trees whose every file the
// pattern would reject anyway.
func prunableDirs(exclude []string) map[string]struct{} {
	out := make(map[string]struct{}, len(exclude))
	for _, pattern := range exclude {
		if !strings.HasPrefix(pattern, "**/") || !strings.HasSuffix(pattern, "/**") {
			continue
		}
		name := strings.TrimSuffix(strings.TrimPrefix(pattern, "**/"), "/**")
		if name != "" && !strings.ContainsAny(name, "*/") {
			out[name] = struct{}{}
		}
	}
	return out
}

// cacheKey derives the memoization key from the base path and the exact
// variable map, canonicalized by sorted key.
func cacheKey(basePath string, variables map[string]any) string {
	keys := make([]string, 0, len(variables))
	for k := range variables {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(basePath)
	for _, k := range keys {
		fmt.Fprintf(&b, "|%s=%v", k, variables[k])
	}
	return b.String()
}

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
