package orchestrator

import (
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-scaffold/pkg/templates"
)

// Registry stores format loaders by their format tag, providing discovery
// and duplication safeguards. New formats register here; the orchestrator
// itself never changes.
type Registry struct {
	mu      sync.RWMutex
	loaders map[templates.Format]templates.Loader
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		loaders: make(map[templates.Format]templates.Loader),
	}
}

// Register adds a loader under its Format(). Duplicate formats return an
// error.
func (r *Registry) Register(loader templates.Loader) error {
	if loader == nil {
		return fmt.Errorf("orchestrator: loader is required")
	}
	format := loader.Format()
	if format == "" {
		return fmt.Errorf("orchestrator: loader format is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.loaders[format]; exists {
		return fmt.Errorf("orchestrator: loader for format %q already registered", format)
	}

	r.loaders[format] = loader
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(loader templates.Loader) {
	if err := r.Register(loader); err != nil {
		panic(err)
	}
}

// Get retrieves the loader registered for a format.
func (r *Registry) Get(format templates.Format) (templates.Loader, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	loader, ok := r.loaders[format]
	if !ok {
		return nil, fmt.Errorf("orchestrator: no loader registered for format %q", format)
	}
	return loader, nil
}

// List returns the sorted registered format tags.
func (r *Registry) List() []templates.Format {
	r.mu.RLock()
	defer r.mu.RUnlock()

	formats := make([]templates.Format, 0, len(r.loaders))
	for format := range r.loaders {
		formats = append(formats, format)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}

// Has reports whether a loader is registered for the format.
func (r *Registry) Has(format templates.Format) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.loaders[format]
	return ok
}
