// ABOUTME: Project bin: registry of source media clips keyed by their bin id
// ABOUTME: Timeline clips reference sources through the bin id only

// Package bin holds the source media a project's timeline clips are cut from.
package bin

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrUnknownClip is returned when a bin id has no registered source.
var ErrUnknownClip = errors.New("unknown bin clip")

// Logger receives debug traces.
type Logger interface {
	Debugf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}

// Source is one media file or generator of the bin.
type Source struct {
	ID       string // Bin id, referenced by timeline clips
	Resource string // File path or generator resource
	Name     string
	Service  string // MLT service (avformat, color, kdenlivetitle, ...)
	Length   int    // Frames, 0 when unbounded
	Audio    bool   // Audio only
}

// Registry maps bin ids to sources. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]Source
	logger  Logger
}

// NewRegistry creates an empty registry. A nil logger discards traces.
func NewRegistry(logger Logger) *Registry {
	if logger == nil {
		logger = nopLogger{}
	}

	return &Registry{
		sources: make(map[string]Source),
		logger:  logger,
	}
}

// Add registers or replaces a source.
func (r *Registry) Add(src Source) error {
	if src.ID == "" {
		return errors.New("bin source without id")
	}

	if src.Length < 0 {
		return fmt.Errorf("bin source %s: negative length %d", src.ID, src.Length)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if src.Name == "" {
		src.Name = src.ID
	}
	r.sources[src.ID] = src

	return nil
}

// Get returns the source registered under id.
func (r *Registry) Get(id string) (Source, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	src, ok := r.sources[id]
	if !ok {
		return Source{}, fmt.Errorf("bin id %q: %w", id, ErrUnknownClip)
	}

	return src, nil
}

// Remove drops a source.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sources, id)
}

// IDs returns the registered bin ids, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.sources))
	for id := range r.sources {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	return ids
}

// Len returns the number of sources.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sources)
}

// setName updates the display name of a registered source.
func (r *Registry) setName(id, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if src, ok := r.sources[id]; ok {
		src.Name = name
		r.sources[id] = src
	}
}
