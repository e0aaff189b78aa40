// ABOUTME: Repository of composition services the timeline accepts
// ABOUTME: Built-in MLT transition services, extendable from configuration

package timeline

import (
	"slices"
	"sync"
)

// TransitionInfo describes a composition service.
type TransitionInfo struct {
	ID    string // MLT service name
	Name  string
	Audio bool
}

var builtinTransitions = []TransitionInfo{
	{ID: "luma", Name: "Dissolve"},
	{ID: "wipe", Name: "Wipe"},
	{ID: "composite", Name: "Composite"},
	{ID: "qtblend", Name: "Composite and transform"},
	{ID: "affine", Name: "Transform"},
	{ID: "frei0r.cairoblend", Name: "Cairo blend"},
	{ID: "frei0r.cairoaffineblend", Name: "Cairo affine blend"},
	{ID: "movit.overlay", Name: "Overlay (GPU)"},
	{ID: "mix", Name: "Audio mix", Audio: true},
}

// TransitionRepository maps service names to known compositions.
type TransitionRepository struct {
	mu       sync.RWMutex
	services map[string]TransitionInfo
}

// NewTransitionRepository creates a repository with the built-in services plus extra ones.
func NewTransitionRepository(extra ...string) *TransitionRepository {
	r := &TransitionRepository{services: make(map[string]TransitionInfo)}

	for _, info := range builtinTransitions {
		r.services[info.ID] = info
	}

	for _, id := range extra {
		if _, ok := r.services[id]; !ok && id != "" {
			r.services[id] = TransitionInfo{ID: id, Name: id}
		}
	}

	return r
}

// Register adds or replaces a service.
func (r *TransitionRepository) Register(info TransitionInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[info.ID] = info
}

// Exists reports whether id is a known service.
func (r *TransitionRepository) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.services[id]
	return ok
}

// Get returns the service description.
func (r *TransitionRepository) Get(id string) (TransitionInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.services[id]
	return info, ok
}

// IDs returns the known service names, sorted.
func (r *TransitionRepository) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.services))
	for id := range r.services {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	return ids
}
