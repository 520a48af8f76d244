package checkout

import (
	"log/slog"
	"sync"
)

// Registry keeps one orchestrator per visitor session so that repeated submits
// from the same page share a single busy guard.
type Registry struct {
	creator SessionCreator
	logger  *slog.Logger

	mu            sync.Mutex
	orchestrators map[string]*Orchestrator
}

func NewRegistry(creator SessionCreator, logger *slog.Logger) *Registry {
	return &Registry{
		creator:       creator,
		logger:        logger,
		orchestrators: make(map[string]*Orchestrator),
	}
}

// Get returns the orchestrator for key, creating it on first use.
func (r *Registry) Get(key string) *Orchestrator {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orchestrators[key]
	if !ok {
		o = NewOrchestrator(r.creator, r.logger.With("basket_id", key))
		r.orchestrators[key] = o
	}

	return o
}

// Busy reports whether the visitor has a checkout request outstanding.
func (r *Registry) Busy(key string) bool {
	r.mu.Lock()
	o, ok := r.orchestrators[key]
	r.mu.Unlock()

	return ok && o.Busy()
}

// Release forgets o once it is no longer busy. Only the orchestrator currently
// registered under key is removed.
func (r *Registry) Release(key string, o *Orchestrator) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.orchestrators[key]
	if !ok || current != o || o.Busy() {
		return
	}

	delete(r.orchestrators, key)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.orchestrators)
}
