package hint

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Registry maps declared type names to hints. It is an explicit instance
// passed to the components that need it; there is no package-level registry.
//
// Lifecycle: create with NewRegistry, supply hints with RegisterAll (or
// Register) before the first precomputed invocation, and Reset on teardown.
type Registry struct {
	mu    sync.RWMutex
	hints map[string]RuntimeHint
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{hints: make(map[string]RuntimeHint)}
}

// Register adds h under h.TypeName(), replacing any previous hint.
func (r *Registry) Register(h RuntimeHint) error {
	if h == nil {
		return errors.New("register: nil hint")
	}
	name := h.TypeName()
	if name == "" {
		return errors.New("register: hint without type name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hints[name] = h
	return nil
}

// RegisterAll adds every hint of the map, keyed by declared type name.
// Either all hints are registered or none are.
func (r *Registry) RegisterAll(hints map[string]RuntimeHint) error {
	for name, h := range hints {
		if name == "" || h == nil {
			return fmt.Errorf("register all: invalid entry %q", name)
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, h := range hints {
		r.hints[name] = h
	}
	return nil
}

// Lookup returns the hint for a declared type.
func (r *Registry) Lookup(typeName string) (RuntimeHint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.hints[typeName]
	return h, ok
}

// Types returns the registered type names in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.hints))
	for name := range r.hints {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of registered hints.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.hints)
}

// Reset removes every hint.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hints = make(map[string]RuntimeHint)
}
