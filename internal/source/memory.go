// Package source provides raw library sources for the resolver: an
// in-memory map, directories of YAML or CUE library files, and a chain
// that consults several sources in order.
package source

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/roach88/mirror/internal/decl"
	"github.com/roach88/mirror/internal/resolve"
)

// Memory is a map-backed Source safe for concurrent use.
type Memory struct {
	mu   sync.RWMutex
	libs map[string]decl.RawLibrary
}

var _ resolve.Source = (*Memory)(nil)

// NewMemory creates a Memory holding libs.
func NewMemory(libs ...decl.RawLibrary) *Memory {
	m := &Memory{libs: make(map[string]decl.RawLibrary, len(libs))}
	for _, lib := range libs {
		m.libs[lib.URI] = lib
	}
	return m
}

// Put adds or replaces a library.
func (m *Memory) Put(lib decl.RawLibrary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.libs[lib.URI] = lib
}

// Delete removes a library.
func (m *Memory) Delete(uri string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.libs, uri)
}

// Library implements resolve.Source. The returned library is a copy.
func (m *Memory) Library(_ context.Context, uri string) (*decl.RawLibrary, error) {
	m.mu.RLock()
	lib, ok := m.libs[uri]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", resolve.ErrLibraryNotFound, uri)
	}
	return &lib, nil
}

// URIs returns the known library URIs in sorted order.
func (m *Memory) URIs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.libs))
	for uri := range m.libs {
		out = append(out, uri)
	}
	sort.Strings(out)
	return out
}

// Libraries returns copies of all libraries sorted by URI.
func (m *Memory) Libraries() []decl.RawLibrary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]decl.RawLibrary, 0, len(m.libs))
	for _, lib := range m.libs {
		out = append(out, lib)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URI < out[j].URI })
	return out
}
