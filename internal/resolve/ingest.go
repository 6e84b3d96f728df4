package resolve

import (
	"context"
	"errors"

	"github.com/roach88/mirror/internal/decl"
)

// Put adds or replaces a library in the in-memory overlay consulted before
// the Source, and evicts cached declarations of that library. Builds of the
// library already in flight deliver to their callers but are not cached.
func (r *Resolver) Put(lib decl.RawLibrary) error {
	if lib.URI == "" {
		return errors.New("library without uri")
	}
	r.mu.Lock()
	r.overlay[lib.URI] = &lib
	r.mu.Unlock()

	r.cache.EvictPrefix(lib.URI + "#")
	return nil
}

// Ingest consumes libraries delivered incrementally by the scanning
// collaborator until libs is closed or ctx is done. Libraries without a URI
// are skipped; they never fail the whole stream. It returns the number of
// libraries accepted.
func (r *Resolver) Ingest(ctx context.Context, libs <-chan decl.RawLibrary) (int, error) {
	n := 0
	for {
		select {
		case <-ctx.Done():
			return n, ctx.Err()
		case lib, ok := <-libs:
			if !ok {
				r.logger.Debug("ingest complete", "libraries", n)
				return n, nil
			}
			if err := r.Put(lib); err != nil {
				r.logger.Warn("skipping library", "error", err, "declarations", len(lib.Declarations))
				continue
			}
			n++
		}
	}
}

// Libraries returns the URIs of ingested libraries.
func (r *Resolver) Libraries() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.overlay))
	for uri := range r.overlay {
		out = append(out, uri)
	}
	return out
}
