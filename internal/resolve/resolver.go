// Package resolve materializes declarations on demand.
//
// A Resolver turns canonical references into decl.Declaration values by
// reading raw libraries from a Source (or from libraries ingested
// incrementally) and building the requested declaration. Built declarations
// are held in a single-flight cache and, under the default policy, evicted
// as soon as the request that built them has been served.
//
// Missing libraries, missing names and malformed raw input all resolve to
// nil; only a malformed reference is reported as an error.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/roach88/mirror/internal/cache"
	"github.com/roach88/mirror/internal/decl"
)

// ErrLibraryNotFound is returned by sources that do not know a library.
var ErrLibraryNotFound = errors.New("library not found")

// Source supplies raw libraries by URI.
type Source interface {
	Library(ctx context.Context, uri string) (*decl.RawLibrary, error)
}

// Policy controls what happens to a cache slot after it has served a request.
type Policy int

const (
	// EvictAfterUse clears the slot once the build's callers have the value.
	EvictAfterUse Policy = iota
	// Retain keeps the slot until it is evicted, swept or pushed out by capacity.
	Retain
)

func (p Policy) String() string {
	switch p {
	case EvictAfterUse:
		return "evict_after_use"
	case Retain:
		return "retain"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy parses "evict_after_use" or "retain". Empty means EvictAfterUse.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "evict_after_use":
		return EvictAfterUse, nil
	case "retain":
		return Retain, nil
	default:
		return EvictAfterUse, fmt.Errorf("unknown cache policy %q", s)
	}
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// WithCacheConfig bounds the declaration cache.
func WithCacheConfig(cfg cache.Config) Option {
	return func(r *Resolver) { r.cacheCfg = cfg }
}

// WithPolicy sets the eviction policy.
func WithPolicy(p Policy) Option {
	return func(r *Resolver) { r.policy = p }
}

// WithClock replaces time.Now for cache idle tracking.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// Resolver resolves canonical references to declarations.
// It implements decl.Resolver and is safe for concurrent use.
type Resolver struct {
	source   Source
	logger   *slog.Logger
	policy   Policy
	cacheCfg cache.Config
	now      func() time.Time
	cache    *cache.Cache[decl.Declaration]

	mu      sync.RWMutex
	overlay map[string]*decl.RawLibrary
}

var _ decl.Resolver = (*Resolver)(nil)

// New creates a Resolver reading from source, which may be nil when every
// library arrives through Ingest.
func New(source Source, opts ...Option) (*Resolver, error) {
	r := &Resolver{
		source:   source,
		logger:   slog.Default(),
		policy:   EvictAfterUse,
		cacheCfg: cache.DefaultConfig(),
		now:      time.Now,
		overlay:  make(map[string]*decl.RawLibrary),
	}
	for _, opt := range opts {
		opt(r)
	}
	c, err := cache.New[decl.Declaration](r.cacheCfg, cache.WithLogger(r.logger), cache.WithClock(r.now))
	if err != nil {
		return nil, fmt.Errorf("resolver cache: %w", err)
	}
	r.cache = c
	return r, nil
}

// Policy returns the eviction policy.
func (r *Resolver) Policy() Policy { return r.policy }

// Resolve returns the declaration for a canonical reference, or nil if it
// cannot be materialized. It fails only for a malformed reference or when
// ctx is done before the declaration is available.
func (r *Resolver) Resolve(ctx context.Context, ref string) (decl.Declaration, error) {
	uri, name, err := decl.ParseReference(ref)
	if err != nil {
		return nil, err
	}

	d, found, err := r.cache.Get(ctx, ref, func(ctx context.Context) (decl.Declaration, bool, error) {
		return r.build(ctx, uri, name)
	})
	if err != nil {
		return nil, err
	}
	if r.policy == EvictAfterUse {
		r.cache.Evict(ref)
	}
	if !found {
		return nil, nil
	}
	return d, nil
}

// Lookup resolves a declaration by qualified name ("<libraryURI>.<Name>").
func (r *Resolver) Lookup(ctx context.Context, qualifiedName string) (decl.Declaration, error) {
	ref, err := decl.ReferenceFromQualifiedName(qualifiedName)
	if err != nil {
		return nil, err
	}
	return r.Resolve(ctx, ref)
}

// build never returns an error: unavailable input resolves to "not found".
func (r *Resolver) build(ctx context.Context, uri, name string) (decl.Declaration, bool, error) {
	lib, err := r.library(ctx, uri)
	if err != nil {
		if !errors.Is(err, ErrLibraryNotFound) {
			r.logger.Warn("library unavailable", "library", uri, "error", err)
		} else {
			r.logger.Debug("library not found", "library", uri)
		}
		return nil, false, nil
	}
	raw := lib.Declaration(name)
	if raw == nil {
		r.logger.Debug("declaration not found", "library", uri, "name", name)
		return nil, false, nil
	}
	d, err := decl.Build(*raw, uri, r)
	if err != nil {
		r.logger.Warn("declaration unparseable", "library", uri, "name", name, "error", err)
		return nil, false, nil
	}
	r.logger.Debug("declaration built", "ref", d.Reference(), "kind", kindOf(d))
	return d, true, nil
}

func (r *Resolver) library(ctx context.Context, uri string) (*decl.RawLibrary, error) {
	r.mu.RLock()
	lib, ok := r.overlay[uri]
	r.mu.RUnlock()
	if ok {
		return lib, nil
	}
	if r.source == nil {
		return nil, fmt.Errorf("%w: %s", ErrLibraryNotFound, uri)
	}
	lib, err := r.source.Library(ctx, uri)
	if err != nil {
		return nil, err
	}
	if lib == nil {
		return nil, fmt.Errorf("%w: %s", ErrLibraryNotFound, uri)
	}
	return lib, nil
}

// Evict clears the cache slot for ref.
func (r *Resolver) Evict(ref string) bool { return r.cache.Evict(ref) }

// EvictAll clears every cache slot.
func (r *Resolver) EvictAll() { r.cache.EvictAll() }

// EnablePeriodicCleanup starts the background idle sweep.
func (r *Resolver) EnablePeriodicCleanup(interval time.Duration) error {
	return r.cache.EnablePeriodicCleanup(interval)
}

// DisablePeriodicCleanup stops the background idle sweep.
func (r *Resolver) DisablePeriodicCleanup() { r.cache.DisablePeriodicCleanup() }

// Close stops background work.
func (r *Resolver) Close() error { return r.cache.Close() }

// Stats returns cache counters.
func (r *Resolver) Stats() cache.Stats { return r.cache.Stats() }

// Cached returns the declarations currently held in the cache.
func (r *Resolver) Cached() []decl.Declaration { return r.cache.Values() }

// Peek returns a cached declaration without building it.
func (r *Resolver) Peek(ref string) (decl.Declaration, bool) { return r.cache.Peek(ref) }

func kindOf(d decl.Declaration) string {
	if td, ok := d.(decl.TypeDeclaration); ok {
		return td.Kind().String()
	}
	return "member"
}
