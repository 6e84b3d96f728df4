// Package cache provides the resolution cache used by the declaration resolver.
//
// A Cache maps canonical references to lazily built values. Concurrent misses
// for one key share a single build. Entries are bounded by an LRU and can be
// removed explicitly (Evict, EvictAll) or by an optional periodic sweep of
// idle entries. Removing an entry only clears its slot: values already handed
// out stay valid for their holders.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// Config bounds a Cache.
type Config struct {
	// MaxEntries caps the number of cached values; least recently used
	// entries are dropped first.
	MaxEntries int

	// MaxIdle is how long an entry may go unused before the periodic sweep
	// removes it. Zero means "one sweep interval".
	MaxIdle time.Duration
}

// DefaultConfig returns the configuration used when fields are left zero.
func DefaultConfig() Config {
	return Config{MaxEntries: 4096}
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Builds    uint64
	Evictions uint64
	Sweeps    uint64
	Entries   int
}

type counters struct {
	hits      atomic.Uint64
	misses    atomic.Uint64
	builds    atomic.Uint64
	evictions atomic.Uint64
	sweeps    atomic.Uint64
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	logger *slog.Logger
	now    func() time.Time
}

// WithLogger sets the logger used for sweep diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock replaces time.Now for idle tracking.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

type entry[V any] struct {
	value    V
	lastUsed atomic.Int64 // unix nanos
}

// BuildFunc produces the value for a missing key. found=false means the key
// has no value; nothing is cached in that case.
type BuildFunc[V any] func(ctx context.Context) (value V, found bool, err error)

// Cache is a bounded, single-flight cache of lazily built values.
// The zero value is not usable; call New.
type Cache[V any] struct {
	cfg    Config
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	entries *lru.Cache[string, *entry[V]]
	// inflight tracks builds in progress; Evict marks them stale so a
	// finished build does not repopulate a slot cleared after it started.
	inflight map[string]*buildMark

	group singleflight.Group
	stats counters

	sweepMu     sync.Mutex
	sweepCancel context.CancelFunc
	sweepDone   chan struct{}
}

// New creates a cache.
func New[V any](cfg Config, opts ...Option) (*Cache[V], error) {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultConfig().MaxEntries
	}
	if cfg.MaxIdle < 0 {
		return nil, errors.New("cache: negative max idle")
	}
	o := options{logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Cache[V]{
		cfg:      cfg,
		logger:   o.logger,
		now:      o.now,
		inflight: make(map[string]*buildMark),
	}
	entries, err := lru.NewWithEvict[string, *entry[V]](cfg.MaxEntries, func(string, *entry[V]) {
		c.stats.evictions.Add(1)
	})
	if err != nil {
		return nil, err
	}
	c.entries = entries
	return c, nil
}

type flight[V any] struct {
	value V
	found bool
}

// Get returns the cached value for key, building it on a miss.
//
// Concurrent misses for the same key share one build. The build runs
// detached from the cancellation of any single caller; a caller whose ctx is
// done stops waiting and returns ctx.Err().
func (c *Cache[V]) Get(ctx context.Context, key string, build BuildFunc[V]) (V, bool, error) {
	if v, ok := c.lookup(key); ok {
		c.stats.hits.Add(1)
		return v, true, nil
	}
	c.stats.misses.Add(1)

	buildCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		// A concurrent flight may have filled the slot between lookup and here.
		if v, ok := c.lookup(key); ok {
			return flight[V]{value: v, found: true}, nil
		}
		mark := c.begin(key)

		c.stats.builds.Add(1)
		v, found, err := build(buildCtx)
		c.finish(key, mark, v, found && err == nil)
		if err != nil {
			return nil, err
		}
		return flight[V]{value: v, found: found}, nil
	})

	var zero V
	select {
	case <-ctx.Done():
		return zero, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, false, res.Err
		}
		f := res.Val.(flight[V])
		return f.value, f.found, nil
	}
}

// Peek returns the cached value without building or touching recency.
func (c *Cache[V]) Peek(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries.Peek(key)
	if !ok {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Evict clears the slot for key. An in-flight build for key still delivers
// its value to its callers but does not repopulate the slot.
func (c *Cache[V]) Evict(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok := c.inflight[key]; ok {
		m.stale = true
	}
	return c.entries.Remove(key)
}

// EvictAll clears every slot.
func (c *Cache[V]) EvictAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range c.inflight {
		m.stale = true
	}
	c.entries.Purge()
}

// EvictPrefix clears every slot whose key starts with prefix and marks
// matching in-flight builds stale. It returns the number of slots cleared.
func (c *Cache[V]) EvictPrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, m := range c.inflight {
		if strings.HasPrefix(key, prefix) {
			m.stale = true
		}
	}
	n := 0
	for _, key := range c.entries.Keys() {
		if strings.HasPrefix(key, prefix) && c.entries.Remove(key) {
			n++
		}
	}
	return n
}

// Len returns the number of cached entries.
func (c *Cache[V]) Len() int {
	return c.entries.Len()
}

// Keys returns the cached keys, least recently used first.
func (c *Cache[V]) Keys() []string {
	return c.entries.Keys()
}

// Values returns the cached values, least recently used first.
func (c *Cache[V]) Values() []V {
	entries := c.entries.Values()
	out := make([]V, len(entries))
	for i, e := range entries {
		out[i] = e.value
	}
	return out
}

// Stats returns a snapshot of the cache counters.
func (c *Cache[V]) Stats() Stats {
	return Stats{
		Hits:      c.stats.hits.Load(),
		Misses:    c.stats.misses.Load(),
		Builds:    c.stats.builds.Load(),
		Evictions: c.stats.evictions.Load(),
		Sweeps:    c.stats.sweeps.Load(),
		Entries:   c.entries.Len(),
	}
}

func (c *Cache[V]) lookup(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries.Get(key)
	if !ok {
		var zero V
		return zero, false
	}
	e.lastUsed.Store(c.now().UnixNano())
	return e.value, true
}

type buildMark struct{ stale bool }

func (c *Cache[V]) begin(key string) *buildMark {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := &buildMark{}
	c.inflight[key] = m
	return m
}

func (c *Cache[V]) finish(key string, m *buildMark, v V, keep bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[key] == m {
		delete(c.inflight, key)
	}
	if !keep || m.stale {
		return
	}
	e := &entry[V]{value: v}
	e.lastUsed.Store(c.now().UnixNano())
	c.entries.Add(key, e)
}
