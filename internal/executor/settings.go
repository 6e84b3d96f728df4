package executor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/mirror/internal/hint"
)

// Settings selects how the two backends are composed.
type Settings struct {
	// Primary is the backend tried first: precomputed or live.
	Primary Backend

	// Fallback enables the other backend when the primary cannot resolve
	// a call.
	Fallback bool

	// OffContext runs live calls on a worker goroutine bound to the
	// context passed to Build.
	OffContext bool

	// Introspection enables the live backend. When disabled every live
	// call fails with GenericResolution.
	Introspection bool
}

// DefaultSettings prefers precomputed hints and falls back to reflection.
func DefaultSettings() Settings {
	return Settings{Primary: BackendPrecomputed, Fallback: true, Introspection: true}
}

// Build composes a Resolving executor over registry and catalog according
// to s. members and logger may be nil. With OffContext the worker runs until
// ctx is done or the executor is closed.
func Build(ctx context.Context, s Settings, registry *hint.Registry, catalog *Catalog, members MemberLookup, logger *slog.Logger) (*Resolving, error) {
	if logger == nil {
		logger = slog.Default()
	}

	precomputed := NewPrecomputed(registry)
	live := NewLive(catalog,
		WithMembers(members),
		WithIntrospection(s.Introspection),
		WithLiveLogger(logger))

	opts := []ResolvingOption{
		WithFallback(s.Fallback),
		WithResolvingLogger(logger),
	}
	if s.OffContext {
		opts = append(opts, WithWorker(StartWorker(ctx)))
	}

	switch s.Primary {
	case BackendPrecomputed:
		return NewResolving(precomputed, live, opts...), nil
	case BackendLive:
		return NewResolving(live, precomputed, opts...), nil
	}
	return nil, fmt.Errorf("unknown executor backend %q", s.Primary)
}
