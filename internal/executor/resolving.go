package executor

import (
	"log/slog"

	"github.com/roach88/mirror/internal/args"
)

// Resolving composes two executors. The primary is tried first; when it
// fails with a not-found or GenericResolution error and fallback is
// enabled, the secondary is tried. Any other failure, including
// Unsupported and errors from invoked code, is returned immediately.
//
// If the secondary also fails with a fallback-eligible error, the
// primary's error is returned.
type Resolving struct {
	primary   Executor
	secondary Executor
	fallback  bool
	worker    *Worker
	logger    *slog.Logger
}

var _ Executor = (*Resolving)(nil)

// ResolvingOption configures a Resolving executor.
type ResolvingOption func(*Resolving)

// WithFallback enables or disables use of the secondary executor.
// Default: enabled.
func WithFallback(enabled bool) ResolvingOption {
	return func(r *Resolving) { r.fallback = enabled }
}

// WithWorker runs calls routed to the live backend on w.
func WithWorker(w *Worker) ResolvingOption {
	return func(r *Resolving) { r.worker = w }
}

// WithResolvingLogger sets the logger used to report fallbacks.
func WithResolvingLogger(logger *slog.Logger) ResolvingOption {
	return func(r *Resolving) { r.logger = logger }
}

// NewResolving creates a composed executor. secondary may be nil.
func NewResolving(primary, secondary Executor, opts ...ResolvingOption) *Resolving {
	r := &Resolving{
		primary:   primary,
		secondary: secondary,
		fallback:  true,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Backend implements Executor.
func (r *Resolving) Backend() Backend { return BackendResolving }

// Primary returns the executor tried first.
func (r *Resolving) Primary() Executor { return r.primary }

// Secondary returns the fallback executor, or nil.
func (r *Resolving) Secondary() Executor { return r.secondary }

// Close stops the off-context worker, if any, after its queued calls finish.
// Later live calls fail with GenericResolution. Close is idempotent.
func (r *Resolving) Close() {
	if r.worker != nil {
		r.worker.Close()
	}
}

// NewInstance implements Executor.
func (r *Resolving) NewInstance(typeName, ctor string, a *args.ExecutableArgument) (any, error) {
	var out any
	err := r.call("construct", typeName, ctor, func(e Executor) error {
		v, err := e.NewInstance(typeName, ctor, a)
		out = v
		return err
	})
	return out, err
}

// InvokeMethod implements Executor.
func (r *Resolving) InvokeMethod(instance any, method string, a *args.ExecutableArgument) (any, error) {
	var out any
	err := r.call("invoke", "", method, func(e Executor) error {
		v, err := e.InvokeMethod(instance, method, a)
		out = v
		return err
	})
	return out, err
}

// GetValue implements Executor.
func (r *Resolving) GetValue(instance any, field string) (any, error) {
	var out any
	err := r.call("get", "", field, func(e Executor) error {
		v, err := e.GetValue(instance, field)
		out = v
		return err
	})
	return out, err
}

// SetValue implements Executor.
func (r *Resolving) SetValue(instance any, field string, value any) error {
	return r.call("set", "", field, func(e Executor) error {
		return e.SetValue(instance, field, value)
	})
}

func (r *Resolving) call(op, typeName, member string, fn func(Executor) error) error {
	err := r.run(r.primary, fn)
	if err == nil || r.secondary == nil || !r.fallback || !fallbackEligible(err) {
		return err
	}

	r.logger.Debug("executor fallback",
		"op", op,
		"type", typeName,
		"member", member,
		"from", r.primary.Backend(),
		"to", r.secondary.Backend(),
		"code", CodeOf(err))

	if err2 := r.run(r.secondary, fn); err2 != nil {
		if fallbackEligible(err2) {
			return err
		}
		return err2
	}
	return nil
}

func (r *Resolving) run(e Executor, fn func(Executor) error) error {
	if r.worker == nil || e.Backend() != BackendLive {
		return fn(e)
	}
	var err error
	if werr := r.worker.Do(func() { err = fn(e) }); werr != nil {
		return NewGenericResolution(e.Backend(), "", "", werr)
	}
	return err
}

func fallbackEligible(err error) bool {
	return IsNotFound(err) || IsGenericResolution(err)
}
