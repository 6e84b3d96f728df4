package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/mirror/internal/args"
	"github.com/roach88/mirror/internal/executor"
	"github.com/roach88/mirror/internal/store"
	"github.com/roach88/mirror/internal/testutil"
)

// Harness runs scenario steps through a recording executor.
type Harness struct {
	store     *store.Store
	inner     executor.Executor
	exec      *executor.Recording
	instances map[string]any
	logger    *slog.Logger
}

// Option configures Run.
type Option func(*runConfig)

type runConfig struct {
	settings executor.Settings
}

// WithSettings sets how resolving scenarios compose the backends.
// A scenario's own fallback and off_context fields take precedence.
// Default: executor.DefaultSettings().
func WithSettings(s executor.Settings) Option {
	return func(c *runConfig) { c.settings = s }
}

// Run executes a scenario and returns its result.
//
// Each run uses a fresh in-memory store, a deterministic clock and
// sequential record IDs, so traces are identical across runs.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{settings: executor.DefaultSettings()}
	for _, opt := range opts {
		opt(&cfg)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	inner, err := buildExecutor(ctx, scenario, cfg.settings, logger)
	if err != nil {
		return nil, err
	}
	if r, ok := inner.(*executor.Resolving); ok {
		defer r.Close()
	}

	h := &Harness{
		store: st,
		inner: inner,
		exec: executor.NewRecording(ctx, inner, st,
			executor.WithSequencer(testutil.NewDeterministicClock()),
			executor.WithIDGenerator(testutil.NewSequentialIDs("")),
			executor.WithRecordingLogger(logger)),
		instances: make(map[string]any),
		logger:    logger,
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		h.executeStep(i, step, result)
	}

	records, err := st.Invocations(ctx, store.InvocationFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}
	for _, rec := range records {
		result.Trace = append(result.Trace, traceEvent(rec))
	}

	actx := &AssertionContext{Instances: h.instances, Executor: inner}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}

// buildExecutor creates the backend named by the scenario. Resolving
// scenarios start from settings; live calls run on a worker bound to ctx
// when off_context is set.
func buildExecutor(ctx context.Context, scenario *Scenario, settings executor.Settings, logger *slog.Logger) (executor.Executor, error) {
	switch executor.Backend(scenario.Backend) {
	case executor.BackendPrecomputed:
		return executor.NewPrecomputed(testutil.Registry()), nil
	case executor.BackendLive:
		return executor.NewLive(testutil.Catalog(),
			executor.WithMembers(testutil.Members()),
			executor.WithLiveLogger(logger)), nil
	case executor.BackendResolving:
		s := settings
		if scenario.Fallback != nil {
			s.Fallback = *scenario.Fallback
		}
		if scenario.OffContext {
			s.OffContext = true
		}
		r, err := executor.Build(ctx, s, testutil.Registry(), testutil.Catalog(), testutil.Members(), logger)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	return nil, fmt.Errorf("unknown backend %q", scenario.Backend)
}

func (h *Harness) executeStep(i int, step Step, result *Result) {
	label := fmt.Sprintf("step %d (%s %s)", i, step.Operation(), step.Member())

	var instance any
	if step.Operation() != OpConstruct {
		var ok bool
		instance, ok = h.instances[step.On]
		if !ok {
			result.AddError(fmt.Sprintf("%s: %q is not bound (its step failed)", label, step.On))
			return
		}
	}

	a := args.Unmodified(step.Named, step.Args)
	var value any
	var err error
	switch step.Operation() {
	case OpConstruct:
		value, err = h.exec.NewInstance(step.TypeName(), step.Ctor, a)
	case OpInvoke:
		value, err = h.exec.InvokeMethod(instance, step.Invoke, a)
	case OpGet:
		value, err = h.exec.GetValue(instance, step.Get)
	case OpSet:
		err = h.exec.SetValue(instance, step.Set, step.Value)
	}

	h.logger.Debug("step executed", "step", i, "op", step.Operation(), "member", step.Member(), "error", err)

	if msg := checkExpect(step.Expect, value, err); msg != "" {
		result.AddError(label + ": " + msg)
		return
	}
	if step.As != "" && err == nil {
		h.instances[step.As] = value
	}
}

// checkExpect returns a description of the mismatch, or "" when the
// outcome matches.
func checkExpect(e *Expect, value any, err error) string {
	if !e.failure() {
		if err != nil {
			return fmt.Sprintf("unexpected error: %v", err)
		}
		switch {
		case e == nil:
		case e.Nil && value != nil:
			return fmt.Sprintf("expected nil, got %s", dump(value))
		case e.Value != nil && !sameValue(e.Value, value):
			return fmt.Sprintf("value mismatch\n  expected: %s\n  actual: %s",
				executor.Summarize(e.Value), dump(value))
		}
		return ""
	}

	if err == nil {
		return fmt.Sprintf("expected failure, got %s", dump(value))
	}
	if e.Error != "" {
		if code := executor.CodeOf(err); string(code) != e.Error {
			return fmt.Sprintf("expected error %s, got %q: %v", e.Error, code, err)
		}
	}
	return ""
}
