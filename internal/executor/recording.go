package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"reflect"

	"github.com/roach88/mirror/internal/args"
	"github.com/roach88/mirror/internal/decl"
	"github.com/roach88/mirror/internal/hint"
	"github.com/roach88/mirror/internal/store"
)

// InvocationLog persists invocation records. Implemented by *store.Store.
type InvocationLog interface {
	RecordInvocation(ctx context.Context, rec store.InvocationRecord) error
}

// Recording decorates an executor and appends one record per call to an
// InvocationLog. Results and errors pass through untouched; a failure to
// write the record is logged, never returned.
type Recording struct {
	inner  Executor
	log    InvocationLog
	ctx    context.Context
	seq    Sequencer
	ids    IDGenerator
	logger *slog.Logger
}

var _ Executor = (*Recording)(nil)

// RecordingOption configures a Recording executor.
type RecordingOption func(*Recording)

// WithSequencer sets the logical clock stamping records. Default: NewClock().
func WithSequencer(s Sequencer) RecordingOption {
	return func(r *Recording) { r.seq = s }
}

// WithIDGenerator sets the record ID source. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) RecordingOption {
	return func(r *Recording) { r.ids = g }
}

// WithRecordingLogger sets the logger for record write failures.
func WithRecordingLogger(logger *slog.Logger) RecordingOption {
	return func(r *Recording) { r.logger = logger }
}

// NewRecording wraps inner. ctx bounds record writes only; the wrapped
// calls themselves are not cancellable.
func NewRecording(ctx context.Context, inner Executor, log InvocationLog, opts ...RecordingOption) *Recording {
	r := &Recording{
		inner:  inner,
		log:    log,
		ctx:    ctx,
		seq:    NewClock(),
		ids:    UUIDv7Generator{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Backend implements Executor and reports the wrapped backend.
func (r *Recording) Backend() Backend { return r.inner.Backend() }

// NewInstance implements Executor.
func (r *Recording) NewInstance(typeName, ctor string, a *args.ExecutableArgument) (any, error) {
	v, err := r.inner.NewInstance(typeName, ctor, a)
	r.record("construct", typeName, ctor, a, v, err)
	return v, err
}

// InvokeMethod implements Executor.
func (r *Recording) InvokeMethod(instance any, method string, a *args.ExecutableArgument) (any, error) {
	v, err := r.inner.InvokeMethod(instance, method, a)
	r.record("invoke", hint.TypeNameOf(instance), method, a, v, err)
	return v, err
}

// GetValue implements Executor.
func (r *Recording) GetValue(instance any, field string) (any, error) {
	v, err := r.inner.GetValue(instance, field)
	r.record("get", hint.TypeNameOf(instance), field, args.None(), v, err)
	return v, err
}

// SetValue implements Executor.
func (r *Recording) SetValue(instance any, field string, value any) error {
	err := r.inner.SetValue(instance, field, value)
	r.record("set", hint.TypeNameOf(instance), field, args.Positional([]any{value}), nil, err)
	return err
}

func (r *Recording) record(op, typeName, member string, a *args.ExecutableArgument, result any, callErr error) {
	rec := store.InvocationRecord{
		ID:        r.ids.Generate(),
		Seq:       r.seq.Next(),
		Backend:   string(r.inner.Backend()),
		Operation: op,
		Type:      typeName,
		Member:    member,
		Args:      SummarizeArgs(a),
		Outcome:   store.OutcomeOK,
	}
	if callErr != nil {
		rec.Outcome = store.OutcomeError
		rec.ErrorCode = string(CodeOf(callErr))
		rec.ErrorMessage = callErr.Error()
		var ie *InvocationError
		if errors.As(callErr, &ie) && ie.Backend != "" {
			rec.Backend = string(ie.Backend)
		}
	} else {
		rec.Result = Summarize(result)
	}

	if err := r.log.RecordInvocation(r.ctx, rec); err != nil {
		r.logger.Warn("invocation record not written",
			"id", rec.ID,
			"op", op,
			"type", typeName,
			"member", member,
			"error", err)
	}
}

// SummarizeArgs renders a as canonical JSON. Values with no JSON form,
// such as instances, are replaced by "<type name>".
func SummarizeArgs(a *args.ExecutableArgument) string {
	positional := a.PositionalArguments()
	pos := make([]any, len(positional))
	for i, v := range positional {
		pos[i] = summaryValue(v)
	}
	named := make(map[string]any, a.NamedLen())
	for k, v := range a.NamedArguments() {
		named[k] = summaryValue(v)
	}
	return Summarize(map[string]any{"positional": pos, "named": named})
}

// Summarize renders v as canonical JSON the way records store results.
func Summarize(v any) string {
	data, err := decl.MarshalCanonical(summaryValue(v))
	if err != nil {
		return fmt.Sprintf("%q", fmt.Sprint(v))
	}
	return string(data)
}

func summaryValue(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Sprint(f)
		}
		return f
	case reflect.String:
		return rv.String()
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = summaryValue(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = summaryValue(iter.Value().Interface())
		}
		return out
	}
	return "<" + hint.TypeNameOf(v) + ">"
}
