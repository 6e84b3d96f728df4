package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mirror/internal/executor"
	"github.com/roach88/mirror/internal/testutil"
)

func sampleTrace() []TraceEvent {
	return []TraceEvent{
		{Seq: 1, Backend: "resolving", Operation: "construct", Type: testutil.CounterType, Args: `{"named":{},"positional":[1]}`, Outcome: "ok"},
		{Seq: 2, Backend: "resolving", Operation: "invoke", Type: testutil.CounterType, Member: "add", Args: `{"named":{},"positional":[2]}`, Outcome: "ok", Result: "3"},
		{Seq: 3, Backend: "precomputed", Operation: "invoke", Type: testutil.CounterType, Member: "jump", Args: `{"named":{},"positional":[]}`, Outcome: "error", ErrorCode: "METHOD_NOT_FOUND"},
		{Seq: 4, Backend: "resolving", Operation: "invoke", Type: testutil.CounterType, Member: "add", Args: `{"named":{},"positional":[1]}`, Outcome: "ok", Result: "4"},
	}
}

func TestAssertTraceContains(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceContains(trace, Assertion{Member: "add", Outcome: "ok"}))
	assert.NoError(t, assertTraceContains(trace, Assertion{Target: "Counter", Op: "construct"}))
	assert.NoError(t, assertTraceContains(trace, Assertion{ErrorCode: "METHOD_NOT_FOUND", Backend: "precomputed"}))

	err := assertTraceContains(trace, Assertion{Member: "jump", Outcome: "ok"})
	require.Error(t, err)
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "member=jump outcome=ok", ae.Expected)
	assert.Contains(t, err.Error(), "Full trace:")
	assert.Contains(t, err.Error(), "[3] invoke "+testutil.CounterType+".jump")
}

func TestAssertTraceOrder(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceOrder(trace, Assertion{Members: []string{"add", "jump"}}))

	err := assertTraceOrder(trace, Assertion{Members: []string{"jump", "add"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jump (pos 3) should be before add (pos 2)")

	err = assertTraceOrder(trace, Assertion{Members: []string{"add", "reset"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing member: reset")
}

func TestAssertTraceCount(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceCount(trace, Assertion{Member: "add", Count: 2}))
	assert.NoError(t, assertTraceCount(trace, Assertion{Backend: "live", Count: 0}))
	assert.NoError(t, assertTraceCount(trace, Assertion{Count: 4}))

	err := assertTraceCount(trace, Assertion{Outcome: "error", Count: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 events matching outcome=error")
	assert.Contains(t, err.Error(), "Actual: 1 events")
}

func TestAssertFinalField(t *testing.T) {
	actx := &AssertionContext{
		Instances: map[string]any{"c": &testutil.Counter{Count: 7, Step: 1}},
		Executor:  executor.NewPrecomputed(testutil.Registry()),
	}

	assert.NoError(t, assertFinalField(actx, Assertion{On: "c", Field: "count", Value: 7}))

	err := assertFinalField(actx, Assertion{On: "c", Field: "count", Value: 8})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Expected: c.count = 8")
	assert.Contains(t, err.Error(), "Actual: c.count = (int) 7")

	err = assertFinalField(actx, Assertion{On: "c", Field: "missing", Value: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FIELD_ACCESS")

	err = assertFinalField(actx, Assertion{On: "d", Field: "count"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not bound")
}

func TestEvaluateAssertions(t *testing.T) {
	result := &Result{Pass: true, Trace: sampleTrace()}
	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertTraceContains, Member: "add"},
		{Type: AssertTraceCount, Member: "add", Count: 1},
		{Type: AssertFinalField, On: "c", Field: "count"},
		{Type: "bogus"},
	}, nil)

	require.Len(t, errs, 3)
	assert.Contains(t, errs[0], "trace_count")
	assert.Contains(t, errs[1], "final_field requires an executor")
	assert.Contains(t, errs[2], `unknown assertion type "bogus"`)
}

func TestSameValue(t *testing.T) {
	assert.True(t, sameValue(3, int64(3)))
	assert.True(t, sameValue(map[string]any{"a": 1}, map[string]int{"a": 1}))
	assert.True(t, sameValue(nil, nil))
	assert.False(t, sameValue("3", 3))
}
