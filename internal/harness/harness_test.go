package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mirror/internal/executor"
	"github.com/roach88/mirror/internal/store"
	"github.com/roach88/mirror/internal/testutil"
)

func counterScenario(backend string, steps ...Step) *Scenario {
	return &Scenario{
		Name:        "counter",
		Description: "counter steps",
		Backend:     backend,
		Steps:       append([]Step{{New: "Counter", Args: []any{0}, As: "c"}}, steps...),
	}
}

func TestRun_RecordsEveryStep(t *testing.T) {
	result, err := Run(counterScenario("precomputed",
		Step{Invoke: "increment", On: "c", Expect: &Expect{Value: 1}},
		Step{Get: "count", On: "c", Expect: &Expect{Value: 1}},
	))
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	assert.Empty(t, result.Errors)

	require.Len(t, result.Trace, 3)
	for i, ev := range result.Trace {
		assert.Equal(t, int64(i+1), ev.Seq)
		assert.Equal(t, store.OutcomeOK, ev.Outcome)
		assert.Equal(t, testutil.CounterType, ev.Type)
	}
	assert.Equal(t, "construct", result.Trace[0].Operation)
	assert.Equal(t, "increment", result.Trace[1].Member)
	assert.Equal(t, "1", result.Trace[2].Result)
}

func TestRun_IsDeterministic(t *testing.T) {
	scenario := counterScenario("live",
		Step{Invoke: "add", On: "c", Args: []any{2}, Named: map[string]any{"times": 2}},
		Step{Invoke: "fail", On: "c", Expect: &Expect{Fails: true}},
	)
	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRun_ValueMismatch(t *testing.T) {
	result, err := Run(counterScenario("precomputed",
		Step{Invoke: "increment", On: "c", Expect: &Expect{Value: 5}},
	))
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "step 1 (invoke increment): value mismatch")
	assert.Contains(t, result.Errors[0], "expected: 5")
	assert.Contains(t, result.Errors[0], "(int) 1")
}

func TestRun_UnexpectedError(t *testing.T) {
	result, err := Run(counterScenario("precomputed",
		Step{Invoke: "fail", On: "c"},
	))
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "unexpected error")
	assert.Contains(t, result.Errors[0], testutil.ErrCounterFailed.Error())
}

func TestRun_ExpectedFailureSucceeded(t *testing.T) {
	result, err := Run(counterScenario("precomputed",
		Step{Invoke: "increment", On: "c", Expect: &Expect{Error: "METHOD_NOT_FOUND"}},
	))
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "expected failure, got (int) 1")
}

func TestRun_WrongErrorCode(t *testing.T) {
	result, err := Run(counterScenario("precomputed",
		Step{Invoke: "jump", On: "c", Expect: &Expect{Error: "FIELD_ACCESS"}},
	))
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], `expected error FIELD_ACCESS, got "METHOD_NOT_FOUND"`)
}

func TestRun_FailedBindingSkipsDependentSteps(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "unbound",
		Description: "constructor fails",
		Backend:     "precomputed",
		Steps: []Step{
			{New: "Widget", As: "w"},
			{Invoke: "spin", On: "w"},
		},
	})
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "CONSTRUCTOR_NOT_FOUND")
	assert.Contains(t, result.Errors[1], `"w" is not bound`)
	assert.Len(t, result.Trace, 1)
}

func TestRun_ResolvingFallback(t *testing.T) {
	steps := []Step{
		{New: "Greeter", Args: []any{"Hey"}, As: "g"},
		{Invoke: "shout", On: "g", Args: []any{"you"}, Expect: &Expect{Value: "HEY, YOU!"}},
	}

	result, err := Run(&Scenario{Name: "on", Description: "d", Backend: "resolving", Steps: steps})
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	assert.Equal(t, "resolving", result.Trace[1].Backend)

	off := false
	steps[1].Expect = &Expect{Error: "METHOD_NOT_FOUND"}
	result, err = Run(&Scenario{Name: "off", Description: "d", Backend: "resolving", Fallback: &off, Steps: steps})
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	assert.Equal(t, "precomputed", result.Trace[1].Backend)
}

func TestRun_WithSettings(t *testing.T) {
	shout := func(expect *Expect) []Step {
		return []Step{
			{New: "Greeter", Args: []any{"Hey"}, As: "g"},
			{Invoke: "shout", On: "g", Args: []any{"you"}, Expect: expect},
		}
	}
	noFallback := executor.DefaultSettings()
	noFallback.Fallback = false
	livePrimary := noFallback
	livePrimary.Primary = executor.BackendLive
	on := true

	tests := []struct {
		name     string
		settings executor.Settings
		fallback *bool
		expect   *Expect
	}{
		{"settings disable fallback", noFallback, nil, &Expect{Error: "METHOD_NOT_FOUND"}},
		{"scenario overrides settings", noFallback, &on, &Expect{Value: "HEY, YOU!"}},
		{"live primary", livePrimary, nil, &Expect{Value: "HEY, YOU!"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Run(&Scenario{
				Name:        "settings",
				Description: "d",
				Backend:     "resolving",
				Fallback:    tt.fallback,
				Steps:       shout(tt.expect),
			}, WithSettings(tt.settings))
			require.NoError(t, err)
			assert.True(t, result.Pass, result.Errors)
		})
	}
}

func TestRun_OffContextWorker(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "worker",
		Description: "live calls on the worker",
		Backend:     "resolving",
		OffContext:  true,
		Steps: []Step{
			{New: "Greeter", Ctor: "formal", As: "g"},
			{Invoke: "shout", On: "g", Args: []any{"Al"}, Expect: &Expect{Value: "GOOD DAY, AL!"}},
		},
	})
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}

func TestRun_AssertionsEvaluated(t *testing.T) {
	scenario := counterScenario("precomputed",
		Step{Invoke: "increment", On: "c"},
	)
	scenario.Assertions = []Assertion{
		{Type: AssertTraceCount, Member: "increment", Count: 2},
		{Type: AssertFinalField, On: "c", Field: "count", Value: 1},
	}
	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Assertion failed: trace_count")

	// final_field reads are not recorded.
	assert.Len(t, result.Trace, 2)
}

func TestRun_UnknownBackend(t *testing.T) {
	_, err := Run(&Scenario{Name: "n", Description: "d", Backend: "remote", Steps: []Step{{New: "Counter"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown backend "remote"`)
}

func TestCheckExpect(t *testing.T) {
	assert.Empty(t, checkExpect(nil, 3, nil))
	assert.Empty(t, checkExpect(&Expect{Nil: true}, nil, nil))
	assert.Contains(t, checkExpect(&Expect{Nil: true}, "x", nil), `expected nil, got (string) (len=1) "x"`)
	assert.Empty(t, checkExpect(&Expect{Value: int64(3)}, 3, nil))
	assert.Empty(t, checkExpect(&Expect{Value: []any{"a"}}, []string{"a"}, nil))
	assert.NotEmpty(t, checkExpect(&Expect{Value: []any{1}}, []string{"1"}, nil))
	assert.Empty(t, checkExpect(&Expect{Fails: true}, nil, assert.AnError))
}
