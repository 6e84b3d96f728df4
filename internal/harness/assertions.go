package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/roach88/mirror/internal/executor"
	"github.com/roach88/mirror/internal/store"
)

// Assertion validates the trace or the final state of a bound instance.
type Assertion struct {
	// Type is one of trace_contains, trace_order, trace_count or
	// final_field.
	Type string `yaml:"type"`

	// Event filters used by trace_contains and trace_count. Empty
	// filters match everything. Target is a type name, qualified like
	// Step.New.
	Op        string `yaml:"op,omitempty"`
	Target    string `yaml:"target,omitempty"`
	Member    string `yaml:"member,omitempty"`
	Backend   string `yaml:"backend,omitempty"`
	Outcome   string `yaml:"outcome,omitempty"`
	ErrorCode string `yaml:"error_code,omitempty"`

	// Count is the expected number of matching events (trace_count).
	Count int `yaml:"count,omitempty"`

	// Members lists member names in expected trace order (trace_order).
	Members []string `yaml:"members,omitempty"`

	// On, Field and Value describe the expected final field value
	// (final_field). The field is read without being recorded.
	On    string `yaml:"on,omitempty"`
	Field string `yaml:"field,omitempty"`
	Value any    `yaml:"value,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalField    = "final_field"
)

func validateAssertion(a Assertion, bound map[string]bool) error {
	switch a.Type {
	case "":
		return fmt.Errorf("type is required")
	case AssertTraceContains:
		if a.Op == "" && a.Target == "" && a.Member == "" {
			return fmt.Errorf("trace_contains needs at least one of op, target or member")
		}
	case AssertTraceOrder:
		if len(a.Members) < 2 {
			return fmt.Errorf("trace_order needs at least two members")
		}
	case AssertTraceCount:
		if a.Count < 0 {
			return fmt.Errorf("count must be non-negative for trace_count")
		}
	case AssertFinalField:
		if a.On == "" || a.Field == "" {
			return fmt.Errorf("final_field needs on and field")
		}
		if !bound[a.On] {
			return fmt.Errorf("on refers to unbound name %q", a.On)
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	if a.Outcome != "" && a.Outcome != store.OutcomeOK && a.Outcome != store.OutcomeError {
		return fmt.Errorf("outcome must be %q or %q", store.OutcomeOK, store.OutcomeError)
	}
	return nil
}

// AssertionError describes a failed assertion together with the trace.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, ev := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s.%s %s -> %s%s\n",
				ev.Seq, ev.Operation, ev.Type, ev.Member, ev.Args, ev.Outcome, suffix(ev))
		}
	}
	return buf.String()
}

func suffix(ev TraceEvent) string {
	if ev.ErrorCode != "" {
		return " " + ev.ErrorCode
	}
	if ev.Result != "" {
		return " " + ev.Result
	}
	return ""
}

func (a Assertion) matches(ev TraceEvent) bool {
	switch {
	case a.Op != "" && ev.Operation != a.Op:
		return false
	case a.Target != "" && ev.Type != QualifyType(a.Target):
		return false
	case a.Member != "" && ev.Member != a.Member:
		return false
	case a.Backend != "" && ev.Backend != a.Backend:
		return false
	case a.Outcome != "" && ev.Outcome != a.Outcome:
		return false
	case a.ErrorCode != "" && ev.ErrorCode != a.ErrorCode:
		return false
	}
	return true
}

func (a Assertion) filter() string {
	var parts []string
	for _, kv := range [][2]string{
		{"op", a.Op}, {"target", a.Target}, {"member", a.Member},
		{"backend", a.Backend}, {"outcome", a.Outcome}, {"error_code", a.ErrorCode},
	} {
		if kv[1] != "" {
			parts = append(parts, kv[0]+"="+kv[1])
		}
	}
	if len(parts) == 0 {
		return "any event"
	}
	return strings.Join(parts, " ")
}

func assertTraceContains(trace []TraceEvent, a Assertion) error {
	if slices.ContainsFunc(trace, a.matches) {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: a.filter(),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that the first occurrences of the members appear
// in order. Other events may occur in between.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	positions := make(map[string]int, len(a.Members))
	for i, ev := range trace {
		if _, seen := positions[ev.Member]; !seen && slices.Contains(a.Members, ev.Member) {
			positions[ev.Member] = i + 1
		}
	}

	for _, m := range a.Members {
		if positions[m] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all members present: %v", a.Members),
				Actual:   fmt.Sprintf("missing member: %s", m),
				Trace:    trace,
			}
		}
	}
	for i := 1; i < len(a.Members); i++ {
		prev, curr := a.Members[i-1], a.Members[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("members in order: %v", a.Members),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}
	return nil
}

func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, ev := range trace {
		if a.matches(ev) {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d events matching %s", a.Count, a.filter()),
			Actual:   fmt.Sprintf("%d events", count),
			Trace:    trace,
		}
	}
	return nil
}

func assertFinalField(actx *AssertionContext, a Assertion) error {
	instance, ok := actx.Instances[a.On]
	if !ok {
		return &AssertionError{
			Type:     AssertFinalField,
			Expected: fmt.Sprintf("instance %q", a.On),
			Actual:   "not bound (its step failed)",
		}
	}
	actual, err := actx.Executor.GetValue(instance, a.Field)
	if err != nil {
		return &AssertionError{
			Type:     AssertFinalField,
			Expected: fmt.Sprintf("%s.%s = %s", a.On, a.Field, executor.Summarize(a.Value)),
			Actual:   fmt.Sprintf("error: %v", err),
		}
	}
	if !sameValue(a.Value, actual) {
		return &AssertionError{
			Type:     AssertFinalField,
			Expected: fmt.Sprintf("%s.%s = %s", a.On, a.Field, executor.Summarize(a.Value)),
			Actual:   fmt.Sprintf("%s.%s = %s", a.On, a.Field, dump(actual)),
		}
	}
	return nil
}

// sameValue compares by canonical summary, so YAML integers match any Go
// integer type of the same value.
func sameValue(expected, actual any) bool {
	return executor.Summarize(expected) == executor.Summarize(actual)
}

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

func dump(v any) string {
	return strings.TrimSpace(dumper.Sdump(v))
}

// AssertionContext gives final_field assertions access to the bound
// instances and an unrecorded executor.
type AssertionContext struct {
	Instances map[string]any
	Executor  executor.Executor
}

// EvaluateAssertions evaluates all assertions against the result and
// returns one message per failed assertion.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, a)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, a)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		case AssertFinalField:
			if actx == nil || actx.Executor == nil {
				err = fmt.Errorf("assertion[%d]: final_field requires an executor", i)
			} else {
				err = assertFinalField(actx, a)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, a.Type)
		}
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}
