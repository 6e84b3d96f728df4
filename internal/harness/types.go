package harness

import "github.com/roach88/mirror/internal/store"

// TraceEvent is one recorded invocation as it appears in a trace snapshot.
// Record IDs and error messages are left out so snapshots stay stable.
type TraceEvent struct {
	Seq       int64  `json:"seq"`
	Backend   string `json:"backend"`
	Operation string `json:"operation"`
	Type      string `json:"type"`
	Member    string `json:"member,omitempty"`
	Args      string `json:"args"`
	Outcome   string `json:"outcome"`
	ErrorCode string `json:"error_code,omitempty"`
	Result    string `json:"result,omitempty"`
}

func traceEvent(rec store.InvocationRecord) TraceEvent {
	return TraceEvent{
		Seq:       rec.Seq,
		Backend:   rec.Backend,
		Operation: rec.Operation,
		Type:      rec.Type,
		Member:    rec.Member,
		Args:      rec.Args,
		Outcome:   rec.Outcome,
		ErrorCode: rec.ErrorCode,
		Result:    rec.Result,
	}
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every step expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace holds the recorded invocations in sequence order.
	Trace []TraceEvent `json:"trace"`

	// Errors describes each failed expectation or assertion.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
