// Package harness runs invocation scenarios against the executor backends
// and snapshots the recorded invocations.
//
// # Scenario Format
//
//	name: counter_precomputed
//	description: "Counter through generated hints"
//	backend: precomputed        # precomputed | live | resolving
//	fallback: true              # resolving only, default true
//	off_context: false          # resolving only
//	steps:
//	  - new: Counter            # bare names refer to the testutil fixtures
//	    args: [5]
//	    as: c
//	  - invoke: add
//	    on: c
//	    args: [2]
//	    named: {times: 3}
//	    expect: {value: 11}
//	  - set: step
//	    on: c
//	    value: 10
//	  - invoke: fail
//	    on: c
//	    expect: {fails: true}
//	assertions:
//	  - type: trace_count
//	    outcome: error
//	    count: 1
//	  - type: final_field
//	    on: c
//	    field: count
//	    value: 11
//
// A step expectation holds exactly one of value, nil, error (an invocation
// error code) or fails. A step without one must succeed.
//
// # Assertion Types
//
//   - trace_contains: some recorded event matches the op, target, member,
//     backend, outcome and error_code filters
//   - trace_order: first occurrences of the members appear in order
//   - trace_count: exactly count events match the filters
//   - final_field: a bound instance's field has the value, read without
//     being recorded
//
// # Determinism
//
// Every run records into a fresh in-memory store with a
// testutil.DeterministicClock and testutil.SequentialIDs, so the trace of a
// scenario is stable and can be compared with a golden file.
package harness
