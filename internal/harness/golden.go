package harness

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// TraceSnapshot is the golden-file form of a scenario trace.
type TraceSnapshot struct {
	Scenario string       `json:"scenario"`
	Backend  string       `json:"backend"`
	Trace    []TraceEvent `json:"trace"`
}

// Snapshot returns the golden-file form of a scenario run.
func Snapshot(scenario *Scenario, result *Result) *TraceSnapshot {
	return &TraceSnapshot{Scenario: scenario.Name, Backend: scenario.Backend, Trace: result.Trace}
}

// GoldenName is the file name of a scenario's golden trace.
func GoldenName(scenario *Scenario) string {
	return scenario.Name + ".golden"
}

// Render encodes the snapshot as indented JSON with a trailing newline.
// Field order follows the struct, and args and results stay in their
// canonical string form.
func (s *TraceSnapshot) Render() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RunWithGolden executes a scenario and compares its trace with
// testdata/golden/<scenario name>.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, scenario.Backend, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result's trace with its golden file.
func AssertGolden(t *testing.T, name, backend string, result *Result) error {
	t.Helper()

	snapshot := TraceSnapshot{Scenario: name, Backend: backend, Trace: result.Trace}
	data, err := snapshot.Render()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
