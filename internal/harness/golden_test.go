package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios_Golden(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)

	for _, scenario := range scenarios {
		t.Run(scenario.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestTraceSnapshot_Render(t *testing.T) {
	snapshot := TraceSnapshot{
		Scenario: "tiny",
		Backend:  "live",
		Trace: []TraceEvent{{
			Seq:       1,
			Backend:   "live",
			Operation: "get",
			Type:      "example.com/lib.T",
			Member:    "name",
			Args:      `{"named":{},"positional":[]}`,
			Outcome:   "ok",
			Result:    `"<a&b>"`,
		}},
	}

	data, err := snapshot.Render()
	require.NoError(t, err)

	want := `{
  "scenario": "tiny",
  "backend": "live",
  "trace": [
    {
      "seq": 1,
      "backend": "live",
      "operation": "get",
      "type": "example.com/lib.T",
      "member": "name",
      "args": "{\"named\":{},\"positional\":[]}",
      "outcome": "ok",
      "result": "\"<a&b>\""
    }
  ]
}
`
	assert.Equal(t, want, string(data))
}

func TestTraceSnapshot_RenderEmptyTrace(t *testing.T) {
	data, err := (&TraceSnapshot{Scenario: "empty", Backend: "live", Trace: []TraceEvent{}}).Render()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"trace": []`)
}
