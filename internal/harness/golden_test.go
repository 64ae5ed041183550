package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Golden files live in testdata/golden. Regenerate with:
//
//	go test ./internal/harness -run Golden -update

func TestRunWithGolden_ForwardRedirect(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/forward_redirect.yaml")
	require.NoError(t, err)

	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}

func TestRunWithGolden_ForkFanout(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/fork_fanout.yaml")
	require.NoError(t, err)

	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}

func TestCanonicalJSONDeterminism(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/fork_fanout.yaml")
	require.NoError(t, err)

	var first []byte
	for i := 0; i < 5; i++ {
		result, err := Run(scenario)
		require.NoError(t, err)

		data, err := Snapshot(scenario.Name, result)
		require.NoError(t, err)
		if first == nil {
			first = data
			continue
		}
		assert.Equal(t, string(first), string(data), "run %d differs", i)
	}
}

func TestSnapshot_OmitsEmptyFields(t *testing.T) {
	result := NewResult()
	result.Trace = append(result.Trace,
		TraceEvent{Type: EventReload, Seq: 1, Status: "applied", Registered: []string{"a"}},
		TraceEvent{Type: EventExecute, Seq: 2, Input: "a", Result: 1, Executed: []Execution{{Path: "a"}}},
		TraceEvent{Type: EventWarning, Seq: 3, Message: "careful"},
	)

	data, err := Snapshot("omit", result)
	require.NoError(t, err)
	assert.Equal(t,
		`{"scenario_name":"omit","trace":[`+
			`{"registered":["a"],"seq":1,"status":"applied","type":"reload"},`+
			`{"executed":[{"path":"a"}],"input":"a","result":1,"seq":2,"type":"execute"},`+
			`{"message":"careful","seq":3,"type":"warning"}]}`,
		string(data))
}
