package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/cmdtree/internal/value"
)

// GoldenDir is where golden traces live, relative to the test's package.
const GoldenDir = "testdata/golden"

// TraceSnapshot captures the complete trace for a scenario execution.
// All fields use canonical JSON serialization for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Trace        []TraceEvent `json:"trace"`
}

// toValue converts a TraceSnapshot to a document for canonical JSON
// serialization. Empty fields are left out.
func (s *TraceSnapshot) toValue() (value.Object, error) {
	trace := make(value.Array, len(s.Trace))
	for i, event := range s.Trace {
		ev := value.Object{
			"type": value.String(event.Type),
			"seq":  value.Int(event.Seq),
		}
		switch event.Type {
		case EventReload:
			ev["status"] = value.String(event.Status)
			ev["registered"] = stringArray(event.Registered)
			if len(event.Skipped) > 0 {
				ev["skipped"] = stringArray(event.Skipped)
			}
		case EventExecute:
			ev["input"] = value.String(event.Input)
			ev["result"] = value.Int(event.Result)
			if event.Error != "" {
				ev["error"] = value.String(event.Error)
			}
			executed := make(value.Array, len(event.Executed))
			for j, ex := range event.Executed {
				obj := value.Object{"path": value.String(ex.Path)}
				if len(ex.Args) > 0 {
					args, err := value.FromAny(ex.Args)
					if err != nil {
						return nil, err
					}
					obj["args"] = args
				}
				if ex.Source != "" {
					obj["source"] = value.String(ex.Source)
				}
				executed[j] = obj
			}
			ev["executed"] = executed
		case EventWarning:
			ev["message"] = value.String(event.Message)
			if len(event.Attrs) > 0 {
				attrs := make(value.Object, len(event.Attrs))
				for k, v := range event.Attrs {
					attrs[k] = value.String(v)
				}
				ev["attrs"] = attrs
			}
		}
		trace[i] = ev
	}

	return value.Object{
		"scenario_name": value.String(s.ScenarioName),
		"trace":         trace,
	}, nil
}

func stringArray(ss []string) value.Array {
	arr := make(value.Array, len(ss))
	for i, s := range ss {
		arr[i] = value.String(s)
	}
	return arr
}

// Snapshot renders a result's trace as canonical JSON.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		Trace:        result.Trace,
	}
	v, err := snapshot.toValue()
	if err != nil {
		return nil, err
	}
	return value.MarshalCanonical(v)
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's trace against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)

	return nil
}
