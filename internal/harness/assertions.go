package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/cmdtree/internal/value"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string      // Assertion type for categorization
	Expected string      // Human-readable expected outcome
	Actual   string      // Human-readable actual outcome
	Executed []Execution // Every execution, for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nExecuted:\n")
	for i, ex := range e.Executed {
		fmt.Fprintf(&buf, "  [%d] %s %v\n", i+1, ex.Path, ex.Args)
	}

	return buf.String()
}

// assertTraceContains checks if an executable ran with matching args
// (subset match).
func assertTraceContains(executed []Execution, assertion Assertion) error {
	for _, ex := range executed {
		if ex.Path == assertion.Path && matchArgs(ex.Args, assertion.Args) {
			return nil
		}
	}

	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("%s with args %v", assertion.Path, assertion.Args),
		Actual:   "not found in trace",
		Executed: executed,
	}
}

// assertTraceOrder checks if executables first ran in the specified order.
// Runs don't need to be consecutive (intervening runs are allowed).
func assertTraceOrder(executed []Execution, assertion Assertion) error {
	// Step 1: Find first position of each expected path
	positions := make(map[string]int)
	for i, ex := range executed {
		if _, seen := positions[ex.Path]; !seen {
			positions[ex.Path] = i + 1 // 1-indexed for readability
		}
	}

	// Step 2: Verify all paths found
	for _, p := range assertion.Paths {
		if positions[p] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all paths present: %v", assertion.Paths),
				Actual:   fmt.Sprintf("missing path: %s", p),
				Executed: executed,
			}
		}
	}

	// Step 3: Verify order
	for i := 1; i < len(assertion.Paths); i++ {
		prev := assertion.Paths[i-1]
		curr := assertion.Paths[i]

		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("paths in order: %v", assertion.Paths),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Executed: executed,
			}
		}
	}

	return nil
}

// assertTraceCount checks if the executable ran exactly the specified
// number of times.
func assertTraceCount(executed []Execution, assertion Assertion) error {
	count := 0
	for _, ex := range executed {
		if ex.Path == assertion.Path {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d runs of %s", assertion.Count, assertion.Path),
			Actual:   fmt.Sprintf("%d runs", count),
			Executed: executed,
		}
	}

	return nil
}

// assertRegistered checks that every named command was registered by some
// reload.
func assertRegistered(registered []string, executed []Execution, assertion Assertion) error {
	var missing []string
	for _, c := range assertion.Commands {
		if !slices.Contains(registered, c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &AssertionError{
			Type:     AssertRegistered,
			Expected: fmt.Sprintf("commands registered: %v", assertion.Commands),
			Actual:   fmt.Sprintf("missing: %v (registered %v)", missing, registered),
			Executed: executed,
		}
	}
	return nil
}

// matchArgs checks if actual args contain all expected args (subset match).
// Extra keys in actual are ignored.
func matchArgs(actual, expected map[string]any) bool {
	for key, expectedVal := range expected {
		actualVal, exists := actual[key]
		if !exists {
			return false
		}
		if !valuesEqual(actualVal, expectedVal) {
			return false
		}
	}
	return true
}

// valuesEqual compares two values as documents, so an int parsed from YAML
// equals the int32 an integer argument produced.
func valuesEqual(actual, expected any) bool {
	a, err := value.FromAny(actual)
	if err != nil {
		return false
	}
	e, err := value.FromAny(expected)
	if err != nil {
		return false
	}
	return value.Equal(a, e)
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string
	executed := result.Executions()

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(executed, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(executed, assertion)
		case AssertTraceCount:
			err = assertTraceCount(executed, assertion)
		case AssertRegistered:
			err = assertRegistered(result.Registered(), executed, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
