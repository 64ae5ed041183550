package argtype

import (
	"fmt"
	"math"

	"github.com/roach88/cmdtree/internal/resource"
	"github.com/roach88/cmdtree/internal/value"
)

// RequireParameters fails when a type that needs parameters got none.
func RequireParameters(typeID resource.ID, params value.Object) error {
	if params == nil {
		return fmt.Errorf("%w: parameters are required for argument type %s", ErrInvalidParameters, typeID)
	}
	return nil
}

// OptionalInt returns params[name] as an integer, or fallback when absent.
// Integral floats are accepted.
func OptionalInt(params value.Object, name string, fallback int64) (int64, error) {
	raw, ok := params[name]
	if !ok {
		return fallback, nil
	}
	switch v := raw.(type) {
	case value.Int:
		return int64(v), nil
	case value.Float:
		f := float64(v)
		if f != math.Trunc(f) {
			return 0, fmt.Errorf("%w: %s must be an integer, got %v", ErrInvalidParameters, name, f)
		}
		// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
		if f >= math.MaxInt64 || f < math.MinInt64 {
			return 0, fmt.Errorf("%w: %s out of range, got %v", ErrInvalidParameters, name, f)
		}
		return int64(f), nil
	default:
		return 0, fmt.Errorf("%w: %s must be a number, got %s", ErrInvalidParameters, name, value.Kind(raw))
	}
}

// OptionalFloat returns params[name] as a float, or fallback when absent.
func OptionalFloat(params value.Object, name string, fallback float64) (float64, error) {
	raw, ok := params[name]
	if !ok {
		return fallback, nil
	}
	switch v := raw.(type) {
	case value.Int:
		return float64(v), nil
	case value.Float:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("%w: %s must be a number, got %s", ErrInvalidParameters, name, value.Kind(raw))
	}
}

// OptionalString returns params[name] as a string, or fallback when absent.
func OptionalString(params value.Object, name string, fallback string) (string, error) {
	raw, ok := params[name]
	if !ok {
		return fallback, nil
	}
	s, ok := raw.(value.String)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string, got %s", ErrInvalidParameters, name, value.Kind(raw))
	}
	return string(s), nil
}

// StringList returns params[name] as a non-empty list of strings.
func StringList(params value.Object, name string) ([]string, error) {
	raw, ok := params[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s is required", ErrInvalidParameters, name)
	}
	arr, ok := raw.(value.Array)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be an array, got %s", ErrInvalidParameters, name, value.Kind(raw))
	}
	if len(arr) == 0 {
		return nil, fmt.Errorf("%w: %s must not be empty", ErrInvalidParameters, name)
	}
	out := make([]string, 0, len(arr))
	for i, elem := range arr {
		s, ok := elem.(value.String)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] must be a string, got %s", ErrInvalidParameters, name, i, value.Kind(elem))
		}
		out = append(out, string(s))
	}
	return out, nil
}
