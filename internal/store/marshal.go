package store

import (
	"fmt"
	"time"

	"github.com/roach88/cmdtree/internal/value"
)

// timeLayout stores timestamps as sortable UTC text.
const timeLayout = time.RFC3339Nano

// marshalNames converts command names to canonical JSON TEXT for storage.
func marshalNames(names []string) (string, error) {
	arr := make(value.Array, len(names))
	for i, n := range names {
		arr[i] = value.String(n)
	}
	data, err := value.MarshalCanonical(arr)
	if err != nil {
		return "", fmt.Errorf("marshal names: %w", err)
	}
	return string(data), nil
}

// unmarshalNames parses a JSON array of strings.
func unmarshalNames(data string) ([]string, error) {
	if data == "" || data == "[]" {
		return []string{}, nil
	}
	v, err := value.DecodeJSON([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal names: %w", err)
	}
	arr, ok := v.(value.Array)
	if !ok {
		return nil, fmt.Errorf("unmarshal names: expected array, got %s", value.Kind(v))
	}
	out := make([]string, 0, len(arr))
	for i, elem := range arr {
		s, ok := elem.(value.String)
		if !ok {
			return nil, fmt.Errorf("unmarshal names: element %d is %s", i, value.Kind(elem))
		}
		out = append(out, string(s))
	}
	return out, nil
}

func marshalTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func unmarshalTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unmarshal time: %w", err)
	}
	return t, nil
}
