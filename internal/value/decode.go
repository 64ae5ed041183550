package value

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned by DecodeFile for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Extensions lists the file extensions DecodeFile understands, in lookup order.
var Extensions = []string{".json", ".yaml", ".yml", ".toml", ".cue"}

// DecodeJSON parses a JSON document.
func DecodeJSON(data []byte) (Value, error) {
	v, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}
	return v, nil
}

// DecodeYAML parses a single YAML document. Mapping keys must be strings.
func DecodeYAML(data []byte) (Value, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var raw any
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return Object{}, nil
		}
		return nil, fmt.Errorf("yaml: %w", err)
	}

	v, err := FromAny(raw)
	if err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}
	return v, nil
}

// DecodeTOML parses a TOML document. The result is always an Object.
// Date and time values are rejected.
func DecodeTOML(data []byte) (Value, error) {
	var raw map[string]any
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, fmt.Errorf("toml: %w", err)
	}

	v, err := FromAny(raw)
	if err != nil {
		return nil, fmt.Errorf("toml: %w", err)
	}
	return v, nil
}

// DecodeCUE evaluates a CUE document. Every field must be concrete;
// definitions and hidden fields are dropped the same way cue export does.
func DecodeCUE(filename string, data []byte) (Value, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("cue: %w", err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("cue: %w", err)
	}

	jsonBytes, err := v.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("cue: %w", err)
	}
	return DecodeJSON(jsonBytes)
}

// DecodeFile picks a decoder by the extension of name.
func DecodeFile(name string, data []byte) (Value, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".json":
		return DecodeJSON(data)
	case ".yaml", ".yml":
		return DecodeYAML(data)
	case ".toml":
		return DecodeTOML(data)
	case ".cue":
		return DecodeCUE(name, data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
