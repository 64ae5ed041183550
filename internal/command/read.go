package command

import (
	"fmt"
	"math"

	"github.com/roach88/cmdtree/internal/perm"
	"github.com/roach88/cmdtree/internal/resource"
	"github.com/roach88/cmdtree/internal/value"
)

// Document keys.
const (
	KeyType       = "type"
	KeyParameters = "parameters"
	KeyLevel      = "level"
	KeyExecutable = "executable"
	KeyRedirect   = "redirect"
	KeyArguments  = "arguments"

	KeyTarget   = "target"
	KeyModifier = "modifier"
	KeyForks    = "forks"
)

// ReadAll reads every top-level command of a document. Commands are
// returned in sorted name order so repeated reads are deterministic.
func ReadAll(namespace string, doc value.Object) ([]*Node, error) {
	nodes := make([]*Node, 0, len(doc))
	for _, name := range doc.SortedKeys() {
		obj, ok := doc[name].(value.Object)
		if !ok {
			return nil, &ParseError{Path: name, Message: fmt.Sprintf("command must be an object, got %s", value.Kind(doc[name]))}
		}
		n, err := Read(namespace, name, obj)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// Read reads a single top-level command named name.
func Read(namespace, name string, obj value.Object) (*Node, error) {
	return read(namespace, "", name, obj)
}

func read(namespace, parentPath, name string, obj value.Object) (*Node, error) {
	path := name
	if parentPath != "" {
		path = resource.JoinPath(parentPath, name)
	}
	if !resource.ValidSegment(name) {
		return nil, &ParseError{Path: path, Message: fmt.Sprintf("invalid command name %q", name)}
	}

	n := &Node{Name: name, Path: path}

	if raw, ok := obj[KeyType]; ok {
		s, ok := raw.(value.String)
		if !ok {
			return nil, fieldKind(path, KeyType, "string", raw)
		}
		id, err := resource.Parse(string(s))
		if err != nil {
			return nil, &ParseError{Path: path, Field: KeyType, Message: "invalid type", Err: err}
		}
		n.Type = &id
	}

	if raw, ok := obj[KeyParameters]; ok {
		params, ok := raw.(value.Object)
		if !ok {
			return nil, fieldKind(path, KeyParameters, "object", raw)
		}
		n.Parameters = params.Clone()
	}

	if raw, ok := obj[KeyLevel]; ok {
		level, err := readLevel(raw)
		if err != nil {
			return nil, &ParseError{Path: path, Field: KeyLevel, Message: "invalid level", Err: err}
		}
		n.Level = &level
	}

	if raw, ok := obj[KeyExecutable]; ok {
		ref, err := decodeRef(namespace, path, raw)
		if err != nil {
			return nil, &ParseError{Path: path, Field: KeyExecutable, Message: "invalid executable", Err: err}
		}
		n.Executable = ref
	}

	if raw, ok := obj[KeyRedirect]; ok {
		r, err := readRedirect(namespace, path, raw)
		if err != nil {
			return nil, err
		}
		n.Redirect = r
	}

	if raw, ok := obj[KeyArguments]; ok {
		args, ok := raw.(value.Object)
		if !ok {
			return nil, fieldKind(path, KeyArguments, "object", raw)
		}
		for _, childName := range args.SortedKeys() {
			childObj, ok := args[childName].(value.Object)
			if !ok {
				return nil, &ParseError{
					Path:    resource.JoinPath(path, childName),
					Message: fmt.Sprintf("argument must be an object, got %s", value.Kind(args[childName])),
				}
			}
			child, err := read(namespace, path, childName, childObj)
			if err != nil {
				return nil, err
			}
			n.Arguments = append(n.Arguments, child)
		}
	}

	return n, nil
}

func readRedirect(namespace, path string, raw value.Value) (*Redirect, error) {
	switch v := raw.(type) {
	case value.String:
		if v == "" {
			return nil, &ParseError{Path: path, Field: KeyRedirect, Message: "target must not be empty"}
		}
		return &Redirect{Target: string(v)}, nil
	case value.Object:
		rawTarget, ok := v[KeyTarget]
		if !ok {
			return nil, &ParseError{Path: path, Field: KeyRedirect + "." + KeyTarget, Message: "target is required"}
		}
		target, ok := rawTarget.(value.String)
		if !ok {
			return nil, fieldKind(path, KeyRedirect+"."+KeyTarget, "string", rawTarget)
		}
		if target == "" {
			return nil, &ParseError{Path: path, Field: KeyRedirect + "." + KeyTarget, Message: "target must not be empty"}
		}
		r := &Redirect{Target: string(target)}

		if rawMod, ok := v[KeyModifier]; ok {
			ref, err := decodeRef(namespace, path, rawMod)
			if err != nil {
				return nil, &ParseError{Path: path, Field: KeyRedirect + "." + KeyModifier, Message: "invalid modifier", Err: err}
			}
			r.Modifier = ref
		}

		if rawForks, ok := v[KeyForks]; ok {
			forks, ok := rawForks.(value.Bool)
			if !ok {
				return nil, fieldKind(path, KeyRedirect+"."+KeyForks, "boolean", rawForks)
			}
			r.Forks = bool(forks)
		}
		return r, nil
	default:
		return nil, fieldKind(path, KeyRedirect, "string or object", raw)
	}
}

// decodeRef resolves the bool|string shorthand shared by executable and
// redirect.modifier: true is the node itself, false is no reference, and a
// string is qualified with namespace unless it carries its own.
func decodeRef(namespace, path string, raw value.Value) (*resource.ID, error) {
	switch v := raw.(type) {
	case value.Bool:
		if !v {
			return nil, nil
		}
		id, err := resource.New(namespace, path)
		if err != nil {
			return nil, err
		}
		return &id, nil
	case value.String:
		id, err := resource.ParseIn(namespace, string(v))
		if err != nil {
			return nil, err
		}
		return &id, nil
	default:
		return nil, fmt.Errorf("expected boolean or string, got %s", value.Kind(raw))
	}
}

func readLevel(raw value.Value) (perm.Level, error) {
	switch v := raw.(type) {
	case value.Int:
		if v > math.MaxInt32 || v < math.MinInt32 {
			return 0, fmt.Errorf("level %d out of range", int64(v))
		}
		return perm.Level(v), nil
	case value.Float:
		f := float64(v)
		if f != math.Trunc(f) {
			return 0, fmt.Errorf("level must be an integer, got %v", f)
		}
		if f > math.MaxInt32 || f < math.MinInt32 {
			return 0, fmt.Errorf("level %v out of range", f)
		}
		return perm.Level(f), nil
	case value.String:
		return perm.Parse(string(v))
	default:
		return 0, fmt.Errorf("expected number or string, got %s", value.Kind(raw))
	}
}

func fieldKind(path, field, want string, got value.Value) *ParseError {
	return &ParseError{Path: path, Field: field, Message: fmt.Sprintf("expected %s, got %s", want, value.Kind(got))}
}
