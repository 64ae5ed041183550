package command

import (
	"github.com/roach88/cmdtree/internal/perm"
	"github.com/roach88/cmdtree/internal/resource"
	"github.com/roach88/cmdtree/internal/value"
)

// WriteAll writes nodes into a fresh document object.
func WriteAll(namespace string, nodes []*Node) value.Object {
	doc := make(value.Object, len(nodes))
	for _, n := range nodes {
		n.Write(namespace, doc)
	}
	return doc
}

// Write stores n under its name in parent. Absent fields are omitted, a
// level with a canonical name is written as that name, and references to
// the node itself collapse to true.
func (n *Node) Write(namespace string, parent value.Object) {
	parent[n.Name] = n.Object(namespace)
}

// Object returns the document object for n without its name.
func (n *Node) Object(namespace string) value.Object {
	obj := value.Object{}

	if n.Type != nil {
		obj[KeyType] = value.String(n.Type.String())
	}
	if n.Parameters != nil {
		obj[KeyParameters] = n.Parameters.Clone()
	}
	if n.Level != nil {
		obj[KeyLevel] = writeLevel(*n.Level)
	}
	if n.Executable != nil {
		obj[KeyExecutable] = encodeRef(namespace, n.Path, *n.Executable)
	}
	if n.Redirect != nil {
		obj[KeyRedirect] = n.Redirect.value(namespace, n.Path)
	}
	if len(n.Arguments) > 0 {
		args := make(value.Object, len(n.Arguments))
		for _, c := range n.Arguments {
			c.Write(namespace, args)
		}
		obj[KeyArguments] = args
	}

	return obj
}

func (r *Redirect) value(namespace, path string) value.Value {
	if r.Modifier == nil && !r.Forks {
		return value.String(r.Target)
	}
	obj := value.Object{KeyTarget: value.String(r.Target)}
	if r.Modifier != nil {
		obj[KeyModifier] = encodeRef(namespace, path, *r.Modifier)
	}
	if r.Forks {
		obj[KeyForks] = value.Bool(true)
	}
	return obj
}

// encodeRef is the inverse of decodeRef.
func encodeRef(namespace, path string, ref resource.ID) value.Value {
	switch {
	case ref.Namespace == namespace && ref.Path == path:
		return value.Bool(true)
	case ref.Namespace == namespace:
		return value.String(ref.Path)
	default:
		return value.String(ref.String())
	}
}

func writeLevel(l perm.Level) value.Value {
	if name, ok := perm.Name(l); ok {
		return value.String(name)
	}
	return value.Int(l)
}
