package command

import (
	"github.com/roach88/cmdtree/internal/perm"
	"github.com/roach88/cmdtree/internal/resource"
	"github.com/roach88/cmdtree/internal/value"
)

// Node is one entry of a declarative command tree.
//
// A Node with a nil Type is a literal matched verbatim by Name; otherwise it
// is a typed argument named Name. Path is the "/"-joined chain of ancestor
// names ending in Name and is derived by Read and the Builder.
//
// Nodes are treated as immutable once built. The compiler never writes to them.
type Node struct {
	Name       string
	Path       string
	Type       *resource.ID
	Parameters value.Object
	Level      *perm.Level
	Executable *resource.ID
	Redirect   *Redirect
	Arguments  []*Node
}

// Redirect continues matching at another node, addressed by Target path.
// The target does not have to exist when the redirect is compiled.
type Redirect struct {
	Target   string
	Modifier *resource.ID
	Forks    bool
}

// IsLiteral reports whether n matches its name verbatim.
func (n *Node) IsLiteral() bool {
	return n.Type == nil
}

// Self returns the reference that names n in namespace: {namespace, n.Path}.
// A "true" executable or modifier resolves to this.
func (n *Node) Self(namespace string) resource.ID {
	return resource.ID{Namespace: namespace, Path: n.Path}
}

// Child returns the direct child named name, or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Arguments {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Find returns the descendant at path, relative to n. The empty path is n.
func (n *Node) Find(path string) *Node {
	cur := n
	for _, seg := range resource.SplitPath(path) {
		cur = cur.Child(seg)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Walk visits n and its descendants in pre-order. A non-nil error from fn
// stops the walk and is returned.
func (n *Node) Walk(fn func(*Node) error) error {
	if err := fn(n); err != nil {
		return err
	}
	for _, c := range n.Arguments {
		if err := c.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

// Equal reports structural equality. The order of Arguments is ignored.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.Name != other.Name || n.Path != other.Path {
		return false
	}
	if !equalRef(n.Type, other.Type) || !equalRef(n.Executable, other.Executable) {
		return false
	}
	if (n.Level == nil) != (other.Level == nil) || (n.Level != nil && *n.Level != *other.Level) {
		return false
	}
	if (n.Parameters == nil) != (other.Parameters == nil) || !value.Equal(n.Parameters, other.Parameters) {
		return false
	}
	if !n.Redirect.Equal(other.Redirect) {
		return false
	}
	return equalChildren(n.Arguments, other.Arguments)
}

// Equal reports whether two redirects are identical. Nil equals only nil.
func (r *Redirect) Equal(other *Redirect) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.Target == other.Target && r.Forks == other.Forks && equalRef(r.Modifier, other.Modifier)
}

func equalRef(a, b *resource.ID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalChildren(a, b []*Node) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
outer:
	for _, ac := range a {
		for i, bc := range b {
			if !used[i] && ac.Equal(bc) {
				used[i] = true
				continue outer
			}
		}
		return false
	}
	return true
}
