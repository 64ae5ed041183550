package dispatch

import (
	"slices"
	"strings"
	"sync"
)

// Kind distinguishes the three node shapes of a dispatch tree.
type Kind int

const (
	KindRoot Kind = iota
	KindLiteral
	KindArgument
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindLiteral:
		return "literal"
	case KindArgument:
		return "argument"
	default:
		return "unknown"
	}
}

// Source is whoever runs a command. The dispatcher only asks it about
// permissions; hosts embed whatever else they need.
type Source interface {
	HasPermission(level int) bool
}

// Command runs when input ends on a node. It returns a result count.
type Command func(ctx *Context) (int, error)

// RedirectModifier maps the source of a redirected context to the sources
// the target runs with. Returning several sources fans the context out.
type RedirectModifier func(ctx *Context) ([]Source, error)

// Requirement gates a node on its source.
type Requirement func(src Source) bool

// ArgumentType parses one argument value from the reader.
type ArgumentType interface {
	Parse(r *StringReader) (any, error)
}

// RedirectResolver returns the node a redirect currently points at, or nil.
// It is consulted every time the redirect is followed.
type RedirectResolver interface {
	Target() *Node
}

type staticRedirect struct{ node *Node }

func (s staticRedirect) Target() *Node { return s.node }

// Static returns a resolver that always returns node.
func Static(node *Node) RedirectResolver {
	return staticRedirect{node: node}
}

// Node is one node of a live dispatch tree. Everything except the child set
// is fixed when the node is built; children may be added concurrently with
// lookups.
type Node struct {
	kind        Kind
	name        string
	argType     ArgumentType
	command     Command
	requirement Requirement
	redirect    RedirectResolver
	modifier    RedirectModifier
	forks       bool

	mu        sync.RWMutex
	children  map[string]*Node
	literals  map[string]*Node
	arguments map[string]*Node
}

func newNode(kind Kind, name string) *Node {
	return &Node{
		kind:      kind,
		name:      name,
		children:  map[string]*Node{},
		literals:  map[string]*Node{},
		arguments: map[string]*Node{},
	}
}

// NewRoot returns an empty root node.
func NewRoot() *Node {
	return newNode(KindRoot, "")
}

// Kind returns the node kind.
func (n *Node) Kind() Kind { return n.kind }

// Name returns the literal text or argument name. The root has no name.
func (n *Node) Name() string { return n.name }

// ArgumentType returns the parser of an argument node.
func (n *Node) ArgumentType() ArgumentType { return n.argType }

// Command returns the node's command, or nil.
func (n *Node) Command() Command { return n.command }

// RedirectModifier returns the modifier applied when the redirect is followed.
func (n *Node) RedirectModifier() RedirectModifier { return n.modifier }

// IsFork reports whether the redirect forks.
func (n *Node) IsFork() bool { return n.forks }

// HasRedirect reports whether the node declares a redirect, resolved or not.
func (n *Node) HasRedirect() bool { return n.redirect != nil }

// Redirect asks the resolver for the current target. It returns nil when
// the node has no redirect or the target cannot be found yet.
func (n *Node) Redirect() *Node {
	if n.redirect == nil {
		return nil
	}
	return n.redirect.Target()
}

// CanUse reports whether src passes the node's requirement.
func (n *Node) CanUse(src Source) bool {
	return n.requirement == nil || n.requirement(src)
}

// UsageText is how the node appears in usage strings.
func (n *Node) UsageText() string {
	if n.kind == KindArgument {
		return "<" + n.name + ">"
	}
	return n.name
}

// Child returns the direct child called name, or nil.
func (n *Node) Child(name string) *Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.children[name]
}

// Children returns the children sorted with literals first, each group by name.
func (n *Node) Children() []*Node {
	n.mu.RLock()
	out := make([]*Node, 0, len(n.children))
	for _, c := range n.children {
		out = append(out, c)
	}
	n.mu.RUnlock()

	slices.SortFunc(out, func(a, b *Node) int {
		if a.kind != b.kind {
			return int(a.kind) - int(b.kind)
		}
		return strings.Compare(a.name, b.name)
	})
	return out
}

// HasChildren reports whether the node has any children.
func (n *Node) HasChildren() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.children) > 0
}

// AddChild attaches child, replacing an existing child of the same name.
func (n *Node) AddChild(child *Node) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if old, ok := n.children[child.name]; ok {
		delete(n.literals, old.name)
		delete(n.arguments, old.name)
	}
	n.children[child.name] = child
	switch child.kind {
	case KindLiteral:
		n.literals[child.name] = child
	case KindArgument:
		n.arguments[child.name] = child
	}
}

// relevantNodes returns the children worth trying at r. A literal matching
// the next word shadows every argument child.
func (n *Node) relevantNodes(r *StringReader) []*Node {
	n.mu.RLock()
	if len(n.literals) > 0 {
		word := r.Clone().ReadWord()
		if lit, ok := n.literals[word]; ok {
			n.mu.RUnlock()
			return []*Node{lit}
		}
	}
	args := make([]*Node, 0, len(n.arguments))
	for _, a := range n.arguments {
		args = append(args, a)
	}
	n.mu.RUnlock()

	slices.SortFunc(args, func(a, b *Node) int { return strings.Compare(a.name, b.name) })
	return args
}

// parse consumes the node's token from r and records it in ctx.
func (n *Node) parse(r *StringReader, ctx *ContextBuilder) error {
	start := r.Cursor()
	switch n.kind {
	case KindLiteral:
		if !strings.HasPrefix(r.Remaining(), n.name) {
			return NewSyntaxError(ErrIncorrectLiteral, r, "expected %q", n.name)
		}
		end := start + len(n.name)
		if end < len(r.String()) && r.String()[end] != argumentSeparator {
			return NewSyntaxError(ErrIncorrectLiteral, r, "expected %q", n.name)
		}
		r.SetCursor(end)
	case KindArgument:
		result, err := n.argType.Parse(r)
		if err != nil {
			return err
		}
		ctx.withArgument(n.name, ParsedArgument{Range: Range{Start: start, End: r.Cursor()}, Result: result})
	default:
		return syntaxErr(ErrUnknownCommand, r)
	}
	ctx.withNode(n, Range{Start: start, End: r.Cursor()})
	return nil
}
