package dispatch

import (
	"fmt"
	"maps"
	"slices"
)

// Range is a half-open byte range of the input.
type Range struct {
	Start int
	End   int
}

// IsEmpty reports whether the range covers nothing.
func (r Range) IsEmpty() bool { return r.Start == r.End }

func encompass(a, b Range) Range {
	return Range{Start: min(a.Start, b.Start), End: max(a.End, b.End)}
}

// ParsedArgument is an argument value and where it came from.
type ParsedArgument struct {
	Range  Range
	Result any
}

// ParsedNode is a node matched during parsing.
type ParsedNode struct {
	Node  *Node
	Range Range
}

// ContextBuilder accumulates parse state. Each branch tried by the parser
// works on its own copy.
type ContextBuilder struct {
	dispatcher *Dispatcher
	source     Source
	root       *Node
	arguments  map[string]ParsedArgument
	nodes      []ParsedNode
	command    Command
	child      *ContextBuilder
	modifier   RedirectModifier
	forks      bool
	rng        Range
}

func newContextBuilder(d *Dispatcher, src Source, root *Node, start int) *ContextBuilder {
	return &ContextBuilder{
		dispatcher: d,
		source:     src,
		root:       root,
		arguments:  map[string]ParsedArgument{},
		rng:        Range{Start: start, End: start},
	}
}

// Source returns the source parsing runs as.
func (b *ContextBuilder) Source() Source { return b.source }

// Nodes returns the nodes matched so far.
func (b *ContextBuilder) Nodes() []ParsedNode { return b.nodes }

// Child returns the context of the redirect target, if one was followed.
func (b *ContextBuilder) Child() *ContextBuilder { return b.child }

// Range returns the input covered by the matched nodes.
func (b *ContextBuilder) Range() Range { return b.rng }

// Command returns the command of the last node matched.
func (b *ContextBuilder) Command() Command { return b.command }

// LastChild follows redirects to the innermost context.
func (b *ContextBuilder) LastChild() *ContextBuilder {
	last := b
	for last.child != nil {
		last = last.child
	}
	return last
}

func (b *ContextBuilder) copy() *ContextBuilder {
	c := *b
	c.arguments = maps.Clone(b.arguments)
	c.nodes = slices.Clone(b.nodes)
	return &c
}

func (b *ContextBuilder) withArgument(name string, arg ParsedArgument) {
	b.arguments[name] = arg
}

func (b *ContextBuilder) withNode(n *Node, r Range) {
	b.nodes = append(b.nodes, ParsedNode{Node: n, Range: r})
	b.rng = encompass(b.rng, r)
	b.modifier = n.RedirectModifier()
	b.forks = n.IsFork()
}

func (b *ContextBuilder) build(input string) *Context {
	ctx := &Context{
		source:    b.source,
		input:     input,
		arguments: b.arguments,
		command:   b.command,
		root:      b.root,
		nodes:     b.nodes,
		modifier:  b.modifier,
		forks:     b.forks,
		rng:       b.rng,
	}
	if b.child != nil {
		ctx.child = b.child.build(input)
	}
	return ctx
}

// Context is what a Command or RedirectModifier sees.
type Context struct {
	source    Source
	input     string
	arguments map[string]ParsedArgument
	command   Command
	root      *Node
	nodes     []ParsedNode
	child     *Context
	modifier  RedirectModifier
	forks     bool
	rng       Range
}

// Source returns the source the command runs as.
func (c *Context) Source() Source { return c.source }

// Input returns the whole input line.
func (c *Context) Input() string { return c.input }

// Child returns the context continuing at a redirect target.
func (c *Context) Child() *Context { return c.child }

// Nodes returns the nodes matched in this context.
func (c *Context) Nodes() []ParsedNode { return c.nodes }

// HasNodes reports whether anything was matched.
func (c *Context) HasNodes() bool { return len(c.nodes) > 0 }

// RootNode returns the node parsing started from.
func (c *Context) RootNode() *Node { return c.root }

// Range returns the input covered by this context.
func (c *Context) Range() Range { return c.rng }

// IsForked reports whether the last node matched forks.
func (c *Context) IsForked() bool { return c.forks }

// Argument returns the parsed value of the named argument.
func (c *Context) Argument(name string) (any, bool) {
	arg, ok := c.arguments[name]
	if !ok {
		return nil, false
	}
	return arg.Result, true
}

// Arguments returns every parsed argument by name.
func (c *Context) Arguments() map[string]any {
	out := make(map[string]any, len(c.arguments))
	for name, arg := range c.arguments {
		out[name] = arg.Result
	}
	return out
}

// Path returns the literal and argument names matched, in order.
func (c *Context) Path() []string {
	out := make([]string, 0, len(c.nodes))
	for _, n := range c.nodes {
		out = append(out, n.Node.Name())
	}
	return out
}

// CopyFor returns the context with a different source.
func (c *Context) CopyFor(src Source) *Context {
	cp := *c
	cp.source = src
	return &cp
}

// ArgumentAs returns the named argument converted to T.
func ArgumentAs[T any](c *Context, name string) (T, error) {
	var zero T
	raw, ok := c.Argument(name)
	if !ok {
		return zero, fmt.Errorf("no such argument %q", name)
	}
	v, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("argument %q is %T, not %T", name, raw, zero)
	}
	return v, nil
}
