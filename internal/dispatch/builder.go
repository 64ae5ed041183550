package dispatch

// Builder configures a node before it joins a tree.
type Builder struct {
	kind        Kind
	name        string
	argType     ArgumentType
	command     Command
	requirement Requirement
	redirect    RedirectResolver
	modifier    RedirectModifier
	forks       bool
	children    []*Node
	err         error
}

// Literal starts a literal node matched by name.
func Literal(name string) *Builder {
	return &Builder{kind: KindLiteral, name: name}
}

// Argument starts an argument node parsed by t.
func Argument(name string, t ArgumentType) *Builder {
	return &Builder{kind: KindArgument, name: name, argType: t}
}

// Requires gates the node.
func (b *Builder) Requires(req Requirement) *Builder {
	b.requirement = req
	return b
}

// Executes sets the command run when input ends here.
func (b *Builder) Executes(cmd Command) *Builder {
	b.command = cmd
	return b
}

// Then adds a child. Once a redirect is set no more children can be added;
// Build reports ErrRedirectedChildren.
func (b *Builder) Then(child *Node) *Builder {
	if b.redirect != nil {
		b.err = ErrRedirectedChildren
		return b
	}
	b.children = append(b.children, child)
	return b
}

// Redirect jumps to target without changing the source.
func (b *Builder) Redirect(target *Node) *Builder {
	return b.Forward(Static(target), nil, false)
}

// Fork jumps to target once per source returned by modifier.
func (b *Builder) Fork(target *Node, modifier RedirectModifier) *Builder {
	return b.Forward(Static(target), modifier, true)
}

// Forward sets a redirect resolved on demand. Children added before the
// redirect are kept and take precedence over it while parsing.
func (b *Builder) Forward(resolver RedirectResolver, modifier RedirectModifier, fork bool) *Builder {
	b.redirect = resolver
	b.modifier = modifier
	b.forks = fork
	return b
}

// Build returns the configured node.
func (b *Builder) Build() (*Node, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.name == "" {
		return nil, ErrEmptyName
	}
	if b.kind == KindArgument && b.argType == nil {
		return nil, ErrNoArgumentType
	}

	n := newNode(b.kind, b.name)
	n.argType = b.argType
	n.command = b.command
	n.requirement = b.requirement
	n.redirect = b.redirect
	n.modifier = b.modifier
	n.forks = b.forks
	for _, c := range b.children {
		n.AddChild(c)
	}
	return n, nil
}
