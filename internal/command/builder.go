package command

import (
	"github.com/roach88/cmdtree/internal/perm"
	"github.com/roach88/cmdtree/internal/resource"
	"github.com/roach88/cmdtree/internal/value"
)

// Builder assembles a command tree without hand-writing a document.
// Setters return the receiver so calls chain; Argument descends into a new
// child and Pop climbs back out.
//
//	b := command.NewBuilder("ns", "foo").Executable().
//		Argument("bar").Type(resource.MustParse("brigadier:integer")).Executable().
//		Pop()
//	node := b.Assemble()
//
// Builders do not validate. Run the result through compiler.Validate.
type Builder struct {
	namespace  string
	name       string
	parent     *Builder
	typ        *resource.ID
	parameters value.Object
	level      *perm.Level
	executable *resource.ID
	redirect   *RedirectBuilder
	children   []*Builder
}

// NewBuilder starts a top-level command.
func NewBuilder(namespace, name string) *Builder {
	return &Builder{namespace: namespace, name: name}
}

// Argument attaches a new child and returns it.
func (b *Builder) Argument(name string) *Builder {
	child := &Builder{namespace: b.namespace, name: name, parent: b}
	b.children = append(b.children, child)
	return child
}

// Type makes the node a typed argument.
func (b *Builder) Type(id resource.ID) *Builder {
	b.typ = &id
	return b
}

// Parameter sets one entry of the parameter bag.
func (b *Builder) Parameter(name string, v value.Value) *Builder {
	if b.parameters == nil {
		b.parameters = value.Object{}
	}
	b.parameters[name] = v
	return b
}

// Parameters replaces the parameter bag.
func (b *Builder) Parameters(params value.Object) *Builder {
	b.parameters = params.Clone()
	return b
}

// Level gates the node behind a permission level.
func (b *Builder) Level(l perm.Level) *Builder {
	b.level = &l
	return b
}

// Executable makes the node executable by its own path.
func (b *Builder) Executable() *Builder {
	return b.ExecutableID(resource.ID{Namespace: b.namespace, Path: b.Path()})
}

// ExecutableAt points the node at another executable path in the same namespace.
func (b *Builder) ExecutableAt(path string) *Builder {
	return b.ExecutableID(resource.ID{Namespace: b.namespace, Path: path})
}

// ExecutableID points the node at a fully-qualified executable.
func (b *Builder) ExecutableID(id resource.ID) *Builder {
	b.executable = &id
	return b
}

// Redirect sets the redirect target, joining segments with "/", and returns
// the redirect builder. Use its Pop to get back to b.
func (b *Builder) Redirect(target ...string) *RedirectBuilder {
	b.redirect = &RedirectBuilder{owner: b, target: resource.JoinPath(target...)}
	return b.redirect
}

// Pop returns the parent builder. It panics with ErrPopRoot on a root.
func (b *Builder) Pop() *Builder {
	if b.parent == nil {
		panic(ErrPopRoot)
	}
	return b.parent
}

// IsRoot reports whether b is a top-level command.
func (b *Builder) IsRoot() bool {
	return b.parent == nil
}

// Root returns the top-level builder b belongs to.
func (b *Builder) Root() *Builder {
	root := b
	for root.parent != nil {
		root = root.parent
	}
	return root
}

// Path is the "/"-joined path of b.
func (b *Builder) Path() string {
	if b.parent == nil {
		return b.name
	}
	return resource.JoinPath(b.parent.Path(), b.name)
}

// Name returns the node name.
func (b *Builder) Name() string { return b.name }

// Namespace returns the namespace references are qualified with.
func (b *Builder) Namespace() string { return b.namespace }

// Assemble builds the node for b and its descendants. Children are built
// first; the returned tree shares no state with the builder.
func (b *Builder) Assemble() *Node {
	var args []*Node
	for _, c := range b.children {
		args = append(args, c.Assemble())
	}

	n := &Node{
		Name:       b.name,
		Path:       b.Path(),
		Parameters: b.parameters.Clone(),
		Arguments:  args,
	}
	if b.typ != nil {
		typ := *b.typ
		n.Type = &typ
	}
	if b.level != nil {
		level := *b.level
		n.Level = &level
	}
	if b.executable != nil {
		exec := *b.executable
		n.Executable = &exec
	}
	if b.redirect != nil {
		n.Redirect = b.redirect.Assemble()
	}
	return n
}

// RedirectBuilder configures the redirect of one command builder.
type RedirectBuilder struct {
	owner    *Builder
	target   string
	modifier *resource.ID
	forks    bool
}

// Modifier uses the owning node's own path as the modifier reference.
func (r *RedirectBuilder) Modifier() *RedirectBuilder {
	return r.ModifierID(resource.ID{Namespace: r.owner.namespace, Path: r.owner.Path()})
}

// ModifierAt uses path in the owner's namespace.
func (r *RedirectBuilder) ModifierAt(path string) *RedirectBuilder {
	return r.ModifierID(resource.ID{Namespace: r.owner.namespace, Path: path})
}

// ModifierID uses a fully-qualified modifier reference.
func (r *RedirectBuilder) ModifierID(id resource.ID) *RedirectBuilder {
	r.modifier = &id
	return r
}

// Forks makes the redirect fork.
func (r *RedirectBuilder) Forks() *RedirectBuilder {
	r.forks = true
	return r
}

// Pop returns the command builder that owns the redirect.
func (r *RedirectBuilder) Pop() *Builder {
	return r.owner
}

// Assemble builds the redirect.
func (r *RedirectBuilder) Assemble() *Redirect {
	out := &Redirect{Target: r.target, Forks: r.forks}
	if r.modifier != nil {
		mod := *r.modifier
		out.Modifier = &mod
	}
	return out
}
