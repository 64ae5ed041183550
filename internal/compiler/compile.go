package compiler

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/cmdtree/internal/argtype"
	"github.com/roach88/cmdtree/internal/command"
	"github.com/roach88/cmdtree/internal/dispatch"
	"github.com/roach88/cmdtree/internal/perm"
)

// Options carries what the compiler needs besides the tree itself.
type Options struct {
	// Namespace qualifies node paths in errors and redirect warnings.
	Namespace string
	// Logger receives redirect warnings. Nil means slog.Default.
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

func (o Options) qualify(n *command.Node) string {
	if o.Namespace == "" {
		return n.Path
	}
	return n.Self(o.Namespace).String()
}

// Assemble compiles n and its descendants into dispatcher nodes without
// attaching them. Nodes are built parent first; a redirect is wrapped in a
// LazyRedirect that looks its target up in d when first needed.
//
// Children are attached before the redirect, so a node may carry both. While
// parsing, children are tried first and the redirect is followed only when
// no child matches the rest of the input.
func Assemble(b Bindings, n *command.Node, d *dispatch.Dispatcher, opts Options) (*dispatch.Node, error) {
	if n == nil {
		return nil, &CompileError{Code: ErrInvalidNode, Message: "nil node"}
	}
	path := opts.qualify(n)

	// 1. Literal or typed argument
	var nb *dispatch.Builder
	if n.IsLiteral() {
		nb = dispatch.Literal(n.Name)
	} else {
		typ, err := b.ArgumentType(*n.Type, n.Parameters)
		if err != nil {
			code := ErrArgumentParameters
			if errors.Is(err, argtype.ErrUnknownType) {
				code = ErrUnknownArgumentType
			}
			return nil, &CompileError{
				Path:    path,
				Code:    code,
				Message: fmt.Sprintf("argument type %s", n.Type),
				Err:     err,
			}
		}
		nb = dispatch.Argument(n.Name, typ)
	}

	// 2. Permission
	if n.Level != nil {
		nb.Requires(requireLevel(*n.Level))
	}

	// 3. Executable
	if n.Executable != nil {
		cmd, ok := b.Executable(*n.Executable)
		if !ok {
			return nil, &CompileError{
				Path:    path,
				Code:    ErrUnknownExecutable,
				Message: fmt.Sprintf("unknown executable %s", n.Executable),
			}
		}
		nb.Executes(cmd)
	}

	// 4. Children
	for _, c := range n.Arguments {
		child, err := Assemble(b, c, d, opts)
		if err != nil {
			return nil, err
		}
		nb.Then(child)
	}

	// 5. Redirect, resolved lazily
	var lazy *LazyRedirect
	if r := n.Redirect; r != nil {
		var mod dispatch.RedirectModifier
		if r.Modifier != nil {
			var ok bool
			mod, ok = b.RedirectModifier(*r.Modifier)
			if !ok {
				return nil, &CompileError{
					Path:    path,
					Code:    ErrUnknownModifier,
					Message: fmt.Sprintf("unknown redirect modifier %s", r.Modifier),
				}
			}
		}
		lazy = NewLazyRedirect(d, r.Target, path, opts.logger())
		nb.Forward(lazy, mod, r.Forks)
	}

	node, err := nb.Build()
	if err != nil {
		return nil, &CompileError{Path: path, Code: ErrBuilderRejected, Message: "node rejected", Err: err}
	}
	if lazy != nil {
		lazy.Bind(node)
	}
	return node, nil
}

// Register validates and compiles a single top-level command and attaches it
// to the root of d. A typed root fails immediately. Nothing is attached
// unless the whole tree compiles.
func Register(b Bindings, n *command.Node, d *dispatch.Dispatcher, opts Options) error {
	if n == nil {
		return &CompileError{Code: ErrInvalidNode, Message: "nil node"}
	}
	if !n.IsLiteral() {
		return &CompileError{
			Path:    opts.qualify(n),
			Code:    ErrTypedRoot,
			Message: fmt.Sprintf("root node %q must be a literal, not %s", n.Name, n.Type),
			Err:     dispatch.ErrNonLiteralRoot,
		}
	}
	if errs := Validate([]*command.Node{n}); len(errs) > 0 {
		return &CompileError{
			Path:    opts.qualify(n),
			Code:    ErrInvalidNode,
			Message: fmt.Sprintf("%d validation error(s)", len(errs)),
			Err:     joinValidation(errs),
		}
	}

	node, err := Assemble(b, n, d, opts)
	if err != nil {
		return err
	}
	if err := d.Register(node); err != nil {
		return &CompileError{Path: opts.qualify(n), Code: ErrBuilderRejected, Message: "register", Err: err}
	}
	return nil
}

// Skipped is a top-level command that failed to compile.
type Skipped struct {
	Name string
	Err  error
}

// Result is the outcome of RegisterAll.
type Result struct {
	Registered []string
	Skipped    []Skipped
}

// RegisterAll registers each top-level command independently. A command that
// fails is skipped; its siblings are still registered.
func RegisterAll(b Bindings, nodes []*command.Node, d *dispatch.Dispatcher, opts Options) Result {
	var res Result
	for _, n := range nodes {
		if err := Register(b, n, d, opts); err != nil {
			name := ""
			if n != nil {
				name = n.Name
			}
			res.Skipped = append(res.Skipped, Skipped{Name: name, Err: err})
			continue
		}
		res.Registered = append(res.Registered, n.Name)
	}
	return res
}

// requireLevel gates a node on the source's permission. Parsing without a
// source, as introspection does, fails every gated node.
func requireLevel(level perm.Level) dispatch.Requirement {
	n := int(level)
	return func(src dispatch.Source) bool {
		return src != nil && src.HasPermission(n)
	}
}

func joinValidation(errs []ValidationError) error {
	out := make([]error, len(errs))
	for i, e := range errs {
		out[i] = e
	}
	return errors.Join(out...)
}
