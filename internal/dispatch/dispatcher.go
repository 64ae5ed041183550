package dispatch

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Dispatcher owns a command tree and runs input against it.
type Dispatcher struct {
	root *Node
}

// New returns a dispatcher with an empty root.
func New() *Dispatcher {
	return &Dispatcher{root: NewRoot()}
}

// Root returns the root node.
func (d *Dispatcher) Root() *Node { return d.root }

// Register attaches a literal node to the root, replacing any command of
// the same name.
func (d *Dispatcher) Register(n *Node) error {
	if n == nil || n.kind != KindLiteral {
		return ErrNonLiteralRoot
	}
	d.root.AddChild(n)
	return nil
}

// FindNode walks path from the root by child name. It returns nil when any
// segment is missing. The empty path is the root.
func (d *Dispatcher) FindNode(path []string) *Node {
	node := d.root
	for _, name := range path {
		node = node.Child(name)
		if node == nil {
			return nil
		}
	}
	return node
}

// Path returns the names leading from the root to target, or nil when
// target is not in the tree. Redirects are not followed.
func (d *Dispatcher) Path(target *Node) []string {
	if target == d.root {
		return []string{}
	}
	seen := map[*Node]bool{d.root: true}
	var walk func(n *Node, prefix []string) []string
	walk = func(n *Node, prefix []string) []string {
		for _, c := range n.Children() {
			if seen[c] {
				continue
			}
			seen[c] = true
			p := append(slices.Clone(prefix), c.name)
			if c == target {
				return p
			}
			if found := walk(c, p); found != nil {
				return found
			}
		}
		return nil
	}
	return walk(d.root, nil)
}

// ParseResults is the outcome of Parse.
type ParseResults struct {
	Context *ContextBuilder
	Reader  *StringReader
	Errors  map[*Node]error
}

func (p *ParseResults) succeeded() bool {
	return !p.Reader.CanRead() && len(p.Errors) == 0
}

// Parse matches input against the tree as src. Parsing never runs commands.
//
// At each node a literal child matching the next word shadows argument
// children. Children are tried before the node's redirect; the redirect is
// followed only when no child parses the rest of the input.
func (d *Dispatcher) Parse(input string, src Source) *ParseResults {
	ctx := newContextBuilder(d, src, d.root, 0)
	return d.parseNodes(d.root, NewStringReader(input), ctx)
}

func (d *Dispatcher) parseNodes(node *Node, r *StringReader, soFar *ContextBuilder) *ParseResults {
	src := soFar.Source()
	errs := map[*Node]error{}
	var potentials []*ParseResults
	cursor := r.Cursor()

	for _, child := range node.relevantNodes(r) {
		if !child.CanUse(src) {
			continue
		}
		ctx := soFar.copy()
		cr := r.Clone()
		if err := child.parse(cr, ctx); err != nil {
			errs[child] = err
			continue
		}
		if cr.CanRead() && cr.Peek() != argumentSeparator {
			errs[child] = syntaxErr(ErrExpectedSeparator, cr)
			continue
		}
		ctx.command = child.Command()

		var viaChildren *ParseResults
		if cr.CanReadN(2) && child.HasChildren() {
			next := cr.Clone()
			next.Skip()
			viaChildren = d.parseNodes(child, next, ctx)
			if viaChildren.succeeded() {
				potentials = append(potentials, viaChildren)
				continue
			}
		}

		if cr.CanRead() && child.HasRedirect() {
			if target := child.Redirect(); target != nil {
				next := cr.Clone()
				next.Skip()
				childCtx := newContextBuilder(d, src, target, next.Cursor())
				parse := d.parseNodes(target, next, childCtx)
				ctx.child = parse.Context
				potentials = append(potentials, &ParseResults{Context: ctx, Reader: parse.Reader, Errors: parse.Errors})
				continue
			}
		}

		if viaChildren != nil {
			potentials = append(potentials, viaChildren)
			continue
		}
		potentials = append(potentials, &ParseResults{Context: ctx, Reader: cr, Errors: map[*Node]error{}})
	}

	if len(potentials) > 0 {
		slices.SortStableFunc(potentials, func(a, b *ParseResults) int {
			if a.Reader.CanRead() != b.Reader.CanRead() {
				if a.Reader.CanRead() {
					return 1
				}
				return -1
			}
			if (len(a.Errors) == 0) != (len(b.Errors) == 0) {
				if len(a.Errors) == 0 {
					return -1
				}
				return 1
			}
			return 0
		})
		return potentials[0]
	}

	reset := r.Clone()
	reset.SetCursor(cursor)
	return &ParseResults{Context: soFar, Reader: reset, Errors: errs}
}

// Execute parses and runs input as src.
func (d *Dispatcher) Execute(input string, src Source) (int, error) {
	return d.ExecuteParsed(d.Parse(input, src))
}

// ExecuteParsed runs a parse result. Without forks the results of every
// command run are summed and the first error is returned. When a forking
// redirect was crossed, errors are swallowed and the number of successful
// runs is returned instead.
func (d *Dispatcher) ExecuteParsed(parse *ParseResults) (int, error) {
	if parse.Reader.CanRead() {
		if len(parse.Errors) == 1 {
			for _, err := range parse.Errors {
				return 0, err
			}
		}
		if parse.Context.Range().IsEmpty() {
			return 0, syntaxErr(ErrUnknownCommand, parse.Reader)
		}
		return 0, syntaxErr(ErrUnknownArgument, parse.Reader)
	}

	input := parse.Reader.String()
	original := parse.Context.build(input)

	var (
		result          int
		successfulForks int
		forked          bool
		foundCommand    bool
	)

	contexts := []*Context{original}
	for len(contexts) > 0 {
		var next []*Context
		for _, ctx := range contexts {
			child := ctx.Child()
			if child != nil {
				forked = forked || ctx.IsForked()
				if !child.HasNodes() {
					continue
				}
				foundCommand = true
				if ctx.modifier == nil {
					next = append(next, child.CopyFor(ctx.Source()))
					continue
				}
				sources, err := ctx.modifier(ctx)
				if err != nil {
					if !forked {
						return 0, err
					}
					continue
				}
				for _, s := range sources {
					next = append(next, child.CopyFor(s))
				}
				continue
			}
			if ctx.command != nil {
				foundCommand = true
				n, err := ctx.command(ctx)
				if err != nil {
					if !forked {
						return 0, err
					}
					continue
				}
				result += n
				successfulForks++
			}
		}
		contexts = next
	}

	if !foundCommand {
		return 0, &SyntaxError{Err: ErrUnknownCommand, Input: input, Cursor: len(input)}
	}
	if forked {
		return successfulForks, nil
	}
	return result, nil
}

// AllUsage lists every runnable input under node. With restricted set,
// nodes src cannot use are left out.
func (d *Dispatcher) AllUsage(node *Node, src Source, restricted bool) []string {
	var out []string
	d.allUsage(node, src, &out, "", restricted)
	return out
}

func (d *Dispatcher) allUsage(node *Node, src Source, out *[]string, prefix string, restricted bool) {
	if restricted && !node.CanUse(src) {
		return
	}
	if node.command != nil {
		*out = append(*out, prefix)
	}
	if node.HasRedirect() {
		if target := node.Redirect(); target != nil {
			var arrow string
			if target == d.root {
				arrow = "..."
			} else {
				arrow = "-> " + strings.Join(d.Path(target), " ")
			}
			if prefix == "" {
				*out = append(*out, node.UsageText()+" "+arrow)
			} else {
				*out = append(*out, prefix+" "+arrow)
			}
		}
	}
	for _, c := range node.Children() {
		p := c.UsageText()
		if prefix != "" {
			p = prefix + " " + p
		}
		d.allUsage(c, src, out, p, restricted)
	}
}

// IsSyntaxError reports whether err came from parsing rather than from a
// command or modifier.
func IsSyntaxError(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se)
}

// String renders the tree for debugging, one usage line per entry.
func (d *Dispatcher) String() string {
	var b strings.Builder
	for _, line := range d.AllUsage(d.root, nil, false) {
		fmt.Fprintln(&b, line)
	}
	return b.String()
}
