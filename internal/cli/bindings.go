package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/roach88/cmdtree/internal/command"
	"github.com/roach88/cmdtree/internal/dispatch"
	"github.com/roach88/cmdtree/internal/resource"
)

// binder is satisfied by compiler.Env and manager.Manager.
type binder interface {
	SetExecutable(id resource.ID, cmd dispatch.Command)
	SetRedirectModifier(id resource.ID, mod dispatch.RedirectModifier)
}

// Call is one executable invocation seen by an echo binding.
type Call struct {
	Executable string         `json:"executable"`
	Args       map[string]any `json:"args,omitempty"`
}

// String renders the call as "ns:path name=value ...", arguments sorted.
func (c Call) String() string {
	var sb strings.Builder
	sb.WriteString(c.Executable)
	for _, name := range slices.Sorted(maps.Keys(c.Args)) {
		fmt.Fprintf(&sb, " %s=%v", name, c.Args[name])
	}
	return sb.String()
}

// echo binds every executable a document references to a command that
// records the call, optionally prints it, and returns 1. Redirect modifiers
// pass the source through unchanged.
type echo struct {
	w     io.Writer
	mu    sync.Mutex
	calls []Call
}

func newEcho(w io.Writer) *echo {
	return &echo{w: w}
}

// bind walks nodes and binds each referenced executable and modifier on b.
func (e *echo) bind(b binder, nodes []*command.Node) {
	for _, n := range nodes {
		_ = n.Walk(func(c *command.Node) error {
			if c.Executable != nil {
				b.SetExecutable(*c.Executable, e.command(*c.Executable))
			}
			if c.Redirect != nil && c.Redirect.Modifier != nil {
				b.SetRedirectModifier(*c.Redirect.Modifier, passThrough)
			}
			return nil
		})
	}
}

func (e *echo) command(id resource.ID) dispatch.Command {
	return func(ctx *dispatch.Context) (int, error) {
		call := Call{Executable: id.String(), Args: ctx.Arguments()}
		e.mu.Lock()
		defer e.mu.Unlock()
		e.calls = append(e.calls, call)
		if e.w != nil {
			fmt.Fprintln(e.w, call)
		}
		return 1, nil
	}
}

// take returns and clears the recorded calls.
func (e *echo) take() []Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	calls := e.calls
	e.calls = nil
	return calls
}

func passThrough(ctx *dispatch.Context) ([]dispatch.Source, error) {
	return []dispatch.Source{ctx.Source()}, nil
}

// levelSource is a command source holding a single permission level.
type levelSource int

func (l levelSource) HasPermission(level int) bool { return int(l) >= level }
