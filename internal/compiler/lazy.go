package compiler

import (
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/roach88/cmdtree/internal/dispatch"
	"github.com/roach88/cmdtree/internal/resource"
)

// LazyRedirect is a dispatch.RedirectResolver that finds its target by path
// the first time it is asked, so targets may be registered after the node
// that redirects to them.
//
// A successful lookup is cached. A failed one is retried on every call, and
// only the first failure is logged. Target is safe for concurrent use; racing
// callers may both perform the lookup, which is harmless.
type LazyRedirect struct {
	dispatcher *dispatch.Dispatcher
	target     string
	origin     string
	logger     *slog.Logger

	node   atomic.Pointer[dispatch.Node]
	cached atomic.Pointer[dispatch.Node]
	warned atomic.Bool
}

// NewLazyRedirect returns a resolver for target, a "/"-separated path from
// the root of d. origin names the redirecting node in the warning.
func NewLazyRedirect(d *dispatch.Dispatcher, target, origin string, logger *slog.Logger) *LazyRedirect {
	if logger == nil {
		logger = slog.Default()
	}
	return &LazyRedirect{dispatcher: d, target: target, origin: origin, logger: logger}
}

// Bind records the node that owns this redirect.
func (l *LazyRedirect) Bind(n *dispatch.Node) { l.node.Store(n) }

// Node returns the node that owns this redirect, or nil before Bind.
func (l *LazyRedirect) Node() *dispatch.Node { return l.node.Load() }

// TargetPath returns the unresolved target path.
func (l *LazyRedirect) TargetPath() string { return l.target }

// Resolved reports whether the target has been found.
func (l *LazyRedirect) Resolved() bool { return l.cached.Load() != nil }

// Target returns the redirect target, or nil while it cannot be found.
func (l *LazyRedirect) Target() *dispatch.Node {
	if n := l.cached.Load(); n != nil {
		return n
	}
	if n := l.dispatcher.FindNode(resource.SplitPath(l.target)); n != nil {
		l.cached.Store(n)
		return n
	}
	if l.warned.CompareAndSwap(false, true) {
		l.logger.Warn("missing redirect target",
			"node", l.describe(),
			"target", l.target)
	}
	return nil
}

// describe prefers the node's current position in the dispatcher and falls
// back to the origin it was compiled from.
func (l *LazyRedirect) describe() string {
	if n := l.node.Load(); n != nil {
		if p := l.dispatcher.Path(n); len(p) > 0 {
			if l.origin != "" {
				return l.origin + " (" + strings.Join(p, " ") + ")"
			}
			return strings.Join(p, " ")
		}
	}
	return l.origin
}
