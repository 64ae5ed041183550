// Package dispatch parses command input against a tree of literal and
// argument nodes and runs the command it lands on.
//
// Trees are made from Builders and attached to a Dispatcher's root with
// Register. A node may redirect to another node, in which case parsing
// continues among the target's children. Redirects are resolved through a
// RedirectResolver each time they are followed, so the target may be
// attached after the redirecting node.
//
// Redirect modifiers can replace the source of a redirected context with any
// number of sources. A forking redirect runs the target once per source,
// ignores individual failures and reports how many runs succeeded.
package dispatch
