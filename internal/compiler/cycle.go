package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/cmdtree/internal/command"
)

// RedirectWarning describes a redirect that is legal but suspicious.
//
// Neither kind is an error: a missing target may be registered by another
// namespace, and redirect loops are how commands like "execute ... run"
// chain themselves.
type RedirectWarning struct {
	Path    []string `json:"path"`    // Redirect chain: ["a", "b", "a"]
	Message string   `json:"message"` // Human-readable description
	Level   string   `json:"level"`   // "warning" or "info"
}

// AnalyzeRedirects performs static analysis of the redirects in a document.
//
// It reports:
//   - redirect targets not defined in nodes (info, since they may come from
//     elsewhere at runtime)
//   - redirect cycles in which no node can end input, so any input that
//     enters the cycle can never run (warning)
//
// The algorithm:
//  1. Build node path → redirect target graph
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1 or self-loops whose members are all dead ends
func AnalyzeRedirects(nodes []*command.Node) []RedirectWarning {
	index := make(map[string]*command.Node)
	for _, root := range nodes {
		if root == nil {
			continue
		}
		_ = root.Walk(func(n *command.Node) error {
			index[n.Path] = n
			return nil
		})
	}

	graph := make(redirectGraph)
	var warnings []RedirectWarning

	for _, path := range sortedKeys(index) {
		n := index[path]
		if n.Redirect == nil {
			continue
		}
		target := n.Redirect.Target
		if _, ok := index[target]; !ok {
			warnings = append(warnings, RedirectWarning{
				Path:    []string{path, target},
				Message: fmt.Sprintf("Redirect target not defined here: %s → %s", path, target),
				Level:   "info",
			})
			continue
		}
		graph[path] = append(graph[path], target)
	}

	for _, scc := range tarjanSCC(graph) {
		if len(scc) == 1 && !hasSelfLoop(scc[0], graph) {
			continue
		}
		if slices.ContainsFunc(scc, func(p string) bool { return canEnd(index[p]) }) {
			continue
		}
		warnings = append(warnings, cycleSCCToWarning(scc, graph))
	}

	return warnings
}

// canEnd reports whether input can stop at or below n without redirecting.
func canEnd(n *command.Node) bool {
	return n.Executable != nil || len(n.Arguments) > 0
}

// redirectGraph maps node path → redirect target paths.
type redirectGraph map[string][]string

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// hasSelfLoop checks if a node redirects to itself.
func hasSelfLoop(node string, graph redirectGraph) bool {
	return slices.Contains(graph[node], node)
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
//
// Returns a list of SCCs, where each SCC is a list of node paths.
// Single-node SCCs without self-loops are NOT cycles. Nodes are visited in
// sorted order so the result is deterministic.
func tarjanSCC(graph redirectGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root node: pop the stack and create an SCC
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			slices.Sort(scc)
			sccs = append(sccs, scc)
		}
	}

	for _, node := range sortedKeys(graph) {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

// cycleSCCToWarning converts an SCC to a RedirectWarning.
func cycleSCCToWarning(scc []string, graph redirectGraph) RedirectWarning {
	if len(scc) == 1 {
		p := scc[0]
		return RedirectWarning{
			Path:    []string{p, p},
			Message: fmt.Sprintf("Node redirects to itself and can never run: %s → %s", p, p),
			Level:   "warning",
		}
	}

	path := reconstructCyclePath(scc, graph)
	return RedirectWarning{
		Path:    path,
		Message: fmt.Sprintf("Redirect cycle can never run: %s", strings.Join(path, " → ")),
		Level:   "warning",
	}
}

// reconstructCyclePath follows redirects within the SCC from its first
// member until it returns there.
func reconstructCyclePath(scc []string, graph redirectGraph) []string {
	if len(scc) == 0 {
		return []string{}
	}

	members := make(map[string]bool)
	for _, node := range scc {
		members[node] = true
	}

	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if members[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}
		if next == "" {
			break
		}

		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}

	return path
}

