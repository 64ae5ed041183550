package command

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/roach88/cmdtree/internal/value"
)

// DocumentName is the file a namespace's commands are stored in.
const DocumentName = "commands.json"

// Provider collects builder-made commands for one namespace and renders
// them as a command document.
type Provider struct {
	namespace string
	commands  map[string]*Node
}

// NewProvider returns an empty provider for namespace.
func NewProvider(namespace string) *Provider {
	return &Provider{namespace: namespace, commands: map[string]*Node{}}
}

// Namespace returns the provider's namespace.
func (p *Provider) Namespace() string { return p.namespace }

// Command starts a new top-level command. It is not collected until passed to Add.
func (p *Provider) Command(name string) *Builder {
	return NewBuilder(p.namespace, name)
}

// Alias starts a command that redirects to target.
func (p *Provider) Alias(name, target string) *Builder {
	return p.Command(name).Redirect(target).Pop()
}

// Add assembles the command b belongs to. Any builder in the tree works; the
// root is found first. A later command with the same name replaces an earlier one.
func (p *Provider) Add(b *Builder) {
	root := b.Root().Assemble()
	p.commands[root.Name] = root
}

// AddRedirect adds the command owning r.
func (p *Provider) AddRedirect(r *RedirectBuilder) {
	p.Add(r.Pop())
}

// Nodes returns the collected commands in name order.
func (p *Provider) Nodes() []*Node {
	doc := p.Document()
	nodes := make([]*Node, 0, len(doc))
	for _, name := range doc.SortedKeys() {
		nodes = append(nodes, p.commands[name])
	}
	return nodes
}

// Document renders every collected command.
func (p *Provider) Document() value.Object {
	doc := make(value.Object, len(p.commands))
	for _, n := range p.commands {
		n.Write(p.namespace, doc)
	}
	return doc
}

// WriteTo writes the document as indented JSON.
func (p *Provider) WriteTo(w io.Writer) (int64, error) {
	data, err := value.MarshalIndent(p.Document(), "  ")
	if err != nil {
		return 0, fmt.Errorf("marshal %s commands: %w", p.namespace, err)
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Save writes <dir>/<namespace>/commands.json and returns its path.
func (p *Provider) Save(dir string) (string, error) {
	target := filepath.Join(dir, p.namespace, DocumentName)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create namespace directory: %w", err)
	}

	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", target, err)
	}
	if _, err := p.WriteTo(f); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", target, err)
	}
	return target, nil
}
