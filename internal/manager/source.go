package manager

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/cmdtree/internal/command"
	"github.com/roach88/cmdtree/internal/value"
)

// ErrNoDocument is returned by a Source that has nothing for a namespace.
var ErrNoDocument = errors.New("no command document")

// DocumentBase is the file name, without extension, DirSource looks for.
var DocumentBase = strings.TrimSuffix(command.DocumentName, filepath.Ext(command.DocumentName))

// Document is a decoded command document and where it came from.
type Document struct {
	Name string
	Data value.Object
}

// Source supplies the command document of a namespace.
type Source interface {
	Open(ctx context.Context, namespace string) (*Document, error)
}

// DirSource reads <Dir>/<namespace>/commands.<ext>, trying the extensions
// in value.Extensions order.
type DirSource struct {
	Dir string
}

// Path returns the first document file present for namespace.
func (s DirSource) Path(namespace string) (string, error) {
	base := filepath.Join(s.Dir, namespace, DocumentBase)
	for _, ext := range value.Extensions {
		p := base + ext
		info, err := os.Stat(p)
		if err == nil && !info.IsDir() {
			return p, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("stat %s: %w", p, err)
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNoDocument, filepath.Join(s.Dir, namespace))
}

func (s DirSource) Open(ctx context.Context, namespace string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.Path(namespace)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	return decodeDocument(p, data)
}

// Namespaces lists the subdirectories of Dir that hold a command document.
func (s DirSource) Namespaces() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Dir, err)
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := s.Path(e.Name()); err == nil {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

// IsDocument reports whether name is a file DirSource would read.
func IsDocument(name string) bool {
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	if strings.TrimSuffix(base, ext) != DocumentBase {
		return false
	}
	for _, e := range value.Extensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// FileSource reads a single document file for whatever namespace is asked.
type FileSource string

func (f FileSource) Open(ctx context.Context, _ string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(string(f))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNoDocument, string(f))
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", string(f), err)
	}
	return decodeDocument(string(f), data)
}

// MemorySource serves documents held in memory, keyed by namespace.
type MemorySource map[string]value.Object

func (m MemorySource) Open(_ context.Context, namespace string) (*Document, error) {
	doc, ok := m[namespace]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoDocument, namespace)
	}
	return &Document{Name: "memory:" + namespace, Data: doc.Clone()}, nil
}

func decodeDocument(name string, data []byte) (*Document, error) {
	v, err := value.DecodeFile(name, data)
	if err != nil {
		return nil, &DocumentError{Name: name, Err: err}
	}
	obj, ok := v.(value.Object)
	if !ok {
		return nil, &DocumentError{Name: name, Err: fmt.Errorf("top level is %s, not an object", value.Kind(v))}
	}
	return &Document{Name: name, Data: obj}, nil
}

// DocumentError is a document that exists but cannot be decoded.
type DocumentError struct {
	Name string
	Err  error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("invalid document %s: %v", e.Name, e.Err)
}

func (e *DocumentError) Unwrap() error { return e.Err }
