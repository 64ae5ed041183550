package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/cmdtree/internal/command"
	"github.com/roach88/cmdtree/internal/resource"
	"github.com/roach88/cmdtree/internal/value"
)

// LoadResult is a command document read from disk.
type LoadResult struct {
	File      string
	Namespace string
	Document  value.Object
	Nodes     []*command.Node
	Digest    string
}

// LoadError represents an error that occurred while loading a document.
type LoadError struct {
	Code    string
	Message string
	File    string
	Err     error
}

func (e *LoadError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s: %s", e.File, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoadDocument reads, decodes and parses the command document at path.
// The decoder is picked by extension: json, yaml, yml, toml or cue.
func LoadDocument(path, namespace string) (*LoadResult, error) {
	if _, err := resource.New(namespace, "x"); err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("invalid namespace %q", namespace), Err: err}
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("document not found: %s", path), File: path, Err: err}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing document: %v", err), File: path, Err: err}
	}
	if info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a file: %s", path), File: path}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("reading document: %v", err), File: path, Err: err}
	}

	decoded, err := value.DecodeFile(path, data)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeDecodeFailed, Message: err.Error(), File: path, Err: err}
	}
	doc, ok := decoded.(value.Object)
	if !ok {
		return nil, &LoadError{
			Code:    ErrCodeDecodeFailed,
			Message: fmt.Sprintf("document is not an object (got %s)", value.Kind(decoded)),
			File:    path,
		}
	}

	result := &LoadResult{File: path, Namespace: namespace, Document: doc}
	if result.Digest, err = value.Digest(doc); err != nil {
		return nil, &LoadError{Code: ErrCodeDecodeFailed, Message: err.Error(), File: path, Err: err}
	}

	nodes, err := command.ReadAll(namespace, doc)
	if err != nil {
		return result, &LoadError{Code: ErrCodeParseFailed, Message: err.Error(), File: path, Err: err}
	}
	result.Nodes = nodes
	return result, nil
}

// errorCode picks the CLI error code for err.
func errorCode(err error) string {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code
	}
	return ErrCodeGeneric
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeDecodeFailed = "E004" // Document could not be decoded
	ErrCodeNotFound     = "E005" // Path not found
	ErrCodeParseFailed  = "E006" // Document is not a valid command tree
	ErrCodeWriteFailed  = "E007" // File write error
	ErrCodeSyntax       = "E008" // Input did not parse against the tree
	ErrCodeExecFailed   = "E009" // Executable or modifier returned an error
	ErrCodeHistory      = "E010" // Reload history unavailable
	ErrCodeTestFailed   = "E011" // One or more scenarios failed
)
