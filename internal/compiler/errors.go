package compiler

import (
	"fmt"
)

// Compile error codes (E200-E299)
const (
	ErrInvalidNode         = "E200" // nil node or structurally invalid tree
	ErrUnknownArgumentType = "E201" // type id not in any registry
	ErrArgumentParameters  = "E202" // factory rejected the parameter bag
	ErrUnknownExecutable   = "E203" // executable reference not bound
	ErrUnknownModifier     = "E204" // redirect modifier reference not bound
	ErrTypedRoot           = "E205" // top-level node is a typed argument
	ErrBuilderRejected     = "E206" // dispatcher builder refused the node
)

// CompileError reports why a command tree could not be compiled. Path is
// the qualified path of the offending node, for example "ns:foo/bar".
type CompileError struct {
	Path    string
	Code    string
	Message string
	Err     error
}

func (e *CompileError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Path, e.Message)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}
