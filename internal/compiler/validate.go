package compiler

import (
	"fmt"

	"github.com/roach88/cmdtree/internal/command"
	"github.com/roach88/cmdtree/internal/resource"
)

// Validation error codes (E100-E199)
const (
	ErrNilNode           = "E100" // nil entry in the tree
	ErrInvalidName       = "E101" // node name is not a legal segment
	ErrRootTyped         = "E102" // top-level node has a type
	ErrDuplicateName     = "E103" // two siblings share a name
	ErrInvalidTarget     = "E104" // redirect target is not a legal path
	ErrPathMismatch      = "E105" // Path does not match the ancestor chain
	ErrInvalidTypeID     = "E106" // type id fails resource validation
	ErrInvalidReference  = "E107" // executable or modifier id fails resource validation
	ErrDuplicateTopLevel = "E108" // two top-level commands share a name
)

// ValidationError represents a structural problem in a command tree.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a set of top-level commands.
// Returns all errors found (does not fail-fast).
func Validate(nodes []*command.Node) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool)

	for i, n := range nodes {
		if n == nil {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("[%d]", i),
				Message: "nil command",
				Code:    ErrNilNode,
			})
			continue
		}

		// E108: duplicate top-level command
		if seen[n.Name] {
			errs = append(errs, ValidationError{
				Field:   n.Name,
				Message: fmt.Sprintf("duplicate command %q", n.Name),
				Code:    ErrDuplicateTopLevel,
			})
		}
		seen[n.Name] = true

		// E102: roots attach to the dispatcher root and must be literals
		if !n.IsLiteral() {
			errs = append(errs, ValidationError{
				Field:   fieldOf(n, "type"),
				Message: fmt.Sprintf("top-level command %q must be a literal", n.Name),
				Code:    ErrRootTyped,
			})
		}

		errs = append(errs, validateNode(n, "")...)
	}

	return errs
}

// validateNode checks n and its descendants. parent is the expected Path of
// n's parent.
func validateNode(n *command.Node, parent string) []ValidationError {
	var errs []ValidationError

	// E101: name must be a single legal segment
	if !resource.ValidSegment(n.Name) {
		errs = append(errs, ValidationError{
			Field:   fieldOf(n, "name"),
			Message: fmt.Sprintf("invalid name %q", n.Name),
			Code:    ErrInvalidName,
		})
	}

	// E105: Path is derived from the ancestor chain
	want := n.Name
	if parent != "" {
		want = resource.JoinPath(parent, n.Name)
	}
	if n.Path != want {
		errs = append(errs, ValidationError{
			Field:   fieldOf(n, "path"),
			Message: fmt.Sprintf("path %q does not match ancestors, expected %q", n.Path, want),
			Code:    ErrPathMismatch,
		})
	}

	// E106: type id
	if n.Type != nil {
		if err := n.Type.Validate(); err != nil {
			errs = append(errs, ValidationError{
				Field:   fieldOf(n, "type"),
				Message: err.Error(),
				Code:    ErrInvalidTypeID,
			})
		}
	}

	// E107: executable reference
	if n.Executable != nil {
		if err := n.Executable.Validate(); err != nil {
			errs = append(errs, ValidationError{
				Field:   fieldOf(n, "executable"),
				Message: err.Error(),
				Code:    ErrInvalidReference,
			})
		}
	}

	if r := n.Redirect; r != nil {
		// E104: target must be a legal path
		if !resource.ValidPath(r.Target) {
			errs = append(errs, ValidationError{
				Field:   fieldOf(n, "redirect.target"),
				Message: fmt.Sprintf("invalid redirect target %q", r.Target),
				Code:    ErrInvalidTarget,
			})
		}
		// E107: modifier reference
		if r.Modifier != nil {
			if err := r.Modifier.Validate(); err != nil {
				errs = append(errs, ValidationError{
					Field:   fieldOf(n, "redirect.modifier"),
					Message: err.Error(),
					Code:    ErrInvalidReference,
				})
			}
		}
	}

	names := make(map[string]bool)
	for i, c := range n.Arguments {
		if c == nil {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.arguments[%d]", fieldPrefix(n), i),
				Message: "nil argument",
				Code:    ErrNilNode,
			})
			continue
		}
		// E103: duplicate sibling
		if names[c.Name] {
			errs = append(errs, ValidationError{
				Field:   fieldOf(c, "name"),
				Message: fmt.Sprintf("duplicate argument %q under %q", c.Name, n.Path),
				Code:    ErrDuplicateName,
			})
		}
		names[c.Name] = true
		errs = append(errs, validateNode(c, want)...)
	}

	return errs
}

func fieldPrefix(n *command.Node) string {
	if n.Path != "" {
		return n.Path
	}
	return n.Name
}

func fieldOf(n *command.Node, field string) string {
	return fieldPrefix(n) + "." + field
}
