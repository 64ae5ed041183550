package command

import (
	"errors"
	"fmt"
)

// ErrParse is wrapped by every *ParseError.
var ErrParse = errors.New("invalid command document")

// ErrPopRoot is the panic value of Builder.Pop on a root builder.
var ErrPopRoot = errors.New("cannot pop a root command builder")

// ParseError reports a malformed command document. A parse error discards
// the whole document it came from.
type ParseError struct {
	Path    string // command path, empty for the document root
	Field   string // offending key, empty when the node itself is malformed
	Message string
	Err     error // underlying cause, may be nil
}

func (e *ParseError) Error() string {
	loc := e.Path
	if e.Field != "" {
		if loc != "" {
			loc += "."
		}
		loc += e.Field
	}
	if loc == "" {
		loc = "<root>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", loc, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", loc, e.Message)
}

// Unwrap exposes both ErrParse and the underlying cause to errors.Is/As.
func (e *ParseError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrParse, e.Err}
	}
	return []error{ErrParse}
}
