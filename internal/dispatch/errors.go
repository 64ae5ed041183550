package dispatch

import (
	"errors"
	"fmt"
)

// Builder and registration errors.
var (
	ErrRedirectedChildren = errors.New("cannot add children to a redirected node")
	ErrNonLiteralRoot     = errors.New("only literal nodes can be registered at the root")
	ErrEmptyName          = errors.New("node name must not be empty")
	ErrNoArgumentType     = errors.New("argument node has no argument type")
)

// Syntax error kinds. Every *SyntaxError unwraps to one of these.
var (
	ErrUnknownCommand     = errors.New("unknown command")
	ErrUnknownArgument    = errors.New("incorrect argument for command")
	ErrExpectedSeparator  = errors.New("expected whitespace to end one argument, but found trailing data")
	ErrIncorrectLiteral   = errors.New("incorrect literal")
	ErrExpectedInt        = errors.New("expected integer")
	ErrInvalidInt         = errors.New("invalid integer")
	ErrExpectedFloat      = errors.New("expected float")
	ErrInvalidFloat       = errors.New("invalid float")
	ErrExpectedBool       = errors.New("expected bool")
	ErrInvalidBool        = errors.New("invalid bool")
	ErrExpectedStartQuote = errors.New("expected quote to start a string")
	ErrExpectedEndQuote   = errors.New("unclosed quoted string")
	ErrInvalidEscape      = errors.New("invalid escape sequence in quoted string")
	ErrValueTooLow        = errors.New("value too low")
	ErrValueTooHigh       = errors.New("value too high")
	ErrInvalidValue       = errors.New("invalid value")
)

// contextAmount is how much input SyntaxError shows before the cursor.
const contextAmount = 10

// SyntaxError is a parse or dispatch failure at a position in the input.
type SyntaxError struct {
	Err     error  // one of the Err* kinds above
	Message string // detail, may be empty
	Input   string
	Cursor  int // -1 when the error has no position
}

func (e *SyntaxError) Error() string {
	msg := e.Err.Error()
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if ctx := e.Context(); ctx != "" {
		return fmt.Sprintf("%s at position %d: %s", msg, e.Cursor, ctx)
	}
	return msg
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// Context returns the input leading up to the cursor with a marker, or "".
func (e *SyntaxError) Context() string {
	if e.Input == "" || e.Cursor < 0 {
		return ""
	}
	cursor := min(e.Cursor, len(e.Input))
	start := max(cursor-contextAmount, 0)

	prefix := ""
	if cursor > contextAmount {
		prefix = "..."
	}
	return prefix + e.Input[start:cursor] + "<--[HERE]"
}

// NewSyntaxError returns an error of kind err positioned at r's cursor.
// Argument types use it to report bad input.
func NewSyntaxError(err error, r *StringReader, format string, args ...any) *SyntaxError {
	return &SyntaxError{
		Err:     err,
		Message: fmt.Sprintf(format, args...),
		Input:   r.String(),
		Cursor:  r.Cursor(),
	}
}

func syntaxErr(err error, r *StringReader) *SyntaxError {
	return &SyntaxError{Err: err, Input: r.String(), Cursor: r.Cursor()}
}
