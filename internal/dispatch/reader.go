package dispatch

import (
	"strconv"
	"strings"
)

const (
	syntaxEscape      = '\\'
	syntaxDoubleQuote = '"'
	syntaxSingleQuote = '\''
	argumentSeparator = ' '
)

// StringReader is a cursor over command input. It works on bytes; the
// tokens it recognizes are ASCII, and quoted strings pass other bytes through.
type StringReader struct {
	input  string
	cursor int
}

// NewStringReader returns a reader positioned at the start of input.
func NewStringReader(input string) *StringReader {
	return &StringReader{input: input}
}

// Clone returns an independent reader at the same position.
func (r *StringReader) Clone() *StringReader {
	c := *r
	return &c
}

// String returns the whole input.
func (r *StringReader) String() string { return r.input }

// Cursor returns the current offset.
func (r *StringReader) Cursor() int { return r.cursor }

// SetCursor moves the cursor.
func (r *StringReader) SetCursor(c int) { r.cursor = c }

// Remaining returns the unread input.
func (r *StringReader) Remaining() string { return r.input[r.cursor:] }

// Read returns the input consumed so far.
func (r *StringReader) Read() string { return r.input[:r.cursor] }

// CanRead reports whether at least one more byte is available.
func (r *StringReader) CanRead() bool { return r.CanReadN(1) }

// CanReadN reports whether n more bytes are available.
func (r *StringReader) CanReadN(n int) bool { return r.cursor+n <= len(r.input) }

// Peek returns the current byte without consuming it.
func (r *StringReader) Peek() byte { return r.input[r.cursor] }

// PeekAt returns the byte offset bytes ahead.
func (r *StringReader) PeekAt(offset int) byte { return r.input[r.cursor+offset] }

// Next consumes and returns the current byte.
func (r *StringReader) Next() byte {
	c := r.input[r.cursor]
	r.cursor++
	return c
}

// Skip consumes one byte.
func (r *StringReader) Skip() { r.cursor++ }

// SkipWhitespace consumes spaces and tabs.
func (r *StringReader) SkipWhitespace() {
	for r.CanRead() && (r.Peek() == ' ' || r.Peek() == '\t') {
		r.Skip()
	}
}

func isAllowedNumber(c byte) bool {
	return c >= '0' && c <= '9' || c == '.' || c == '-'
}

func isQuote(c byte) bool {
	return c == syntaxDoubleQuote || c == syntaxSingleQuote
}

// IsAllowedInUnquotedString reports whether c may appear in a bare word.
func IsAllowedInUnquotedString(c byte) bool {
	return c >= '0' && c <= '9' ||
		c >= 'A' && c <= 'Z' ||
		c >= 'a' && c <= 'z' ||
		c == '_' || c == '-' || c == '.' || c == '+'
}

func (r *StringReader) readNumber() string {
	start := r.cursor
	for r.CanRead() && isAllowedNumber(r.Peek()) {
		r.Skip()
	}
	return r.input[start:r.cursor]
}

// ReadInt reads a 32-bit integer.
func (r *StringReader) ReadInt() (int32, error) {
	n, err := r.readInteger(32)
	return int32(n), err
}

// ReadLong reads a 64-bit integer.
func (r *StringReader) ReadLong() (int64, error) {
	return r.readInteger(64)
}

func (r *StringReader) readInteger(bits int) (int64, error) {
	start := r.cursor
	number := r.readNumber()
	if number == "" {
		return 0, syntaxErr(ErrExpectedInt, r)
	}
	n, err := strconv.ParseInt(number, 10, bits)
	if err != nil {
		r.cursor = start
		return 0, NewSyntaxError(ErrInvalidInt, r, "%q", number)
	}
	return n, nil
}

// ReadFloat reads a 32-bit float.
func (r *StringReader) ReadFloat() (float32, error) {
	f, err := r.readFloating(32)
	return float32(f), err
}

// ReadDouble reads a 64-bit float.
func (r *StringReader) ReadDouble() (float64, error) {
	return r.readFloating(64)
}

func (r *StringReader) readFloating(bits int) (float64, error) {
	start := r.cursor
	number := r.readNumber()
	if number == "" {
		return 0, syntaxErr(ErrExpectedFloat, r)
	}
	f, err := strconv.ParseFloat(number, bits)
	if err != nil {
		r.cursor = start
		return 0, NewSyntaxError(ErrInvalidFloat, r, "%q", number)
	}
	return f, nil
}

// ReadUnquotedString reads a bare word, possibly empty.
func (r *StringReader) ReadUnquotedString() string {
	start := r.cursor
	for r.CanRead() && IsAllowedInUnquotedString(r.Peek()) {
		r.Skip()
	}
	return r.input[start:r.cursor]
}

// ReadQuotedString reads a single- or double-quoted string with backslash escapes.
func (r *StringReader) ReadQuotedString() (string, error) {
	if !r.CanRead() {
		return "", nil
	}
	next := r.Peek()
	if !isQuote(next) {
		return "", syntaxErr(ErrExpectedStartQuote, r)
	}
	r.Skip()
	return r.readStringUntil(next)
}

func (r *StringReader) readStringUntil(terminator byte) (string, error) {
	var b strings.Builder
	escaped := false
	for r.CanRead() {
		c := r.Next()
		switch {
		case escaped:
			if c != terminator && c != syntaxEscape {
				r.cursor--
				return "", NewSyntaxError(ErrInvalidEscape, r, "%q", string(c))
			}
			b.WriteByte(c)
			escaped = false
		case c == syntaxEscape:
			escaped = true
		case c == terminator:
			return b.String(), nil
		default:
			b.WriteByte(c)
		}
	}
	return "", syntaxErr(ErrExpectedEndQuote, r)
}

// ReadString reads a quoted string or a bare word.
func (r *StringReader) ReadString() (string, error) {
	if !r.CanRead() {
		return "", nil
	}
	next := r.Peek()
	if isQuote(next) {
		r.Skip()
		return r.readStringUntil(next)
	}
	return r.ReadUnquotedString(), nil
}

// ReadBool reads true or false.
func (r *StringReader) ReadBool() (bool, error) {
	start := r.cursor
	s, err := r.ReadString()
	if err != nil {
		return false, err
	}
	switch s {
	case "":
		return false, syntaxErr(ErrExpectedBool, r)
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		r.cursor = start
		return false, NewSyntaxError(ErrInvalidBool, r, "%q", s)
	}
}

// ReadWord reads up to the next argument separator.
func (r *StringReader) ReadWord() string {
	start := r.cursor
	for r.CanRead() && r.Peek() != argumentSeparator {
		r.Skip()
	}
	return r.input[start:r.cursor]
}
