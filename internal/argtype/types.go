package argtype

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/roach88/cmdtree/internal/dispatch"
	"github.com/roach88/cmdtree/internal/resource"
)

// Bool parses true or false.
type Bool struct{}

func (Bool) Parse(r *dispatch.StringReader) (any, error) {
	return r.ReadBool()
}

// Integer parses an int32 within [Min, Max].
type Integer struct {
	Min, Max int32
}

func (t Integer) Parse(r *dispatch.StringReader) (any, error) {
	start := r.Cursor()
	n, err := r.ReadInt()
	if err != nil {
		return nil, err
	}
	if err := checkBounds(r, start, n, t.Min, t.Max); err != nil {
		return nil, err
	}
	return n, nil
}

// Long parses an int64 within [Min, Max].
type Long struct {
	Min, Max int64
}

func (t Long) Parse(r *dispatch.StringReader) (any, error) {
	start := r.Cursor()
	n, err := r.ReadLong()
	if err != nil {
		return nil, err
	}
	if err := checkBounds(r, start, n, t.Min, t.Max); err != nil {
		return nil, err
	}
	return n, nil
}

// Float parses a float32 within [Min, Max].
type Float struct {
	Min, Max float32
}

func (t Float) Parse(r *dispatch.StringReader) (any, error) {
	start := r.Cursor()
	f, err := r.ReadFloat()
	if err != nil {
		return nil, err
	}
	if err := checkBounds(r, start, f, t.Min, t.Max); err != nil {
		return nil, err
	}
	return f, nil
}

// Double parses a float64 within [Min, Max].
type Double struct {
	Min, Max float64
}

func (t Double) Parse(r *dispatch.StringReader) (any, error) {
	start := r.Cursor()
	f, err := r.ReadDouble()
	if err != nil {
		return nil, err
	}
	if err := checkBounds(r, start, f, t.Min, t.Max); err != nil {
		return nil, err
	}
	return f, nil
}

func checkBounds[T cmp.Ordered](r *dispatch.StringReader, start int, v, lo, hi T) error {
	switch {
	case v < lo:
		r.SetCursor(start)
		return dispatch.NewSyntaxError(dispatch.ErrValueTooLow, r, "must not be less than %v, found %v", lo, v)
	case v > hi:
		r.SetCursor(start)
		return dispatch.NewSyntaxError(dispatch.ErrValueTooHigh, r, "must not be more than %v, found %v", hi, v)
	}
	return nil
}

// StringKind selects how much input a String argument consumes.
type StringKind int

const (
	// Word is a single unquoted word.
	Word StringKind = iota
	// Phrase is a word or a quoted string.
	Phrase
	// Greedy is the rest of the input.
	Greedy
)

var stringKinds = map[string]StringKind{"word": Word, "phrase": Phrase, "greedy": Greedy}

// ParseStringKind maps "word", "phrase" and "greedy" to their kinds.
func ParseStringKind(s string) (StringKind, error) {
	k, ok := stringKinds[s]
	if !ok {
		return 0, fmt.Errorf("%w: unknown string type %q", ErrInvalidParameters, s)
	}
	return k, nil
}

// String parses text according to Kind.
type String struct {
	Kind StringKind
}

func (t String) Parse(r *dispatch.StringReader) (any, error) {
	switch t.Kind {
	case Greedy:
		s := r.Remaining()
		r.SetCursor(len(r.String()))
		return s, nil
	case Phrase:
		return r.ReadString()
	default:
		return r.ReadUnquotedString(), nil
	}
}

// Choice parses one word out of a fixed set.
type Choice struct {
	Values []string
}

func (t Choice) Parse(r *dispatch.StringReader) (any, error) {
	start := r.Cursor()
	word := r.ReadUnquotedString()
	if !slices.Contains(t.Values, word) {
		r.SetCursor(start)
		return nil, dispatch.NewSyntaxError(dispatch.ErrInvalidValue, r, "expected one of %s, found %q", strings.Join(t.Values, ", "), word)
	}
	return word, nil
}

// UUID parses a hyphenated UUID.
type UUID struct{}

func (UUID) Parse(r *dispatch.StringReader) (any, error) {
	start := r.Cursor()
	word := r.ReadUnquotedString()
	id, err := uuid.Parse(word)
	if err != nil || len(word) != 36 {
		r.SetCursor(start)
		return nil, dispatch.NewSyntaxError(dispatch.ErrInvalidValue, r, "invalid UUID %q", word)
	}
	return id, nil
}

// ID parses a namespaced identifier. Identifiers without a namespace get Namespace.
type ID struct {
	Namespace string
}

func (t ID) Parse(r *dispatch.StringReader) (any, error) {
	start := r.Cursor()
	word := r.ReadWord()
	id, err := resource.ParseIn(t.Namespace, word)
	if err != nil {
		r.SetCursor(start)
		return nil, dispatch.NewSyntaxError(dispatch.ErrInvalidValue, r, "%v", err)
	}
	return id, nil
}
