// Package resource implements namespaced identifiers ("namespace:path") and
// the "/"-separated command paths used to address nodes in a command tree.
package resource

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultNamespace is used when an identifier is parsed without a namespace
// and no ambient namespace applies.
const DefaultNamespace = "cmdtree"

const (
	// NamespaceSeparator splits the namespace from the path of an ID.
	NamespaceSeparator = ":"
	// PathSeparator joins command segments into a path.
	PathSeparator = "/"
)

// ErrInvalidID is returned for identifiers containing illegal characters.
var ErrInvalidID = errors.New("invalid identifier")

// ID is a namespaced identifier.
type ID struct {
	Namespace string
	Path      string
}

// New builds an ID, validating both halves.
func New(namespace, path string) (ID, error) {
	id := ID{Namespace: namespace, Path: path}
	if err := id.Validate(); err != nil {
		return ID{}, err
	}
	return id, nil
}

// MustNew is like New but panics on error.
// Use only in tests or with constant inputs.
func MustNew(namespace, path string) ID {
	id, err := New(namespace, path)
	if err != nil {
		panic(err)
	}
	return id
}

// Parse parses "namespace:path". A string without a namespace separator is
// placed in DefaultNamespace.
func Parse(s string) (ID, error) {
	return ParseIn(DefaultNamespace, s)
}

// MustParse is like Parse but panics on error.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// ParseIn parses s, qualifying it with namespace when s has no namespace of
// its own.
func ParseIn(namespace, s string) (ID, error) {
	ns, path, found := strings.Cut(s, NamespaceSeparator)
	if !found {
		return New(namespace, s)
	}
	return New(ns, path)
}

// Validate checks the character sets of both halves.
func (id ID) Validate() error {
	if id.Namespace == "" || !validChars(id.Namespace, isNamespaceChar) {
		return fmt.Errorf("%w: namespace %q in %q", ErrInvalidID, id.Namespace, id.String())
	}
	if id.Path == "" || !validChars(id.Path, isPathChar) {
		return fmt.Errorf("%w: path %q in %q", ErrInvalidID, id.Path, id.String())
	}
	return nil
}

func (id ID) String() string {
	return id.Namespace + NamespaceSeparator + id.Path
}

// IsZero reports whether id is the zero ID.
func (id ID) IsZero() bool {
	return id.Namespace == "" && id.Path == ""
}

// JoinPath joins command segments with PathSeparator.
func JoinPath(segments ...string) string {
	return strings.Join(segments, PathSeparator)
}

// SplitPath splits a command path into its segments.
// The empty path has no segments.
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, PathSeparator)
}

// ValidSegment reports whether s is a legal single command segment:
// non-empty, lowercase alphanumerics plus '.', '_' and '-'.
func ValidSegment(s string) bool {
	return s != "" && validChars(s, isNamespaceChar)
}

// ValidPath reports whether every segment of path is legal.
func ValidPath(path string) bool {
	segments := SplitPath(path)
	if len(segments) == 0 {
		return false
	}
	for _, s := range segments {
		if !ValidSegment(s) {
			return false
		}
	}
	return true
}

func validChars(s string, ok func(rune) bool) bool {
	for _, r := range s {
		if !ok(r) {
			return false
		}
	}
	return true
}

func isNamespaceChar(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_' || r == '-' || r == '.'
}

func isPathChar(r rune) bool {
	return isNamespaceChar(r) || r == '/'
}
