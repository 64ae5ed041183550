// Package perm maps command permission levels between their integer and
// canonical name forms.
package perm

import (
	"errors"
	"fmt"
	"strconv"
)

// Level is a command permission level. Higher values are more privileged.
type Level int

// Canonical permission levels in ascending order of privilege.
const (
	All Level = iota
	Moderators
	Gamemasters
	Admins
	Owners
)

// ErrUnknownLevel is returned by Parse for names that are not canonical.
var ErrUnknownLevel = errors.New("unknown permission level")

var names = [...]string{
	All:         "all",
	Moderators:  "moderators",
	Gamemasters: "gamemasters",
	Admins:      "admins",
	Owners:      "owners",
}

// Name returns the canonical name of l. The boolean is false when l has no
// canonical name, in which case serializers fall back to the raw integer.
func Name(l Level) (string, bool) {
	if l < All || l > Owners {
		return "", false
	}
	return names[l], true
}

// Parse maps a canonical level name to its value.
func Parse(name string) (Level, error) {
	for i, n := range names {
		if n == name {
			return Level(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownLevel, name)
}

// Levels returns every canonical level in ascending order.
func Levels() []Level {
	return []Level{All, Moderators, Gamemasters, Admins, Owners}
}

func (l Level) String() string {
	if name, ok := Name(l); ok {
		return name
	}
	return strconv.Itoa(int(l))
}
