// Package argtype resolves argument type ids to parsers.
//
// A Registry maps ids such as brigadier:integer to a Factory that reads the
// node's parameter bag and returns a dispatch.ArgumentType. Registries chain
// to a fallback, which is how host-specific types layer over Builtins.
package argtype
