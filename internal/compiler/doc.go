// Package compiler turns command documents into dispatcher trees.
//
// Register compiles one top-level command and attaches it to a dispatcher;
// RegisterAll does so for a whole document, skipping commands that fail.
// References to argument types, executables and redirect modifiers are
// resolved through a Bindings value, normally an Env.
//
// Redirect targets are looked up by path when first used, through a
// LazyRedirect, so commands may redirect to nodes registered later.
//
// Validate and AnalyzeRedirects check documents without compiling them.
package compiler
