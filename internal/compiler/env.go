package compiler

import (
	"sync"

	"github.com/roach88/cmdtree/internal/argtype"
	"github.com/roach88/cmdtree/internal/dispatch"
	"github.com/roach88/cmdtree/internal/resource"
	"github.com/roach88/cmdtree/internal/value"
)

// Bindings resolves the references a command document makes. The compiler
// queries it once per node while assembling.
type Bindings interface {
	ArgumentType(id resource.ID, params value.Object) (dispatch.ArgumentType, error)
	Executable(id resource.ID) (dispatch.Command, bool)
	RedirectModifier(id resource.ID) (dispatch.RedirectModifier, bool)
}

// Env is the standard Bindings: an argument type registry plus executable
// and modifier tables. Separate Envs share nothing.
type Env struct {
	mu          sync.RWMutex
	types       *argtype.Registry
	executables map[resource.ID]dispatch.Command
	modifiers   map[resource.ID]dispatch.RedirectModifier
}

// NewEnv returns an Env whose argument types fall back to fallback. A nil
// fallback means argtype.Builtins.
func NewEnv(fallback *argtype.Registry) *Env {
	if fallback == nil {
		fallback = argtype.Builtins()
	}
	return &Env{
		types:       argtype.NewRegistry(fallback),
		executables: map[resource.ID]dispatch.Command{},
		modifiers:   map[resource.ID]dispatch.RedirectModifier{},
	}
}

// Types returns the registry consulted for argument types.
func (e *Env) Types() *argtype.Registry { return e.types }

// SetArgumentType binds a type id in this Env's own registry.
func (e *Env) SetArgumentType(id resource.ID, f argtype.Factory) {
	e.types.Register(id, f)
}

// SetExecutable binds an executable reference.
func (e *Env) SetExecutable(id resource.ID, cmd dispatch.Command) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.executables[id] = cmd
}

// SetRedirectModifier binds a modifier reference.
func (e *Env) SetRedirectModifier(id resource.ID, mod dispatch.RedirectModifier) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.modifiers[id] = mod
}

func (e *Env) ArgumentType(id resource.ID, params value.Object) (dispatch.ArgumentType, error) {
	return e.types.Create(id, params)
}

func (e *Env) Executable(id resource.ID) (dispatch.Command, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	cmd, ok := e.executables[id]
	return cmd, ok
}

func (e *Env) RedirectModifier(id resource.ID) (dispatch.RedirectModifier, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	mod, ok := e.modifiers[id]
	return mod, ok
}
