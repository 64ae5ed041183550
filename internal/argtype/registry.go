package argtype

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/roach88/cmdtree/internal/dispatch"
	"github.com/roach88/cmdtree/internal/resource"
	"github.com/roach88/cmdtree/internal/value"
)

var (
	// ErrUnknownType is returned for type ids no registry in the chain knows.
	ErrUnknownType = errors.New("unknown argument type")
	// ErrInvalidParameters is wrapped by factory failures caused by the parameter bag.
	ErrInvalidParameters = errors.New("invalid argument parameters")
)

// Factory builds an argument parser from a node's parameter bag. typeID is
// passed for error messages; params is nil when the node has none.
type Factory func(typeID resource.ID, params value.Object) (dispatch.ArgumentType, error)

// Registry maps type ids to factories. Lookups that miss fall through to
// the fallback registry, if any.
type Registry struct {
	mu        sync.RWMutex
	factories map[resource.ID]Factory
	fallback  *Registry
}

// NewRegistry returns an empty registry. fallback may be nil.
func NewRegistry(fallback *Registry) *Registry {
	return &Registry{factories: map[resource.ID]Factory{}, fallback: fallback}
}

// Register binds id to f, replacing any previous binding in this registry.
func (r *Registry) Register(id resource.ID, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[id] = f
}

// Get returns the factory for id.
func (r *Registry) Get(id resource.ID) (Factory, error) {
	r.mu.RLock()
	f, ok := r.factories[id]
	r.mu.RUnlock()
	if ok {
		return f, nil
	}
	if r.fallback != nil {
		return r.fallback.Get(id)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownType, id)
}

// Create looks up id and runs its factory.
func (r *Registry) Create(id resource.ID, params value.Object) (dispatch.ArgumentType, error) {
	f, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	return f(id, params)
}

// IDs returns every id resolvable through r, sorted.
func (r *Registry) IDs() []resource.ID {
	seen := map[resource.ID]bool{}
	for cur := r; cur != nil; cur = cur.fallback {
		cur.mu.RLock()
		for id := range cur.factories {
			seen[id] = true
		}
		cur.mu.RUnlock()
	}

	ids := make([]resource.ID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b resource.ID) int {
		return cmp.Or(strings.Compare(a.Namespace, b.Namespace), strings.Compare(a.Path, b.Path))
	})
	return ids
}
