package argtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cmdtree/internal/dispatch"
	"github.com/roach88/cmdtree/internal/resource"
	"github.com/roach88/cmdtree/internal/value"
)

func TestRegistryFallback(t *testing.T) {
	custom := resource.MustNew("ns", "int")
	r := NewRegistry(Builtins())
	r.Register(custom, IntegerFactory)

	_, err := r.Get(custom)
	require.NoError(t, err)

	_, err = r.Get(TypeBool)
	require.NoError(t, err, "falls back to builtins")

	_, err = r.Get(resource.MustNew("ns", "missing"))
	assert.ErrorIs(t, err, ErrUnknownType)
	assert.Contains(t, err.Error(), "ns:missing")
}

func TestRegistryOverridesFallback(t *testing.T) {
	r := NewRegistry(Builtins())
	r.Register(TypeBool, func(resource.ID, value.Object) (dispatch.ArgumentType, error) {
		return String{Kind: Word}, nil
	})

	typ, err := r.Create(TypeBool, nil)
	require.NoError(t, err)
	assert.Equal(t, String{Kind: Word}, typ)

	typ, err = Builtins().Create(TypeBool, nil)
	require.NoError(t, err)
	assert.Equal(t, Bool{}, typ)
}

func TestBuiltinsAreIndependent(t *testing.T) {
	a := Builtins()
	b := Builtins()
	extra := resource.MustNew("ns", "extra")
	a.Register(extra, IntegerFactory)

	_, err := b.Get(extra)
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestRegistryIDs(t *testing.T) {
	r := NewRegistry(Builtins())
	r.Register(resource.MustNew("aaa", "first"), IntegerFactory)

	ids := r.IDs()
	require.NotEmpty(t, ids)
	assert.Equal(t, resource.MustNew("aaa", "first"), ids[0])
	assert.Contains(t, ids, TypeInteger)
	assert.Contains(t, ids, TypeUUID)
}
