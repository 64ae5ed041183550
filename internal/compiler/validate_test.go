package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cmdtree/internal/command"
	"github.com/roach88/cmdtree/internal/resource"
)

func TestValidateValid(t *testing.T) {
	nodes := readDoc(t, "ns", `{
		"tp": {"arguments": {"x": {"type": "ns:int", "executable": true}}},
		"teleport": {"redirect": "tp"}
	}`)

	errs := Validate(nodes)
	assert.Empty(t, errs, "document read from disk should validate")
}

func TestValidateBuilderOutput(t *testing.T) {
	b := command.NewBuilder("ns", "give").
		Argument("player").Type(resource.MustNew("ns", "player")).
		Argument("item").Type(resource.MustNew("ns", "item")).Executable().
		Root()

	assert.Empty(t, Validate([]*command.Node{b.Assemble()}))
}

func TestValidateCollectsAllErrors(t *testing.T) {
	typ := resource.MustNew("ns", "int")
	badType := resource.ID{Namespace: "NS", Path: "int"}
	badExec := resource.ID{Namespace: "ns", Path: ""}

	nodes := []*command.Node{
		{Name: "Bad Name", Path: "Bad Name"},
		{Name: "typed", Path: "typed", Type: &typ},
		{
			Name: "parent",
			Path: "parent",
			Arguments: []*command.Node{
				{Name: "dup", Path: "parent/dup"},
				{Name: "dup", Path: "parent/dup"},
				{Name: "moved", Path: "elsewhere/moved"},
				{Name: "weird", Path: "parent/weird", Type: &badType, Executable: &badExec},
				nil,
			},
		},
		{Name: "jump", Path: "jump", Redirect: &command.Redirect{Target: "a//b"}},
		{Name: "jump", Path: "jump"},
		nil,
	}

	errs := Validate(nodes)

	codes := make(map[string]int)
	for _, e := range errs {
		codes[e.Code]++
	}
	assert.Equal(t, 1, codes[ErrInvalidName])
	assert.Equal(t, 1, codes[ErrRootTyped])
	assert.Equal(t, 1, codes[ErrDuplicateName])
	assert.Equal(t, 1, codes[ErrPathMismatch])
	assert.Equal(t, 1, codes[ErrInvalidTypeID])
	assert.Equal(t, 1, codes[ErrInvalidReference])
	assert.Equal(t, 1, codes[ErrInvalidTarget])
	assert.Equal(t, 1, codes[ErrDuplicateTopLevel])
	assert.Equal(t, 2, codes[ErrNilNode])
}

func TestValidationErrorFormat(t *testing.T) {
	err := ValidationError{Field: "tp.name", Message: "bad", Code: ErrInvalidName}
	assert.Equal(t, "[E101] tp.name: bad", err.Error())
}

func TestValidateRedirectModifier(t *testing.T) {
	badMod := resource.ID{Namespace: "ns", Path: "Upper"}
	nodes := []*command.Node{{
		Name:     "as",
		Path:     "as",
		Redirect: &command.Redirect{Target: "run", Modifier: &badMod},
	}}

	errs := Validate(nodes)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrInvalidReference, errs[0].Code)
	assert.Equal(t, "as.redirect.modifier", errs[0].Field)
}
