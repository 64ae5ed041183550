package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want ID
	}{
		{"ns:foo", ID{"ns", "foo"}},
		{"ns:foo/bar", ID{"ns", "foo/bar"}},
		{"integer", ID{DefaultNamespace, "integer"}},
		{"brigadier:integer", ID{"brigadier", "integer"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			id, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestParseIn(t *testing.T) {
	id, err := ParseIn("mymod", "foo/bar")
	require.NoError(t, err)
	assert.Equal(t, ID{"mymod", "foo/bar"}, id)

	id, err = ParseIn("mymod", "other:foo")
	require.NoError(t, err)
	assert.Equal(t, ID{"other", "foo"}, id)
}

func TestParseInvalid(t *testing.T) {
	for _, in := range []string{"", "ns:", ":path", "NS:foo", "ns:Foo", "ns:foo bar", "a:b:c"} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidID)
		})
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "ns:foo/bar", MustNew("ns", "foo/bar").String())
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "a/b/c", JoinPath("a", "b", "c"))
	assert.Equal(t, []string{"a", "b", "c"}, SplitPath("a/b/c"))
	assert.Nil(t, SplitPath(""))
}

func TestValidSegment(t *testing.T) {
	assert.True(t, ValidSegment("foo"))
	assert.True(t, ValidSegment("foo_bar-1.2"))
	assert.False(t, ValidSegment(""))
	assert.False(t, ValidSegment("foo/bar"))
	assert.False(t, ValidSegment("Foo"))
	assert.False(t, ValidSegment("foo:bar"))
}

func TestValidPath(t *testing.T) {
	assert.True(t, ValidPath("foo/bar"))
	assert.False(t, ValidPath(""))
	assert.False(t, ValidPath("foo//bar"))
	assert.False(t, ValidPath("/foo"))
}
