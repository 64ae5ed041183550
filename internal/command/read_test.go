package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cmdtree/internal/perm"
	"github.com/roach88/cmdtree/internal/resource"
	"github.com/roach88/cmdtree/internal/value"
)

func decode(t *testing.T, doc string) value.Object {
	t.Helper()
	v, err := value.DecodeJSON([]byte(doc))
	require.NoError(t, err)
	obj, ok := v.(value.Object)
	require.True(t, ok, "document must be an object")
	return obj
}

func TestReadEndToEndDocument(t *testing.T) {
	doc := decode(t, `{"foo": {"executable": true, "arguments": {"bar": {"type":"ns:int","parameters":{"min":0,"max":10},"executable":"foo/bar"}}}}`)

	nodes, err := ReadAll("ns", doc)
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	foo := nodes[0]
	assert.Equal(t, "foo", foo.Name)
	assert.True(t, foo.IsLiteral())
	assert.Equal(t, resource.MustNew("ns", "foo"), *foo.Executable)
	require.Len(t, foo.Arguments, 1)

	bar := foo.Arguments[0]
	assert.Equal(t, "foo/bar", bar.Path)
	assert.Equal(t, resource.MustNew("ns", "int"), *bar.Type)
	assert.Equal(t, value.Object{"min": value.Int(0), "max": value.Int(10)}, bar.Parameters)
	assert.Equal(t, resource.MustNew("ns", "foo/bar"), *bar.Executable)

	written := WriteAll("ns", nodes)
	expected := decode(t, `{"foo": {"executable": true, "arguments": {"bar": {"type":"ns:int","parameters":{"min":0,"max":10},"executable":true}}}}`)
	assert.True(t, value.Equal(expected, written), "got %v", written)
}

func TestReadAllSortedOrder(t *testing.T) {
	nodes, err := ReadAll("ns", decode(t, `{"zeta":{},"alpha":{},"mid":{}}`))
	require.NoError(t, err)

	var names []string
	for _, n := range nodes {
		names = append(names, n.Name)
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
}

func TestReadExecutableForms(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected *resource.ID
	}{
		{"true is self", `true`, &resource.ID{Namespace: "ns", Path: "cmd/arg"}},
		{"false is none", `false`, nil},
		{"bare path", `"other/path"`, &resource.ID{Namespace: "ns", Path: "other/path"}},
		{"qualified", `"ext:run"`, &resource.ID{Namespace: "ext", Path: "run"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := decode(t, `{"cmd":{"arguments":{"arg":{"executable":`+tt.raw+`}}}}`)
			nodes, err := ReadAll("ns", doc)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, nodes[0].Arguments[0].Executable)
		})
	}
}

func TestReadLevel(t *testing.T) {
	tests := []struct {
		raw      string
		expected perm.Level
	}{
		{`"all"`, perm.All},
		{`"owners"`, perm.Owners},
		{`2`, perm.Gamemasters},
		{`3.0`, perm.Admins},
		{`9`, perm.Level(9)},
		{`-2147483648`, perm.Level(-2147483648)},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			nodes, err := ReadAll("ns", decode(t, `{"cmd":{"level":`+tt.raw+`}}`))
			require.NoError(t, err)
			require.NotNil(t, nodes[0].Level)
			assert.Equal(t, tt.expected, *nodes[0].Level)
		})
	}
}

func TestReadRedirect(t *testing.T) {
	t.Run("shorthand", func(t *testing.T) {
		nodes, err := ReadAll("ns", decode(t, `{"alias":{"redirect":"real/cmd"}}`))
		require.NoError(t, err)
		assert.Equal(t, &Redirect{Target: "real/cmd"}, nodes[0].Redirect)
	})

	t.Run("object with self modifier", func(t *testing.T) {
		nodes, err := ReadAll("ns", decode(t, `{"as":{"redirect":{"target":"","modifier":true,"forks":true}}}`))
		require.Error(t, err)
		assert.Nil(t, nodes)

		nodes, err = ReadAll("ns", decode(t, `{"as":{"redirect":{"target":"run","modifier":true,"forks":true}}}`))
		require.NoError(t, err)
		mod := resource.MustNew("ns", "as")
		assert.Equal(t, &Redirect{Target: "run", Modifier: &mod, Forks: true}, nodes[0].Redirect)
	})

	t.Run("modifier false", func(t *testing.T) {
		nodes, err := ReadAll("ns", decode(t, `{"as":{"redirect":{"target":"run","modifier":false}}}`))
		require.NoError(t, err)
		assert.Equal(t, &Redirect{Target: "run"}, nodes[0].Redirect)
	})

	t.Run("qualified modifier", func(t *testing.T) {
		nodes, err := ReadAll("ns", decode(t, `{"as":{"redirect":{"target":"run","modifier":"ext:fan"}}}`))
		require.NoError(t, err)
		mod := resource.MustNew("ext", "fan")
		assert.Equal(t, &Redirect{Target: "run", Modifier: &mod}, nodes[0].Redirect)
	})
}

func TestReadParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		path  string
		field string
	}{
		{"unknown level name", `{"cmd":{"level":"root"}}`, "cmd", "level"},
		{"level wrong kind", `{"cmd":{"level":true}}`, "cmd", "level"},
		{"fractional level", `{"cmd":{"level":1.5}}`, "cmd", "level"},
		{"integer level out of range", `{"cmd":{"level":4294967296}}`, "cmd", "level"},
		{"float level out of range", `{"cmd":{"level":4294967296.0}}`, "cmd", "level"},
		{"missing target", `{"cmd":{"redirect":{"forks":true}}}`, "cmd", "redirect.target"},
		{"target wrong kind", `{"cmd":{"redirect":{"target":1}}}`, "cmd", "redirect.target"},
		{"forks wrong kind", `{"cmd":{"redirect":{"target":"x","forks":"yes"}}}`, "cmd", "redirect.forks"},
		{"redirect wrong kind", `{"cmd":{"redirect":[]}}`, "cmd", "redirect"},
		{"command not object", `{"cmd":1}`, "cmd", ""},
		{"argument not object", `{"cmd":{"arguments":{"x":"y"}}}`, "cmd/x", ""},
		{"arguments not object", `{"cmd":{"arguments":[]}}`, "cmd", "arguments"},
		{"parameters not object", `{"cmd":{"parameters":1}}`, "cmd", "parameters"},
		{"type not string", `{"cmd":{"type":{}}}`, "cmd", "type"},
		{"invalid type", `{"cmd":{"type":"Bad Type"}}`, "cmd", "type"},
		{"executable wrong kind", `{"cmd":{"executable":1}}`, "cmd", "executable"},
		{"invalid executable", `{"cmd":{"executable":"a:b:c"}}`, "cmd", "executable"},
		{"invalid name", `{"Cmd":{}}`, "Cmd", ""},
		{"slash in name", `{"cmd":{"arguments":{"a/b":{}}}}`, "cmd/a/b", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadAll("ns", decode(t, tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrParse)

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.path, pe.Path)
			assert.Equal(t, tt.field, pe.Field)
		})
	}
}

func TestParseErrorUnwrapsCause(t *testing.T) {
	_, err := ReadAll("ns", decode(t, `{"cmd":{"level":"root"}}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, perm.ErrUnknownLevel)
	assert.Contains(t, err.Error(), "cmd.level")
}

func TestReadClonesParameters(t *testing.T) {
	doc := decode(t, `{"cmd":{"parameters":{"min":1}}}`)
	nodes, err := ReadAll("ns", doc)
	require.NoError(t, err)

	doc["cmd"].(value.Object)["parameters"].(value.Object)["min"] = value.Int(5)
	assert.Equal(t, value.Int(1), nodes[0].Parameters["min"])
}

func TestReadIgnoresUnknownKeys(t *testing.T) {
	nodes, err := ReadAll("ns", decode(t, `{"cmd":{"comment":"hi"}}`))
	require.NoError(t, err)
	assert.Equal(t, &Node{Name: "cmd", Path: "cmd"}, nodes[0])
}
