package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cmdtree/internal/value"
)

func TestFmtNormalizesShorthand(t *testing.T) {
	out, err := execute(t, "fmt", "-n", "game", document("game.yaml"))
	require.NoError(t, err)

	doc, err := value.DecodeJSON([]byte(out))
	require.NoError(t, err)
	obj, ok := doc.(value.Object)
	require.True(t, ok)

	heal := obj["heal"].(value.Object)
	assert.Equal(t, value.Bool(true), heal["executable"], "an executable at the node's own path is written as true")
	assert.Equal(t, value.String("heal"), obj["h"].(value.Object)["redirect"], "a plain redirect is written as a string")
}

func TestFmtRoundTrips(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.json")

	_, err := execute(t, "fmt", "-n", "game", document("game.json"), "-o", first)
	require.NoError(t, err)

	again, err := execute(t, "fmt", "-n", "game", first)
	require.NoError(t, err)

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, string(data), again)

	want, err := LoadDocument(document("game.json"), "game")
	require.NoError(t, err)
	got, err := LoadDocument(first, "game")
	require.NoError(t, err)
	require.Len(t, got.Nodes, len(want.Nodes))
	for i := range want.Nodes {
		assert.True(t, want.Nodes[i].Equal(got.Nodes[i]), want.Nodes[i].Name)
	}
}

func TestFmtOutputMessage(t *testing.T) {
	target := filepath.Join(t.TempDir(), "out.json")

	out, err := execute(t, "fmt", document("game.json"), "-o", target)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Wrote "+target)

	out, err = execute(t, "fmt", "--format", "json", document("game.json"), "-o", target)
	require.NoError(t, err)
	resp := decode[map[string]string](t, out)
	assert.Equal(t, target, resp.Data["output"])
}

func TestFmtInvalidDocument(t *testing.T) {
	out, err := execute(t, "fmt", document("invalid.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error ["+ErrCodeParseFailed+"]")
}
