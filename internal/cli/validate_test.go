package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateValidDocument(t *testing.T) {
	out, err := execute(t, "validate", document("game.json"))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Document valid (4 command(s))")
}

func TestValidateValidDocumentJSON(t *testing.T) {
	out, err := execute(t, "validate", "--format", "json", document("game.yaml"))
	require.NoError(t, err)

	resp := decode[ValidationResult](t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, 2, resp.Data.Commands)
	assert.Empty(t, resp.Data.Errors)
}

func TestValidateParseError(t *testing.T) {
	out, err := execute(t, "validate", document("invalid.json"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, ErrCodeParseFailed)
	assert.Contains(t, out, "bad.level")
}

func TestValidateParseErrorJSON(t *testing.T) {
	out, err := execute(t, "validate", "--format", "json", document("invalid.json"))
	require.Error(t, err)

	resp := decode[ValidationResult](t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeParseFailed, resp.Error.Code)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Errors, 1)
	assert.Equal(t, "document", resp.Data.Errors[0].Field)
}

func TestValidateRedirectWarnings(t *testing.T) {
	out, err := execute(t, "validate", "--format", "json", document("loop.json"))
	require.NoError(t, err, "redirect warnings do not fail validation")

	resp := decode[ValidationResult](t, out)
	assert.True(t, resp.Data.Valid)
	require.Len(t, resp.Data.Warnings, 1)
	assert.Equal(t, "warning", resp.Data.Warnings[0].Level)
	assert.Equal(t, []string{"spin", "spin"}, resp.Data.Warnings[0].Path)

	out, err = execute(t, "validate", document("loop.json"))
	require.NoError(t, err)
	assert.Contains(t, out, "warning: ")
}

func TestValidateLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		code string
	}{
		{"missing file", document("nope.json"), ErrCodeNotFound},
		{"directory", documentsDir, ErrCodeNotFound},
		{"not an object", document("array.json"), ErrCodeDecodeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "validate", tt.file)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, out, "Error ["+tt.code+"]")
		})
	}
}

func TestLoadDocument(t *testing.T) {
	res, err := LoadDocument(document("game.json"), "game")
	require.NoError(t, err)
	assert.Len(t, res.Nodes, 4)
	assert.NotEmpty(t, res.Digest)
	assert.Equal(t, "game", res.Namespace)

	_, err = LoadDocument(document("game.json"), "Not Valid")
	require.Error(t, err)
	assert.Equal(t, ErrCodeGeneric, errorCode(err))

	res, err = LoadDocument(document("invalid.json"), "game")
	require.Error(t, err)
	assert.Equal(t, ErrCodeParseFailed, errorCode(err))
	require.NotNil(t, res, "the decoded document is kept on parse errors")
	assert.Empty(t, res.Nodes)
}
