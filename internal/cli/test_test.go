package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	scenariosDir = filepath.Join("..", "harness", "testdata", "scenarios")
	goldenDir    = filepath.Join("..", "harness", "testdata", "golden")
)

func TestTestCommandPasses(t *testing.T) {
	out, err := execute(t, "test", scenariosDir, "--golden-dir", goldenDir)
	require.NoError(t, err, out)

	assert.Contains(t, out, "✓ forward_redirect")
	assert.Contains(t, out, "✓ fork_fanout")
	assert.Contains(t, out, "Test Summary: 3 passed, 0 failed, 3 total")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTestCommandJSON(t *testing.T) {
	out, err := execute(t, "test", "--format", "json", scenariosDir, "--golden-dir", goldenDir)
	require.NoError(t, err)

	resp := decode[TestResult](t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 3, resp.Data.Total)
	assert.Equal(t, 3, resp.Data.Passed)

	golden := map[string]string{}
	for _, s := range resp.Data.Scenarios {
		golden[s.Name] = s.Golden
	}
	assert.Equal(t, "match", golden["forward_redirect"])
	assert.Equal(t, "match", golden["fork_fanout"])
	assert.Equal(t, "missing", golden["bounded_argument"])
}

func TestTestCommandFilter(t *testing.T) {
	out, err := execute(t, "test", "--format", "json", scenariosDir, "--filter", "fork*")
	require.NoError(t, err)

	resp := decode[TestResult](t, out)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "fork_fanout", resp.Data.Scenarios[0].Name)
}

func TestTestCommandUpdateThenCompare(t *testing.T) {
	dir := t.TempDir()
	scenario := filepath.Join(scenariosDir, "fork_fanout.yaml")

	out, err := execute(t, "test", scenario, "--golden-dir", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ fork_fanout (golden updated)")

	written, err := os.ReadFile(filepath.Join(dir, "fork_fanout.golden"))
	require.NoError(t, err)
	shipped, err := os.ReadFile(filepath.Join(goldenDir, "fork_fanout.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(shipped), string(written))

	_, err = execute(t, "test", scenario, "--golden-dir", dir)
	require.NoError(t, err)
}

func TestTestCommandGoldenMismatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fork_fanout.golden"), []byte(`{"stale":true}`), 0o644))

	out, err := execute(t, "test", filepath.Join(scenariosDir, "fork_fanout.yaml"), "--golden-dir", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "trace does not match golden file")
}

func TestTestCommandFailingScenario(t *testing.T) {
	dir := t.TempDir()
	scenario := `name: failing
description: expects the wrong result
document:
  ping:
    executable: true
steps:
  - input: ping
    expect:
      result: 2
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "failing.yaml"), []byte(scenario), 0o644))

	out, err := execute(t, "test", "--format", "json", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decode[TestResult](t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.False(t, resp.Data.Scenarios[0].Pass)
	assert.NotEmpty(t, resp.Data.Scenarios[0].Errors)
}

func TestTestCommandLoadError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yml"), []byte("name: bad\n"), 0o644))

	out, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Contains(t, out, "✗ bad.yml")
	assert.Contains(t, out, "failed to load scenario")
}

func TestTestCommandPaths(t *testing.T) {
	_, err := execute(t, "test", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	out, err := execute(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestFindScenarioFilesSkipsGolden(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "golden"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "golden", "b.yaml"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o644))

	files, err := findScenarioFiles(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.yaml")}, files)

	_, err = findScenarioFiles(dir, "[")
	assert.Error(t, err)
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("s", "golden", "x.golden"), goldenFilePath(filepath.Join("s", "x.yaml"), ""))
	assert.Equal(t, filepath.Join("g", "x.golden"), goldenFilePath(filepath.Join("s", "x.yml"), "g"))
}
