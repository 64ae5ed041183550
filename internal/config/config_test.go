package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "cmdtree", cfg.Namespace)
	assert.Equal(t, ".", cfg.DataDir)
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.HistoryDB)
	assert.Equal(t, 500*time.Millisecond, cfg.WatchDebounce)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_NoFile(t *testing.T) {
	cfg, path, err := Load(context.Background(), LoadOptions{SearchDirs: []string{t.TempDir()}})
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_Formats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"yaml", "cmdtree.yaml", "namespace: game\nwatch_debounce: 2s\nhistory_db: h.db\n"},
		{"yml", "cmdtree.yml", "namespace: game\nwatch_debounce: 2s\nhistory_db: h.db\n"},
		{"toml", "cmdtree.toml", "namespace = \"game\"\nwatch_debounce = \"2s\"\nhistory_db = \"h.db\"\n"},
		{"json", "cmdtree.json", `{"namespace": "game", "watch_debounce": "2s", "history_db": "h.db"}`},
		{"cue", "cmdtree.cue", "namespace: \"game\"\nwatch_debounce: \"2s\"\nhistory_db: \"h.db\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			want := writeConfig(t, dir, tt.file, tt.content)

			cfg, path, err := Load(context.Background(), LoadOptions{SearchDirs: []string{dir}})
			require.NoError(t, err)
			assert.Equal(t, want, path)
			assert.Equal(t, "game", cfg.Namespace)
			assert.Equal(t, 2*time.Second, cfg.WatchDebounce)
			assert.Equal(t, "h.db", cfg.HistoryDB)
			assert.Equal(t, "text", cfg.Format, "unset keys keep defaults")
		})
	}
}

func TestLoad_SearchOrder(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	writeConfig(t, second, "cmdtree.yaml", "namespace: second\n")

	cfg, _, err := Load(context.Background(), LoadOptions{SearchDirs: []string{first, second}})
	require.NoError(t, err)
	assert.Equal(t, "second", cfg.Namespace)

	writeConfig(t, first, "cmdtree.toml", "namespace = \"first\"\n")
	cfg, _, err = Load(context.Background(), LoadOptions{SearchDirs: []string{first, second}})
	require.NoError(t, err)
	assert.Equal(t, "first", cfg.Namespace)
}

func TestLoad_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "custom.yaml", "format: json\n")

	cfg, used, err := Load(context.Background(), LoadOptions{ConfigFilePath: path})
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, "json", cfg.Format)

	_, _, err = Load(context.Background(), LoadOptions{ConfigFilePath: filepath.Join(dir, "missing.yaml")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "cmdtree.yaml", "namespace: fromfile\nlog_level: warn\nformat: json\n")
	t.Setenv("CMDTREE_LOG_LEVEL", "debug")
	t.Setenv("CMDTREE_DATA_DIR", "/srv/commands")

	cfg, _, err := Load(context.Background(), LoadOptions{
		SearchDirs: []string{dir},
		Overrides:  map[string]any{KeyFormat: "text"},
	})
	require.NoError(t, err)
	assert.Equal(t, "fromfile", cfg.Namespace)
	assert.Equal(t, "debug", cfg.LogLevel, "environment beats file")
	assert.Equal(t, "/srv/commands", cfg.DataDir, "environment beats defaults")
	assert.Equal(t, "text", cfg.Format, "overrides beat file")
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "cmdtree.json", `{"namespace": `)

	_, _, err := Load(context.Background(), LoadOptions{SearchDirs: []string{dir}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cmdtree.json")

	cueDir := t.TempDir()
	writeConfig(t, cueDir, "cmdtree.cue", "[1, 2]\n")
	_, _, err = Load(context.Background(), LoadOptions{SearchDirs: []string{cueDir}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected a struct")
}

func TestLoad_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Load(ctx, LoadOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"bad namespace", func(c *Config) { c.Namespace = "Not Valid" }, "namespace"},
		{"bad format", func(c *Config) { c.Format = "xml" }, "format"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"upper log level ok", func(c *Config) { c.LogLevel = "WARN" }, ""},
		{"zero debounce", func(c *Config) { c.WatchDebounce = 0 }, "watch_debounce"},
		{"empty data dir", func(c *Config) { c.DataDir = " " }, "data_dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoad_ValidationFails(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "cmdtree.yaml", "format: xml\n")

	_, _, err := Load(context.Background(), LoadOptions{SearchDirs: []string{dir}})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
