// Package config loads cmdtree settings with Viper.
//
// Settings come from, lowest precedence first: built-in defaults, a
// cmdtree.{yaml,yml,toml,json,cue} file, CMDTREE_* environment variables
// and explicit overrides (command-line flags).
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/roach88/cmdtree/internal/resource"
	"github.com/roach88/cmdtree/internal/value"
)

const (
	// AppName is the application name.
	AppName = "cmdtree"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "cmdtree"
	// EnvPrefix prefixes environment overrides, e.g. CMDTREE_LOG_LEVEL.
	EnvPrefix = "CMDTREE"
)

// Setting keys.
const (
	KeyNamespace     = "namespace"
	KeyDataDir       = "data_dir"
	KeyFormat        = "format"
	KeyLogLevel      = "log_level"
	KeyHistoryDB     = "history_db"
	KeyWatchDebounce = "watch_debounce"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Formats and LogLevels list the accepted values.
var (
	Formats   = []string{"text", "json"}
	LogLevels = []string{"debug", "info", "warn", "error"}
)

// Config holds every setting.
type Config struct {
	// Namespace documents are loaded under.
	Namespace string `mapstructure:"namespace"`
	// DataDir holds one directory per namespace.
	DataDir string `mapstructure:"data_dir"`
	// Format is the CLI output format.
	Format string `mapstructure:"format"`
	// LogLevel is the minimum level logged.
	LogLevel string `mapstructure:"log_level"`
	// HistoryDB is the sqlite reload history. Empty disables it.
	HistoryDB string `mapstructure:"history_db"`
	// WatchDebounce is the quiet period before a watched change reloads.
	WatchDebounce time.Duration `mapstructure:"watch_debounce"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Namespace:     "cmdtree",
		DataDir:       ".",
		Format:        "text",
		LogLevel:      "info",
		HistoryDB:     "",
		WatchDebounce: 500 * time.Millisecond,
	}
}

// LoadOptions controls where Load looks.
type LoadOptions struct {
	// ConfigFilePath, when set, is the only file read and must exist.
	ConfigFilePath string
	// SearchDirs are searched for cmdtree.* in order. Defaults to ".".
	SearchDirs []string
	// Overrides win over every other source. Keys are setting keys.
	Overrides map[string]any
}

// Load resolves the configuration. It returns the config file used, or ""
// when defaults and the environment were enough.
func Load(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault(KeyNamespace, defaults.Namespace)
	v.SetDefault(KeyDataDir, defaults.DataDir)
	v.SetDefault(KeyFormat, defaults.Format)
	v.SetDefault(KeyLogLevel, defaults.LogLevel)
	v.SetDefault(KeyHistoryDB, defaults.HistoryDB)
	v.SetDefault(KeyWatchDebounce, defaults.WatchDebounce)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath, err := readConfigFile(v, opts)
	if err != nil {
		return nil, "", err
	}

	for key, val := range opts.Overrides {
		v.Set(key, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}

	return &cfg, resolvedPath, nil
}

// readConfigFile merges the config file, if any, into v.
func readConfigFile(v *viper.Viper, opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", fmt.Errorf("config file not found: %s", opts.ConfigFilePath)
		}
		if err := mergeFile(v, opts.ConfigFilePath); err != nil {
			return "", err
		}
		return opts.ConfigFilePath, nil
	}

	dirs := opts.SearchDirs
	if len(dirs) == 0 {
		dirs = []string{"."}
	}

	// Viper knows yaml, toml and json; cue is read through the value package.
	for _, dir := range dirs {
		for _, ext := range []string{"json", "yaml", "yml", "toml", "cue"} {
			path := filepath.Join(dir, ConfigFileName+"."+ext)
			if !fileExists(path) {
				continue
			}
			if err := mergeFile(v, path); err != nil {
				return "", err
			}
			return path, nil
		}
	}

	// If no config file found, use defaults (no error)
	return "", nil
}

func mergeFile(v *viper.Viper, path string) error {
	if strings.EqualFold(filepath.Ext(path), ".cue") {
		return mergeCUE(v, path)
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}

// mergeCUE evaluates a CUE config file and merges it into Viper, keeping
// defaults and environment overrides in place.
func mergeCUE(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	val, err := value.DecodeCUE(path, data)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	obj, ok := val.(value.Object)
	if !ok {
		return fmt.Errorf("config file %s: expected a struct, got %s", path, value.Kind(val))
	}
	configMap, _ := value.ToAny(obj).(map[string]any)
	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// Validate checks every setting.
func (c *Config) Validate() error {
	var errs []error
	if _, err := resource.New(c.Namespace, "x"); err != nil {
		errs = append(errs, fmt.Errorf("%w: namespace %q: %w", ErrInvalidConfig, c.Namespace, err))
	}
	if !slices.Contains(Formats, c.Format) {
		errs = append(errs, fmt.Errorf("%w: format %q: must be one of %v", ErrInvalidConfig, c.Format, Formats))
	}
	if !slices.Contains(LogLevels, strings.ToLower(c.LogLevel)) {
		errs = append(errs, fmt.Errorf("%w: log_level %q: must be one of %v", ErrInvalidConfig, c.LogLevel, LogLevels))
	}
	if c.WatchDebounce <= 0 {
		errs = append(errs, fmt.Errorf("%w: watch_debounce must be positive, got %s", ErrInvalidConfig, c.WatchDebounce))
	}
	if strings.TrimSpace(c.DataDir) == "" {
		errs = append(errs, fmt.Errorf("%w: data_dir must not be empty", ErrInvalidConfig))
	}
	return errors.Join(errs...)
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
