package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/roach88/cmdtree/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	LogLevel   string

	// Config and Logger are resolved before any subcommand runs.
	Config *config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = config.Formats

// NewRootCommand creates the root command for the cmdtree CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "cmdtree",
		Short: "cmdtree - data-driven command trees",
		Long: `Compile command documents into a dispatcher and run input against it.

A command document is a JSON, YAML, TOML or CUE object of top-level
commands. Each node may carry a permission level, an executable, typed
arguments and a redirect to another command path.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default: ./cmdtree.{json,yaml,toml,cue})")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "info", "log level (debug|info|warn|error)")

	// Add subcommands
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewFmtCommand(opts))
	cmd.AddCommand(NewExecCommand(opts))
	cmd.AddCommand(NewShellCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// resolve loads the config, letting explicitly set flags win, and installs
// the logger.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	if !isValidFormat(o.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", o.Format, ValidFormats)
	}

	overrides := map[string]any{}
	if cmd.Flags().Changed("format") {
		overrides[config.KeyFormat] = o.Format
	}
	if cmd.Flags().Changed("log-level") {
		overrides[config.KeyLogLevel] = o.LogLevel
	}

	cfg, path, err := config.Load(cmd.Context(), config.LoadOptions{
		ConfigFilePath: o.ConfigPath,
		Overrides:      overrides,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	o.Config = cfg
	o.Format = cfg.Format

	level := cfg.LogLevel
	if o.Verbose && !cmd.Flags().Changed("log-level") {
		level = "debug"
	}
	logger, err := newLogger(cmd.ErrOrStderr(), level)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid log level", err)
	}
	o.Logger = logger

	if path != "" {
		logger.Debug("loaded config", "path", path)
	}
	return nil
}

// config returns the resolved config, or the defaults when the command runs
// without the root (as in tests).
func (o *RootOptions) config() *config.Config {
	if o.Config == nil {
		return config.DefaultConfig()
	}
	return o.Config
}

func (o *RootOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}

// namespace returns flag when set, otherwise the configured namespace.
func (o *RootOptions) namespace(flag string) string {
	if flag != "" {
		return flag
	}
	return o.config().Namespace
}

// newLogger returns a slog.Logger backed by a charmbracelet logger on w.
func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, err
	}
	handler := log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Prefix:          "cmdtree",
		ReportTimestamp: true,
	})
	return slog.New(handler), nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
