package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/cmdtree/internal/compiler"
	"github.com/roach88/cmdtree/internal/dispatch"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Namespace string
	Output    string // output file path
}

// CompilationResult is the outcome of compiling one document.
type CompilationResult struct {
	Namespace  string           `json:"namespace"`
	Digest     string           `json:"digest"`
	Registered []string         `json:"registered"`
	Skipped    []SkippedCommand `json:"skipped,omitempty"`
	Usage      []string         `json:"usage"`
}

// SkippedCommand is a top-level command that failed to compile.
type SkippedCommand struct {
	Name  string `json:"name"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <file>",
		Short: "Compile a command document into a dispatcher",
		Long: `Compile a command document into a fresh dispatcher and print its usage tree.

Every executable and redirect modifier the document names is bound to an
echo stand-in, so only argument types and structure can fail. A command
that fails to compile is skipped; the rest are still registered.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Namespace, "namespace", "n", "", "namespace for executable references (default from config)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the JSON report to this file")

	return cmd
}

func runCompile(opts *CompileOptions, file string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	loadResult, err := LoadDocument(file, opts.namespace(opts.Namespace))
	if err != nil {
		return formatter.fail(ExitCommandError, errorCode(err), err.Error(), nil)
	}

	for _, n := range loadResult.Nodes {
		formatter.VerboseLog("Compiling command: %s", n.Self(loadResult.Namespace))
	}

	d := dispatch.New()
	result := compileInto(d, loadResult, opts.logger(), newEcho(nil))

	// Write to file if --output specified
	if opts.Output != "" {
		if err := writeReport(result, opts.Output); err != nil {
			return formatter.fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	if err := outputCompileResult(formatter, result, opts.Output); err != nil {
		return err
	}
	if len(result.Skipped) > 0 {
		// Skipped commands are command-level errors (exit code 2)
		return NewExitError(ExitCommandError, fmt.Sprintf("%d command(s) failed to compile", len(result.Skipped)))
	}
	return nil
}

// compileInto registers the loaded commands on d, binding their executables
// to e.
func compileInto(d *dispatch.Dispatcher, loadResult *LoadResult, logger *slog.Logger, e *echo) CompilationResult {
	env := compiler.NewEnv(nil)
	e.bind(env, loadResult.Nodes)

	res := compiler.RegisterAll(env, loadResult.Nodes, d, compiler.Options{Namespace: loadResult.Namespace, Logger: logger})
	result := CompilationResult{
		Namespace:  loadResult.Namespace,
		Digest:     loadResult.Digest,
		Registered: append([]string{}, res.Registered...),
		Usage:      d.AllUsage(d.Root(), nil, false),
	}
	for _, s := range res.Skipped {
		logger.Warn("failed to register command", "command", loadResult.Namespace+":"+s.Name, "error", s.Err)
		code := ErrCodeGeneric
		var compileErr *compiler.CompileError
		if errors.As(s.Err, &compileErr) {
			code = compileErr.Code
		}
		result.Skipped = append(result.Skipped, SkippedCommand{Name: s.Name, Code: code, Error: s.Err.Error()})
	}
	if result.Usage == nil {
		result.Usage = []string{}
	}
	return result
}

// outputCompileResult outputs the compilation report.
func outputCompileResult(formatter *OutputFormatter, result CompilationResult, outputFile string) error {
	if formatter.Format == "json" {
		if len(result.Skipped) == 0 {
			return formatter.Success(result)
		}
		return formatter.Encode(CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    result.Skipped[0].Code,
				Message: result.Skipped[0].Error,
			},
		})
	}

	// Human-readable text output
	w := formatter.Writer
	if len(result.Skipped) == 0 {
		fmt.Fprintf(w, "✓ Compiled %d command(s) in namespace %s\n\n", len(result.Registered), result.Namespace)
	} else {
		fmt.Fprintf(w, "✗ Compiled %d command(s) in namespace %s, %d skipped\n\n",
			len(result.Registered), result.Namespace, len(result.Skipped))
		for _, s := range result.Skipped {
			fmt.Fprintf(w, "  %s: %s\n", s.Name, s.Error)
		}
		fmt.Fprintln(w)
	}

	if len(result.Usage) > 0 {
		fmt.Fprintln(w, "Usage:")
		for _, line := range result.Usage {
			fmt.Fprintf(w, "  /%s\n", line)
		}
		fmt.Fprintln(w)
	}

	if outputFile != "" {
		fmt.Fprintf(w, "Wrote report to %s\n", outputFile)
	}
	return nil
}

// writeReport writes the compilation result to a file as indented JSON.
func writeReport(result CompilationResult, filename string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}

	if err := os.WriteFile(filename, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
