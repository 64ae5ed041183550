package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/cmdtree/internal/dispatch"
)

// ExecOptions holds flags for the exec command.
type ExecOptions struct {
	*RootOptions
	Namespace string
	Level     int
}

// ExecResult is the outcome of running one input line.
type ExecResult struct {
	Input    string `json:"input"`
	Result   int    `json:"result"`
	Executed []Call `json:"executed"`
}

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExecOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "exec <file> <input...>",
		Short: "Compile a document and run one input line against it",
		Long: `Compile a command document and execute one input line.

The remaining arguments are joined with spaces to form the input. Each
executable reached prints its id and parsed arguments and counts as one
success; forked redirects run once per source.

Example:
  cmdtree exec commands.json foo bar 5
  cmdtree exec commands.json --level 2 admin reload`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(opts, args[0], strings.Join(args[1:], " "), cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Namespace, "namespace", "n", "", "namespace for executable references (default from config)")
	cmd.Flags().IntVarP(&opts.Level, "level", "l", 0, "permission level of the command source")

	return cmd
}

func runExec(opts *ExecOptions, file, input string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	loadResult, err := LoadDocument(file, opts.namespace(opts.Namespace))
	if err != nil {
		return formatter.fail(ExitCommandError, errorCode(err), err.Error(), nil)
	}

	var echoOut io.Writer
	if formatter.Format != "json" {
		echoOut = formatter.Writer
	}
	d := dispatch.New()
	calls := newEcho(echoOut)
	compiled := compileInto(d, loadResult, opts.logger(), calls)
	for _, s := range compiled.Skipped {
		formatter.VerboseLog("Skipped %s: %s", s.Name, s.Error)
	}

	formatter.VerboseLog("Executing %q at level %d", input, opts.Level)
	n, execErr := d.Execute(input, levelSource(opts.Level))
	result := ExecResult{Input: input, Result: n, Executed: calls.take()}
	if result.Executed == nil {
		result.Executed = []Call{}
	}

	if execErr != nil {
		code := ErrCodeExecFailed
		if dispatch.IsSyntaxError(execErr) {
			code = ErrCodeSyntax
		}
		if formatter.Format == "json" {
			_ = formatter.Encode(CLIResponse{
				Status: "error",
				Data:   result,
				Error:  &CLIError{Code: code, Message: execErr.Error()},
			})
		} else {
			fmt.Fprintf(formatter.Writer, "✗ %s\n", execErr)
		}
		return WrapExitError(ExitFailure, code, execErr)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "→ %d\n", n)
	return nil
}
