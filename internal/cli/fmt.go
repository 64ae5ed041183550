package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/cmdtree/internal/command"
	"github.com/roach88/cmdtree/internal/value"
)

// FmtOptions holds flags for the fmt command.
type FmtOptions struct {
	*RootOptions
	Namespace string
	Output    string
}

// NewFmtCommand creates the fmt command.
func NewFmtCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FmtOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fmt <file>",
		Short: "Print a command document in normalized JSON form",
		Long: `Read a command document and write it back out as JSON.

Writing uses the short forms: "executable": true for an executable at the
node's own path, a string redirect without modifier, and level names
instead of numbers. Any input format is accepted.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Namespace, "namespace", "n", "", "namespace for executable references (default from config)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the document to this file instead of stdout")

	return cmd
}

func runFmt(opts *FmtOptions, file string, cmd *cobra.Command) error {
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

	doc := command.WriteAll(loadResult.Namespace, loadResult.Nodes)
	data, err := value.MarshalIndent(doc, "  ")
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("marshaling document: %v", err), nil)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, data, 0o644); err != nil {
			return formatter.fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
		formatter.VerboseLog("Wrote %s", opts.Output)
		if formatter.Format == "json" {
			return formatter.Success(map[string]string{"output": opts.Output})
		}
		fmt.Fprintf(formatter.Writer, "✓ Wrote %s\n", opts.Output)
		return nil
	}

	if formatter.Format == "json" {
		return formatter.Success(doc)
	}
	_, err = formatter.Writer.Write(data)
	return err
}
