package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/cmdtree/internal/manager"
	"github.com/roach88/cmdtree/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database  string
	Namespace string // optional - filter to one namespace
	Limit     int
}

// HistoryResult holds the reloads listed by the history command.
type HistoryResult struct {
	Reloads []store.Record `json:"reloads"`
	Stats   HistoryStats   `json:"stats"`
}

// HistoryStats holds summary statistics for the listed reloads.
type HistoryStats struct {
	Total   int `json:"total"`
	Applied int `json:"applied"`
	Skipped int `json:"skipped_commands"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded reloads",
		Long: `List the reloads recorded in the history database, oldest first.

Each entry shows the reload cycle, its status, the document digest and
the commands that were registered or skipped. The database defaults to
history_db from the config file.

Examples:
  cmdtree history --db ./history.db
  cmdtree history --db ./history.db --namespace game --limit 5
  cmdtree history --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite history database (default from config)")
	cmd.Flags().StringVarP(&opts.Namespace, "namespace", "n", "", "only list reloads of this namespace")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "list at most this many of the latest reloads (0 for all)")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	dbPath := opts.Database
	if dbPath == "" {
		dbPath = opts.config().HistoryDB
	}
	if dbPath == "" {
		return formatter.fail(ExitCommandError, ErrCodeHistory, "no history database: pass --db or set history_db", nil)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeHistory, fmt.Sprintf("failed to open database: %v", err), nil)
	}
	defer st.Close()

	records, err := st.Reloads(cmd.Context(), opts.Namespace, opts.Limit)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeHistory, fmt.Sprintf("failed to list reloads: %v", err), nil)
	}

	result := HistoryResult{Reloads: records, Stats: HistoryStats{Total: len(records)}}
	if result.Reloads == nil {
		result.Reloads = []store.Record{}
	}
	for _, r := range records {
		if r.Status == manager.StatusApplied {
			result.Stats.Applied++
		}
		result.Stats.Skipped += len(r.Skipped)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	outputHistoryText(formatter.Writer, result, opts.Verbose)
	return nil
}

// outputHistoryText outputs the reloads as text.
func outputHistoryText(w io.Writer, result HistoryResult, verbose bool) {
	fmt.Fprintln(w, "=== Reloads ===")
	if len(result.Reloads) == 0 {
		fmt.Fprintln(w, "  (no reloads recorded)")
	}
	for _, r := range result.Reloads {
		fmt.Fprintf(w, "  [%d] %s %s %s: %d registered, %d skipped\n",
			r.Seq,
			r.AppliedAt.Format(time.RFC3339),
			r.Namespace,
			r.Status,
			len(r.Registered),
			len(r.Skipped))
		for _, s := range r.Skipped {
			fmt.Fprintf(w, "       skipped %s: %s\n", s.Name, s.Error)
		}
		if r.Error != "" {
			fmt.Fprintf(w, "       error: %s\n", r.Error)
		}
		if verbose {
			fmt.Fprintf(w, "       cycle: %s\n", r.CycleID)
			if r.Source != "" {
				fmt.Fprintf(w, "       source: %s\n", r.Source)
			}
			if r.Digest != "" {
				fmt.Fprintf(w, "       digest: %s\n", truncateID(r.Digest))
			}
		}
	}
	fmt.Fprintln(w)

	// Stats section
	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Reloads:          %d\n", result.Stats.Total)
	fmt.Fprintf(w, "  Applied:          %d\n", result.Stats.Applied)
	fmt.Fprintf(w, "  Skipped commands: %d\n", result.Stats.Skipped)
}

// truncateID truncates a long ID for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}
