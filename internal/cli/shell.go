package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/roach88/cmdtree/internal/dispatch"
	"github.com/roach88/cmdtree/internal/manager"
	"github.com/roach88/cmdtree/internal/store"
)

// ShellOptions holds flags for the shell command.
type ShellOptions struct {
	*RootOptions
	Namespace string
	Level     int
	Watch     bool
	HistoryDB string
}

// NewShellCommand creates the shell command.
func NewShellCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShellOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "shell [dir]",
		Short: "Run input lines against a namespace's commands",
		Long: `Load <dir>/<namespace>/commands.{json,yaml,yml,toml,cue} and read input
lines from stdin, executing each against the compiled commands.

Lines starting with ":" are shell directives:
  :reload        reload the document
  :usage         list every runnable input
  :level <n>     change the permission level of the source
  :quit          leave the shell

With --watch the document is reloaded whenever it changes on disk. With
--history-db (or history_db in the config) every reload is recorded.
The directory defaults to data_dir from the config.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := opts.config().DataDir
			if len(args) == 1 {
				dir = args[0]
			}
			return runShell(opts, dir, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Namespace, "namespace", "n", "", "namespace to load (default from config)")
	cmd.Flags().IntVarP(&opts.Level, "level", "l", 0, "permission level of the command source")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "reload when the document changes")
	cmd.Flags().StringVar(&opts.HistoryDB, "history-db", "", "record reloads in this SQLite database (default from config)")

	return cmd
}

func runShell(opts *ShellOptions, dir string, cmd *cobra.Command) error {
	cfg := opts.config()
	logger := opts.logger()
	ns := opts.namespace(opts.Namespace)

	managerOpts := []manager.Option{manager.WithLogger(logger)}
	var history *store.Store
	dbPath := opts.HistoryDB
	if dbPath == "" {
		dbPath = cfg.HistoryDB
	}
	if dbPath != "" {
		st, err := store.Open(dbPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open history database", err)
		}
		defer st.Close()
		history = st
		managerOpts = append(managerOpts, manager.WithRecorder(st))
		logger.Debug("recording reloads", "path", dbPath)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sh := &shell{
		m:     manager.New(ns, managerOpts...),
		src:     manager.DirSource{Dir: dir},
		history: history,
		logger:  logger,
		out:     cmd.OutOrStdout(),
		level:   opts.Level,
	}
	sh.calls = newEcho(sh.out)
	sh.reload(ctx)

	var watchDone chan struct{}
	if opts.Watch {
		watchDone = make(chan struct{})
		go func() {
			defer close(watchDone)
			err := manager.Watch(ctx, manager.WatchConfig{
				Dir:      dir,
				Debounce: cfg.WatchDebounce,
				Logger:   logger,
				OnChange: func(ctx context.Context, changed []string) error {
					if touchesNamespace(changed, ns) {
						sh.reload(ctx)
					}
					return nil
				},
			})
			if err != nil {
				logger.Error("watch stopped", "error", err)
			}
		}()
	}

	err := sh.loop(ctx, cmd.InOrStdin())
	cancel()
	if watchDone != nil {
		<-watchDone
	}
	return err
}

// shell holds the live dispatcher. Reloads swap it; mu serializes output
// and execution against reloads from the watcher.
type shell struct {
	m       *manager.Manager
	src     manager.Source
	calls   *echo
	history *store.Store
	logger  *slog.Logger

	// reloading covers SetDispatcher through the swap, since Apply consumes
	// whichever dispatcher was set last.
	reloading sync.Mutex

	mu    sync.Mutex
	out   io.Writer
	d     *dispatch.Dispatcher
	level int
}

// reload builds a fresh dispatcher from the document and swaps it in.
func (s *shell) reload(ctx context.Context) manager.Report {
	s.reloading.Lock()
	defer s.reloading.Unlock()

	p := s.m.Prepare(ctx, s.src)
	s.calls.bind(s.m, p.Nodes)
	unchanged := s.unchanged(ctx, p)

	d := dispatch.New()
	s.m.SetDispatcher(d)
	rep := s.m.Apply(ctx, p)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.d = d
	fmt.Fprintf(s.out, "reloaded %s: %s, %d registered, %d skipped\n",
		rep.Namespace, rep.Status, len(rep.Registered), len(rep.Skipped))
	if unchanged {
		fmt.Fprintln(s.out, "  unchanged since last recorded reload")
	}
	for _, sk := range rep.Skipped {
		fmt.Fprintf(s.out, "  skipped %s: %s\n", sk.Name, sk.Error)
	}
	return rep
}

// unchanged reports whether the prepared document matches the digest of the
// last applied reload in the history database. It must run before Apply
// records the new report.
func (s *shell) unchanged(ctx context.Context, p manager.Prepared) bool {
	if s.history == nil || p.Status != manager.StatusApplied || p.Digest == "" {
		return false
	}
	last, ok, err := s.history.LastDigest(ctx, s.m.Namespace())
	if err != nil {
		s.logger.Warn("failed to read last digest", "error", err)
		return false
	}
	return ok && last == p.Digest
}

// loop reads lines from in until EOF, :quit or cancellation.
func (s *shell) loop(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	s.prompt()
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case line == ":quit" || line == ":exit":
			return nil
		case line == ":reload":
			s.reload(ctx)
		case line == ":usage":
			s.usage()
		case strings.HasPrefix(line, ":level"):
			s.setLevel(strings.TrimSpace(strings.TrimPrefix(line, ":level")))
		case strings.HasPrefix(line, ":"):
			s.printf("unknown directive %s\n", line)
		default:
			s.execute(strings.TrimPrefix(line, "/"))
		}
		s.prompt()
	}
	return scanner.Err()
}

func (s *shell) execute(input string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.d.Execute(input, levelSource(s.level))
	s.calls.take()
	if err != nil {
		fmt.Fprintf(s.out, "✗ %s\n", err)
		return
	}
	fmt.Fprintf(s.out, "→ %d\n", n)
}

func (s *shell) usage() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, line := range s.d.AllUsage(s.d.Root(), levelSource(s.level), true) {
		fmt.Fprintf(s.out, "/%s\n", line)
	}
}

func (s *shell) setLevel(arg string) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 0 {
		s.printf("usage: :level <n>\n")
		return
	}
	s.mu.Lock()
	s.level = n
	s.mu.Unlock()
	s.printf("level %d\n", n)
}

func (s *shell) prompt() { s.printf("> ") }

func (s *shell) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}

// touchesNamespace reports whether any changed path is under ns/.
func touchesNamespace(changed []string, ns string) bool {
	for _, p := range changed {
		if strings.HasPrefix(p, ns+"/") {
			return true
		}
	}
	return false
}
