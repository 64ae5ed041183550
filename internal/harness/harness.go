package harness

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/roach88/cmdtree/internal/dispatch"
	"github.com/roach88/cmdtree/internal/manager"
	"github.com/roach88/cmdtree/internal/value"
)

// Harness is the test execution engine.
// It runs one scenario against a fresh dispatcher and manager, with
// recording executables and a deterministic sequence counter.
type Harness struct {
	scenario   *Scenario
	dispatcher *dispatch.Dispatcher
	manager    *manager.Manager
	warnings   *collector
	seq        int64

	mu       sync.Mutex
	executed []Execution
}

// source runs scenario steps. Forks carry a label naming the modifier
// and index that produced them.
type source struct {
	level int
	label string
}

func (s *source) HasPermission(level int) bool { return s.level >= level }

// Run executes a test scenario and returns the result.
//
// Execution flow:
// 1. Bind recording executables and fan-out modifiers
// 2. Reload the document, then the late document if any
// 3. Run each step and check its expect clause
// 4. Evaluate assertions against the trace
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	ns := scenario.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}

	h := &Harness{
		scenario:   scenario,
		dispatcher: dispatch.New(),
		warnings:   &collector{},
	}
	h.manager = manager.New(ns,
		manager.WithLogger(slog.New(h.warnings)),
		manager.WithCycleIDs(manager.NewSequenceGenerator("cycle")))

	for _, p := range scenario.Executables {
		h.manager.SetExecutablePath(p, h.record(p))
	}
	for p, n := range scenario.Modifiers {
		h.manager.SetRedirectModifierPath(p, fanOut(p, n))
	}

	result := NewResult()

	primary, err := h.source(ns, scenario.Document)
	if err != nil {
		return nil, err
	}
	h.reload(ctx, primary, result)

	if scenario.Late != nil {
		late, err := documentSource(ns, scenario.Late)
		if err != nil {
			return nil, fmt.Errorf("late document: %w", err)
		}
		h.reload(ctx, late, result)
	}

	for i, step := range scenario.Steps {
		h.runStep(i, step, result)
	}

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}

	return result, nil
}

func (h *Harness) source(ns string, doc map[string]any) (manager.Source, error) {
	if h.scenario.DocumentFile != "" {
		return manager.FileSource(h.scenario.DocumentFile), nil
	}
	src, err := documentSource(ns, doc)
	if err != nil {
		return nil, fmt.Errorf("document: %w", err)
	}
	return src, nil
}

func documentSource(ns string, doc map[string]any) (manager.Source, error) {
	v, err := value.FromAny(doc)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(value.Object)
	if !ok {
		return nil, fmt.Errorf("expected a mapping, got %s", value.Kind(v))
	}
	return manager.MemorySource{ns: obj}, nil
}

// reload registers a document into the harness dispatcher.
func (h *Harness) reload(ctx context.Context, src manager.Source, result *Result) {
	h.manager.SetDispatcher(h.dispatcher)
	rep := h.manager.Reload(ctx, src)

	event := TraceEvent{
		Type:       EventReload,
		Seq:        h.next(),
		Status:     rep.Status,
		Registered: slices.Sorted(slices.Values(rep.Registered)),
	}
	for _, s := range rep.Skipped {
		event.Skipped = append(event.Skipped, s.Name)
	}
	slices.Sort(event.Skipped)
	result.Trace = append(result.Trace, event)
	h.drainWarnings(result)
}

// runStep executes one input line and validates its expect clause.
func (h *Harness) runStep(i int, step Step, result *Result) {
	level := h.scenario.Level
	if step.Level != nil {
		level = *step.Level
	}

	h.mu.Lock()
	h.executed = nil
	h.mu.Unlock()

	n, err := h.dispatcher.Execute(step.Input, &source{level: level})

	h.mu.Lock()
	executed := h.executed
	h.mu.Unlock()

	event := TraceEvent{
		Type:     EventExecute,
		Seq:      h.next(),
		Input:    step.Input,
		Result:   n,
		Executed: executed,
	}
	if err != nil {
		event.Error = err.Error()
	}
	result.Trace = append(result.Trace, event)
	h.drainWarnings(result)

	if step.Expect != nil {
		for _, msg := range checkExpect(step.Expect, event) {
			result.AddError(fmt.Sprintf("steps[%d] %q: %s", i, step.Input, msg))
		}
	}
}

// checkExpect compares a step's outcome with its expect clause.
func checkExpect(want *Expect, got TraceEvent) []string {
	var errs []string

	switch {
	case want.Error != "" && got.Error == "":
		errs = append(errs, fmt.Sprintf("expected error containing %q, got result %d", want.Error, got.Result))
	case want.Error != "" && !strings.Contains(got.Error, want.Error):
		errs = append(errs, fmt.Sprintf("expected error containing %q, got %q", want.Error, got.Error))
	case want.Error == "" && got.Error != "":
		errs = append(errs, fmt.Sprintf("unexpected error: %s", got.Error))
	}

	if want.Result != nil && *want.Result != got.Result {
		errs = append(errs, fmt.Sprintf("expected result %d, got %d", *want.Result, got.Result))
	}

	if want.Executed != nil {
		paths := make([]string, 0, len(got.Executed))
		for _, e := range got.Executed {
			paths = append(paths, e.Path)
		}
		if !slices.Equal(paths, want.Executed) {
			errs = append(errs, fmt.Sprintf("expected executed %v, got %v", want.Executed, paths))
		}
	}

	return errs
}

// record returns an executable that logs its run and returns 1.
func (h *Harness) record(path string) dispatch.Command {
	return func(ctx *dispatch.Context) (int, error) {
		e := Execution{Path: path, Args: normalizeArgs(ctx.Arguments())}
		if src, ok := ctx.Source().(*source); ok {
			e.Source = src.label
		}
		h.mu.Lock()
		h.executed = append(h.executed, e)
		h.mu.Unlock()
		return 1, nil
	}
}

// fanOut returns a modifier that turns one source into n labelled ones.
func fanOut(path string, n int) dispatch.RedirectModifier {
	return func(ctx *dispatch.Context) ([]dispatch.Source, error) {
		level := 0
		if parent, ok := ctx.Source().(*source); ok {
			level = parent.level
		}
		out := make([]dispatch.Source, n)
		for i := range out {
			out[i] = &source{level: level, label: fmt.Sprintf("%s#%d", path, i+1)}
		}
		return out, nil
	}
}

// normalizeArgs converts parsed arguments to plain JSON-like values so they
// compare against YAML and serialize canonically. Types with no JSON form
// are rendered with fmt.
func normalizeArgs(args map[string]any) map[string]any {
	if len(args) == 0 {
		return nil
	}
	out := make(map[string]any, len(args))
	for k, raw := range args {
		v, err := value.FromAny(raw)
		if err != nil {
			out[k] = fmt.Sprint(raw)
			continue
		}
		out[k] = value.ToAny(v)
	}
	return out
}

func (h *Harness) next() int64 {
	h.seq++
	return h.seq
}

func (h *Harness) drainWarnings(result *Result) {
	for _, w := range h.warnings.drain() {
		result.Trace = append(result.Trace, TraceEvent{
			Type:    EventWarning,
			Seq:     h.next(),
			Message: w.message,
			Attrs:   w.attrs,
		})
	}
}

type warning struct {
	message string
	attrs   map[string]string
}

// collector is a slog.Handler that keeps warnings for the trace and drops
// everything below.
type collector struct {
	mu      sync.Mutex
	records []warning
	shared  *collector
	attrs   []slog.Attr
}

func (c *collector) root() *collector {
	if c.shared != nil {
		return c.shared
	}
	return c
}

func (c *collector) Enabled(_ context.Context, l slog.Level) bool {
	return l >= slog.LevelWarn
}

func (c *collector) Handle(_ context.Context, r slog.Record) error {
	w := warning{message: r.Message, attrs: map[string]string{}}
	for _, a := range c.attrs {
		w.attrs[a.Key] = a.Value.String()
	}
	r.Attrs(func(a slog.Attr) bool {
		w.attrs[a.Key] = a.Value.String()
		return true
	})
	if len(w.attrs) == 0 {
		w.attrs = nil
	}

	root := c.root()
	root.mu.Lock()
	root.records = append(root.records, w)
	root.mu.Unlock()
	return nil
}

func (c *collector) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &collector{shared: c.root(), attrs: append(slices.Clone(c.attrs), attrs...)}
}

func (c *collector) WithGroup(string) slog.Handler { return c }

func (c *collector) drain() []warning {
	root := c.root()
	root.mu.Lock()
	defer root.mu.Unlock()
	out := root.records
	root.records = nil
	return out
}
