package manager

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/cmdtree/internal/argtype"
	"github.com/roach88/cmdtree/internal/command"
	"github.com/roach88/cmdtree/internal/compiler"
	"github.com/roach88/cmdtree/internal/dispatch"
	"github.com/roach88/cmdtree/internal/resource"
	"github.com/roach88/cmdtree/internal/value"
)

// Reload statuses.
const (
	StatusApplied         = "applied"
	StatusNoDocument      = "no_document"
	StatusInvalidDocument = "invalid_document"
	StatusNoDispatcher    = "no_dispatcher"
)

// Recorder persists reload reports.
type Recorder interface {
	RecordReload(ctx context.Context, r Report) error
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. The default is slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// WithArgumentTypes sets the registry argument types fall back to. The
// default is argtype.Builtins.
func WithArgumentTypes(fallback *argtype.Registry) Option {
	return func(m *Manager) {
		m.fallback = fallback
	}
}

// WithRecorder records every report Apply produces.
func WithRecorder(r Recorder) Option {
	return func(m *Manager) {
		m.recorder = r
	}
}

// Manager loads the command document of one namespace and registers its
// commands with a dispatcher on every reload.
//
// The dispatcher is consumed by Apply: it must be set again before the next
// reload.
type Manager struct {
	namespace string
	logger    *slog.Logger
	fallback  *argtype.Registry
	recorder  Recorder
	ids       CycleIDGenerator
	now       func() time.Time
	env       *compiler.Env

	mu         sync.Mutex
	dispatcher *dispatch.Dispatcher
}

// New returns a Manager for namespace.
func New(namespace string, opts ...Option) *Manager {
	m := &Manager{namespace: namespace}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.ids == nil {
		m.ids = UUIDv7Generator{}
	}
	if m.now == nil {
		m.now = time.Now
	}
	m.env = compiler.NewEnv(m.fallback)
	return m
}

// Namespace returns the namespace the manager loads.
func (m *Manager) Namespace() string { return m.namespace }

// Env returns the bindings commands are compiled against.
func (m *Manager) Env() *compiler.Env { return m.env }

// SetExecutable binds an executable reference.
func (m *Manager) SetExecutable(id resource.ID, cmd dispatch.Command) {
	m.env.SetExecutable(id, cmd)
}

// SetExecutablePath binds path in the manager's namespace.
func (m *Manager) SetExecutablePath(path string, cmd dispatch.Command) {
	m.env.SetExecutable(resource.ID{Namespace: m.namespace, Path: path}, cmd)
}

// SetRedirectModifier binds a modifier reference.
func (m *Manager) SetRedirectModifier(id resource.ID, mod dispatch.RedirectModifier) {
	m.env.SetRedirectModifier(id, mod)
}

// SetRedirectModifierPath binds path in the manager's namespace.
func (m *Manager) SetRedirectModifierPath(path string, mod dispatch.RedirectModifier) {
	m.env.SetRedirectModifier(resource.ID{Namespace: m.namespace, Path: path}, mod)
}

// SetArgumentType binds a type id ahead of the fallback registry.
func (m *Manager) SetArgumentType(id resource.ID, f argtype.Factory) {
	m.env.SetArgumentType(id, f)
}

// SetDispatcher sets the dispatcher the next Apply registers with.
func (m *Manager) SetDispatcher(d *dispatch.Dispatcher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dispatcher = d
}

func (m *Manager) takeDispatcher() *dispatch.Dispatcher {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.dispatcher
	m.dispatcher = nil
	return d
}

// Prepared is a loaded document waiting to be applied.
type Prepared struct {
	Source string
	Digest string
	Status string
	Nodes  []*command.Node
	Err    error
}

// Prepare loads and reads the namespace's document from src. It never
// fails: a missing document yields no commands, and an unreadable or
// invalid one is logged and yields no commands.
func (m *Manager) Prepare(ctx context.Context, src Source) Prepared {
	doc, err := src.Open(ctx, m.namespace)
	if err != nil {
		if errors.Is(err, ErrNoDocument) {
			m.logger.Debug("no command document", "namespace", m.namespace, "error", err)
			return Prepared{Status: StatusNoDocument, Err: err}
		}
		m.logger.Warn("invalid command document", "namespace", m.namespace, "error", err)
		return Prepared{Status: StatusInvalidDocument, Err: err}
	}

	p := Prepared{Source: doc.Name}
	if p.Digest, err = value.Digest(doc.Data); err != nil {
		m.logger.Warn("invalid command document", "namespace", m.namespace, "source", doc.Name, "error", err)
		p.Status, p.Err = StatusInvalidDocument, err
		return p
	}

	nodes, err := command.ReadAll(m.namespace, doc.Data)
	if err != nil {
		m.logger.Warn("invalid command document", "namespace", m.namespace, "source", doc.Name, "error", err)
		p.Status, p.Err = StatusInvalidDocument, err
		return p
	}

	for _, w := range compiler.AnalyzeRedirects(nodes) {
		if w.Level == "warning" {
			m.logger.Warn(w.Message, "namespace", m.namespace, "source", doc.Name)
		} else {
			m.logger.Debug(w.Message, "namespace", m.namespace, "source", doc.Name)
		}
	}

	p.Status = StatusApplied
	p.Nodes = nodes
	return p
}

// SkippedCommand is a top-level command Apply could not register.
type SkippedCommand struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// Report describes one reload.
type Report struct {
	CycleID    string           `json:"cycle_id"`
	Namespace  string           `json:"namespace"`
	Source     string           `json:"source,omitempty"`
	Digest     string           `json:"digest,omitempty"`
	Status     string           `json:"status"`
	Registered []string         `json:"registered"`
	Skipped    []SkippedCommand `json:"skipped,omitempty"`
	Error      string           `json:"error,omitempty"`
	AppliedAt  time.Time        `json:"applied_at"`
}

// Apply registers the prepared commands with the current dispatcher, each
// top-level command on its own: one that fails to compile is logged and
// skipped. Without a dispatcher nothing is registered. The dispatcher is
// cleared afterwards either way.
func (m *Manager) Apply(ctx context.Context, p Prepared) Report {
	r := Report{
		CycleID:    m.ids.Generate(),
		Namespace:  m.namespace,
		Source:     p.Source,
		Digest:     p.Digest,
		Status:     p.Status,
		Registered: []string{},
		AppliedAt:  m.now().UTC(),
	}
	if p.Err != nil {
		r.Error = p.Err.Error()
	}

	d := m.takeDispatcher()
	if d == nil {
		m.logger.Warn("no dispatcher set, skipping command registration", "namespace", m.namespace)
		r.Status = StatusNoDispatcher
		m.record(ctx, r)
		return r
	}

	res := compiler.RegisterAll(m.env, p.Nodes, d, compiler.Options{Namespace: m.namespace, Logger: m.logger})
	r.Registered = append(r.Registered, res.Registered...)
	for _, s := range res.Skipped {
		m.logger.Warn("failed to register command",
			"command", resource.ID{Namespace: m.namespace, Path: s.Name}.String(),
			"error", s.Err)
		r.Skipped = append(r.Skipped, SkippedCommand{Name: s.Name, Error: s.Err.Error()})
	}

	m.logger.Info("finished registering commands",
		"namespace", m.namespace,
		"registered", len(r.Registered),
		"skipped", len(r.Skipped))
	m.record(ctx, r)
	return r
}

// Reload prepares from src and applies the result.
func (m *Manager) Reload(ctx context.Context, src Source) Report {
	return m.Apply(ctx, m.Prepare(ctx, src))
}

func (m *Manager) record(ctx context.Context, r Report) {
	if m.recorder == nil {
		return
	}
	if err := m.recorder.RecordReload(ctx, r); err != nil {
		m.logger.Warn("failed to record reload", "namespace", m.namespace, "cycle_id", r.CycleID, "error", err)
	}
}
