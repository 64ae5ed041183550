package harness

// Trace event types.
const (
	EventReload  = "reload"
	EventExecute = "execute"
	EventWarning = "warning"
)

// Execution is one executable run during a step.
type Execution struct {
	// Path is the executable's binding path, e.g. "foo/bar".
	Path string `json:"path"`

	// Args holds the parsed arguments the command saw.
	Args map[string]any `json:"args,omitempty"`

	// Source labels the fork that ran the command. Empty for the
	// scenario's own source.
	Source string `json:"source,omitempty"`
}

// TraceEvent records a reload, an executed input or a logged warning.
type TraceEvent struct {
	Type string `json:"type"`
	Seq  int64  `json:"seq"`

	// Reload events
	Status     string   `json:"status,omitempty"`
	Registered []string `json:"registered,omitempty"`
	Skipped    []string `json:"skipped,omitempty"`

	// Execute events
	Input    string      `json:"input,omitempty"`
	Result   int         `json:"result,omitempty"`
	Executed []Execution `json:"executed,omitempty"`
	Error    string      `json:"error,omitempty"`

	// Warning events
	Message string            `json:"message,omitempty"`
	Attrs   map[string]string `json:"attrs,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass is true when every step expectation and assertion holds.
	Pass bool `json:"pass"`

	// Trace contains reloads, executions and warnings in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Executions returns every execution in the trace, in order.
func (r *Result) Executions() []Execution {
	var out []Execution
	for _, e := range r.Trace {
		if e.Type == EventExecute {
			out = append(out, e.Executed...)
		}
	}
	return out
}

// Registered returns every command registered by the scenario's reloads.
func (r *Result) Registered() []string {
	var out []string
	for _, e := range r.Trace {
		if e.Type == EventReload {
			out = append(out, e.Registered...)
		}
	}
	return out
}
