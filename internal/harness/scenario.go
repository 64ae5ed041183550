package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/cmdtree/internal/resource"
)

// DefaultNamespace is used when a scenario names none.
const DefaultNamespace = "test"

// Scenario defines a conformance test scenario.
// A scenario loads a command document into a fresh dispatcher, runs input
// lines against it and asserts on what ran.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Namespace the document is loaded under. Defaults to "test".
	Namespace string `yaml:"namespace,omitempty"`

	// Document is the command document, inline.
	Document map[string]any `yaml:"document,omitempty"`

	// DocumentFile points at a command document on disk instead.
	// Relative paths resolve against the scenario file's directory.
	DocumentFile string `yaml:"document_file,omitempty"`

	// Late is a second document registered after the first, into the same
	// dispatcher. Redirects in Document may point at its commands.
	Late map[string]any `yaml:"late,omitempty"`

	// Level is the permission level of the source running each step.
	Level int `yaml:"level,omitempty"`

	// Executables lists the paths bound to recording executables.
	Executables []string `yaml:"executables,omitempty"`

	// Modifiers maps redirect modifier paths to how many sources each
	// fans out to.
	Modifiers map[string]int `yaml:"modifiers,omitempty"`

	// Steps are the input lines to run, in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step runs one input line.
type Step struct {
	// Input is the command line, without a leading slash.
	Input string `yaml:"input"`

	// Level overrides the scenario level for this step.
	Level *int `yaml:"level,omitempty"`

	// Expect specifies the expected outcome. If nil, nothing is checked.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies how a step should end.
type Expect struct {
	// Result is the expected result count.
	Result *int `yaml:"result,omitempty"`

	// Executed lists the executable paths expected to run, in order.
	Executed []string `yaml:"executed,omitempty"`

	// Error is a substring the step's error must contain. Empty means the
	// step must succeed.
	Error string `yaml:"error,omitempty"`
}

// Assertion validates the trace.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": Check an executable ran with args
	// - "trace_order": Check executables ran in order
	// - "trace_count": Check an executable ran exactly N times
	// - "registered": Check commands were registered
	Type string `yaml:"type"`

	// Path is the executable path (trace_contains, trace_count).
	Path string `yaml:"path,omitempty"`

	// Args are the expected arguments (trace_contains).
	// Subset match - only specified fields are validated.
	Args map[string]any `yaml:"args,omitempty"`

	// Count is the expected number of runs (trace_count).
	Count int `yaml:"count,omitempty"`

	// Paths is the expected execution order (trace_order).
	Paths []string `yaml:"paths,omitempty"`

	// Commands are top-level command names (registered).
	Commands []string `yaml:"commands,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertRegistered    = "registered"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A relative document_file resolves against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving document_file relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.DocumentFile != "" && !filepath.IsAbs(scenario.DocumentFile) && basePath != "" {
		scenario.DocumentFile = filepath.Join(basePath, scenario.DocumentFile)
	}

	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	if scenario.DocumentFile != "" {
		if _, err := os.Stat(scenario.DocumentFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("invalid scenario: document file not found: %s", scenario.DocumentFile)
		}
	}

	return scenario, nil
}

// ParseScenario decodes scenario YAML without validating it.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Namespace != "" {
		if _, err := resource.New(s.Namespace, "x"); err != nil {
			return fmt.Errorf("namespace: %w", err)
		}
	}

	if s.Document == nil && s.DocumentFile == "" {
		return fmt.Errorf("document or document_file is required")
	}
	if s.Document != nil && s.DocumentFile != "" {
		return fmt.Errorf("document and document_file are mutually exclusive")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, p := range s.Executables {
		if !resource.ValidPath(p) {
			return fmt.Errorf("executables[%d]: invalid path %q", i, p)
		}
	}

	for p, n := range s.Modifiers {
		if !resource.ValidPath(p) {
			return fmt.Errorf("modifiers: invalid path %q", p)
		}
		if n < 0 {
			return fmt.Errorf("modifiers[%s]: count must be non-negative", p)
		}
	}

	for i, step := range s.Steps {
		if step.Expect != nil && step.Expect.Result != nil && step.Expect.Error != "" {
			return fmt.Errorf("steps[%d].expect: result and error are mutually exclusive", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Paths) == 0 {
			return fmt.Errorf("assertions[%d]: paths list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertRegistered:
		if len(a.Commands) == 0 {
			return fmt.Errorf("assertions[%d]: commands list is required for registered", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
