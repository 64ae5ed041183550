// Package harness provides conformance testing for command documents.
//
// The harness loads a command document into a fresh dispatcher through a
// manager, runs input lines against it, and validates what ran as
// executable contract tests.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	namespace: test
//	document:
//	  foo:
//	    executable: true
//	    arguments:
//	      bar: { type: "brigadier:integer", executable: true }
//	late:
//	  baz: { redirect: foo }
//	level: 0
//	executables: [foo, foo/bar]
//	modifiers: { baz: 2 }
//	steps:
//	  - input: foo 3
//	    expect:
//	      result: 1
//	      executed: [foo/bar]
//	assertions:
//	  - type: trace_contains
//	    path: foo/bar
//	    args: { bar: 3 }
//
// document_file may replace document to load a JSON, YAML, TOML or CUE
// document from disk.
//
// # Assertion Types
//
// The following assertion types are supported:
//
//   - trace_contains: Verifies an executable ran with matching args
//   - trace_order: Verifies executables first ran in the specified order
//   - trace_count: Verifies an executable ran exactly N times
//   - registered: Verifies commands were registered
//
// # Traces
//
// Every reload, executed input and logged warning becomes a trace event
// with a sequence number. Executables bound by the scenario record their
// path, parsed arguments and the fork that ran them, then return 1.
// Traces are compared with golden files in canonical JSON.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/fork_fanout.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, e := range result.Errors {
//	        log.Println(e)
//	    }
//	}
package harness
