// Package harness provides scenario testing for containers.
//
// Scenarios are YAML files describing a container run: an initial state, a
// sequence of operations (add, rerun, reset, retry), per-step expectations,
// and assertions over the final container. The harness executes each
// scenario against a real container with deterministic ids, so repeated
// runs produce identical traces.
//
// # Scenario Format
//
//	name: scenario_name
//	description: "What this scenario validates"
//	initial:
//	  value: 0
//	digest_interval: 10
//	steps:
//	  - op: add
//	    action: increment
//	    params: [1]
//	    expect:
//	      success: true
//	      state: { value: 1 }
//	  - op: rerun
//	    index: 0
//	assertions:
//	  - type: final_state
//	    expect: { value: 1 }
//	  - type: history_length
//	    count: 1
//
// Step executables are looked up by name in a Registry supplied by the
// caller; scenarios stay declarative and the Go side owns the logic.
//
// # Assertion Types
//
//   - final_state: subset match over the final container state
//   - history_length: exact history length
//   - pointer: exact replay pointer position
//   - digest_count: exact count of locally held digests
//
// # Deterministic Testing
//
// Containers run with sequential ids and fixed action timestamps, so the
// trace of a scenario is stable across runs and suitable for golden
// snapshot comparison (see RunWithGolden).
package harness
