package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a container test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Initial is the container's starting state. May be empty.
	Initial map[string]any `yaml:"initial,omitempty"`

	// DigestInterval overrides the container's digest interval.
	// Zero keeps the container default.
	DigestInterval int `yaml:"digest_interval,omitempty"`

	// Steps is the operation sequence. Required, non-empty.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final container. Required, non-empty.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is a single container operation.
type Step struct {
	// Op is one of "add", "rerun", "reset", "retry".
	Op string `yaml:"op"`

	// Action names a registered executable. Required for add.
	Action string `yaml:"action,omitempty"`

	// Params are passed to the executable on add.
	Params []any `yaml:"params,omitempty"`

	// Index is the replay target. Required for rerun.
	Index *int `yaml:"index,omitempty"`

	// Expect validates the step's outcome. Nil skips validation.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a step.
type ExpectClause struct {
	// Success is the expected outcome kind.
	Success bool `yaml:"success"`

	// Content is the expected result content. Only checked when non-nil.
	Content any `yaml:"content,omitempty"`

	// State contains expected state values after the step.
	// Subset match - only specified keys are validated.
	State map[string]any `yaml:"state,omitempty"`

	// Message is the expected issue message. Only checked when non-empty.
	Message string `yaml:"message,omitempty"`
}

// Assertion validates the final container.
type Assertion struct {
	// Type is one of "final_state", "history_length", "pointer",
	// "digest_count".
	Type string `yaml:"type"`

	// Expect contains expected state values (final_state).
	// Subset match - only specified keys are validated.
	Expect map[string]any `yaml:"expect,omitempty"`

	// Count is the expected length or count (history_length, digest_count).
	Count int `yaml:"count,omitempty"`

	// Index is the expected replay pointer (pointer). -1 means none applied.
	Index int `yaml:"index,omitempty"`
}

// Operation constants.
const (
	OpAdd   = "add"
	OpRerun = "rerun"
	OpReset = "reset"
	OpRetry = "retry"
)

// Assertion type constants.
const (
	AssertFinalState    = "final_state"
	AssertHistoryLength = "history_length"
	AssertPointer       = "pointer"
	AssertDigestCount   = "digest_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
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
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	if s.DigestInterval < 0 {
		return fmt.Errorf("digest_interval must be non-negative")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateStep validates a single step based on its operation.
func validateStep(index int, s *Step) error {
	switch s.Op {
	case OpAdd:
		if s.Action == "" {
			return fmt.Errorf("steps[%d]: action is required for add", index)
		}
	case OpRerun:
		if s.Index == nil {
			return fmt.Errorf("steps[%d]: index is required for rerun", index)
		}
	case OpReset, OpRetry:
		// No extra fields.
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, s.Op)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertFinalState:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	case AssertHistoryLength, AssertDigestCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertPointer:
		if a.Index < -1 {
			return fmt.Errorf("assertions[%d]: index must be at least -1 for pointer", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
