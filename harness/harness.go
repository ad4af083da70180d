package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"time"

	"github.com/roach88/tally"
	"github.com/roach88/tally/action"
	"github.com/roach88/tally/container"
	"github.com/roach88/tally/outcome"
)

// Registry maps scenario action names to executables. The caller owns the
// logic; scenarios reference it by name.
type Registry map[string]action.Executable

// TraceEvent records one executed step for golden comparison.
type TraceEvent struct {
	Seq     int            `json:"seq"`
	Op      string         `json:"op"`
	Action  string         `json:"action,omitempty"`
	Success bool           `json:"success"`
	Content any            `json:"content,omitempty"`
	Message string         `json:"message,omitempty"`
	State   map[string]any `json:"state"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every expect clause and assertion
	// matched.
	Pass bool `json:"pass"`

	// Trace contains one event per executed step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// FinalState is the container state after the last step.
	FinalState map[string]any `json:"final_state"`
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

// seqIDGenerator yields "id-1", "id-2", ... so traces are stable across
// runs. Not safe for concurrent use; the harness is single-threaded.
type seqIDGenerator struct {
	prefix string
	n      int
}

func (g *seqIDGenerator) Generate() string {
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

// Run executes a scenario against a fresh container and returns the result.
//
// Each scenario runs with an isolated ledger, sequential ids, and fixed
// action timestamps, so repeated runs produce identical traces.
//
// An unknown action name is an execution error (the scenario cannot run),
// not a failed expectation.
func Run(scenario *Scenario, registry Registry) (*Result, error) {
	opts := []container.Option{
		container.WithLedger(action.NewLedger()),
		container.WithIDGenerator(&seqIDGenerator{prefix: "digest"}),
		container.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	if scenario.DigestInterval > 0 {
		opts = append(opts, container.WithDigestInterval(scenario.DigestInterval))
	}

	c, err := container.New(tally.State(scenario.Initial), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create container: %w", err)
	}

	ctx := context.Background()
	actGen := &seqIDGenerator{prefix: "act"}
	baseTime := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	result := NewResult()
	for i, step := range scenario.Steps {
		out, err := executeStep(ctx, c, step, registry, actGen, baseTime.Add(time.Duration(i)*time.Second))
		if err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}

		event := traceEvent(i, step, out, c.State())
		result.Trace = append(result.Trace, event)

		if step.Expect != nil {
			validateExpect(result, i, step.Expect, out, c.State())
		}
	}

	result.FinalState = c.State()
	evaluateAssertions(result, scenario.Assertions, c)
	return result, nil
}

func executeStep(ctx context.Context, c *container.Container, step Step, registry Registry, gen action.IDGenerator, ts time.Time) (outcome.Outcome, error) {
	switch step.Op {
	case OpAdd:
		exec, ok := registry[step.Action]
		if !ok {
			return nil, fmt.Errorf("action %q not in registry", step.Action)
		}
		act := action.New(c.Ledger(), step.Action, step.Params, exec,
			action.WithIDGenerator(gen),
			action.WithTimestamp(ts))
		return c.Add(ctx, act, c.State()), nil
	case OpRerun:
		return c.Rerun(ctx, *step.Index, tally.State(nil)), nil
	case OpReset:
		return c.Reset(ctx, c.State()), nil
	case OpRetry:
		return c.Retry(ctx, c.State()), nil
	default:
		return nil, fmt.Errorf("unknown op %q", step.Op)
	}
}

func traceEvent(seq int, step Step, out outcome.Outcome, state tally.State) TraceEvent {
	event := TraceEvent{
		Seq:     seq,
		Op:      step.Op,
		Action:  step.Action,
		Success: out.IsSuccess(),
		State:   state,
	}
	switch v := out.(type) {
	case *outcome.Result:
		event.Content = v.Content()
	case *outcome.Issue:
		event.Message = v.Message()
	}
	return event
}

func validateExpect(result *Result, index int, expect *ExpectClause, out outcome.Outcome, state tally.State) {
	if out.IsSuccess() != expect.Success {
		result.AddError(fmt.Sprintf("steps[%d]: success = %v, expected %v",
			index, out.IsSuccess(), expect.Success))
	}
	if expect.Content != nil {
		res, ok := out.(*outcome.Result)
		if !ok {
			result.AddError(fmt.Sprintf("steps[%d]: expected content on a failed step", index))
		} else if !looseEqual(res.Content(), expect.Content) {
			result.AddError(fmt.Sprintf("steps[%d]: content = %v, expected %v",
				index, res.Content(), expect.Content))
		}
	}
	if expect.Message != "" {
		iss, ok := out.(*outcome.Issue)
		if !ok {
			result.AddError(fmt.Sprintf("steps[%d]: expected message on a successful step", index))
		} else if iss.Message() != expect.Message {
			result.AddError(fmt.Sprintf("steps[%d]: message = %q, expected %q",
				index, iss.Message(), expect.Message))
		}
	}
	for key, expected := range expect.State {
		if got, ok := state[key]; !ok || !looseEqual(got, expected) {
			result.AddError(fmt.Sprintf("steps[%d]: state[%q] = %v, expected %v",
				index, key, state[key], expected))
		}
	}
}

func evaluateAssertions(result *Result, assertions []Assertion, c *container.Container) {
	state := c.State()
	for i, a := range assertions {
		switch a.Type {
		case AssertFinalState:
			for key, expected := range a.Expect {
				if got, ok := state[key]; !ok || !looseEqual(got, expected) {
					result.AddError(fmt.Sprintf("assertions[%d]: final state[%q] = %v, expected %v",
						i, key, state[key], expected))
				}
			}
		case AssertHistoryLength:
			if got := len(c.History()); got != a.Count {
				result.AddError(fmt.Sprintf("assertions[%d]: history length = %d, expected %d",
					i, got, a.Count))
			}
		case AssertPointer:
			if got := c.CurrentIndex(); got != a.Index {
				result.AddError(fmt.Sprintf("assertions[%d]: pointer = %d, expected %d",
					i, got, a.Index))
			}
		case AssertDigestCount:
			if got := len(c.Digests()); got != a.Count {
				result.AddError(fmt.Sprintf("assertions[%d]: digest count = %d, expected %d",
					i, got, a.Count))
			}
		}
	}
}

// looseEqual compares a Go value against a YAML-decoded value. YAML decodes
// integers as int, so the usual pain point is int vs int64 vs float64 from
// executables that went through JSON; normalize numbers before comparing.
func looseEqual(got, expected any) bool {
	if gf, ok := asFloat(got); ok {
		if ef, ok := asFloat(expected); ok {
			return gf == ef
		}
		return false
	}
	return reflect.DeepEqual(got, expected)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
