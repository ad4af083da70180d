package cli

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// planSchema is the CUE definition every plan file must satisfy.
// Validation happens before execution so a typo in an op name or a negative
// index is a load error, not a runtime issue.
const planSchema = `
#Step: {
	op: "add" | "rerun" | "reset" | "retry"
	if op == "add" {
		action: string & !=""
		params?: [...]
	}
	if op == "rerun" {
		index: int & >=0
	}
}

#Plan: {
	name:        string & !=""
	description: string | *""
	initial: {...}
	digest_interval: int & >=1 | *10
	steps: [#Step, ...#Step]
}
`

// Plan is a declarative container run: an initial state plus a sequence of
// operations referencing built-in executables.
type Plan struct {
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	Initial        map[string]any `json:"initial"`
	DigestInterval int            `json:"digest_interval"`
	Steps          []PlanStep     `json:"steps"`
}

// PlanStep is one operation in a plan.
type PlanStep struct {
	Op     string `json:"op"`
	Action string `json:"action,omitempty"`
	Params []any  `json:"params,omitempty"`
	Index  *int   `json:"index,omitempty"`
}

// LoadPlan reads a CUE plan file, validates it against the plan schema, and
// decodes it. Schema violations surface with CUE's position information.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to read plan file", err)
	}

	ctx := cuecontext.New()

	schema := ctx.CompileString(planSchema)
	if err := schema.Err(); err != nil {
		return nil, WrapExitError(ExitCommandError, "internal plan schema error", err)
	}

	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to parse plan", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Plan")).Unify(value)
	if err := unified.Validate(cue.Concrete(true), cue.Final()); err != nil {
		return nil, WrapExitError(ExitCommandError, "plan failed validation", err)
	}

	var plan Plan
	if err := unified.Decode(&plan); err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to decode plan", err)
	}

	// Decode leaves deliberately absent maps nil; normalize so callers can
	// range without checking.
	if plan.Initial == nil {
		plan.Initial = map[string]any{}
	}

	for i, step := range plan.Steps {
		if step.Op == "add" {
			if _, ok := Builtins[step.Action]; !ok {
				return nil, NewExitError(ExitCommandError,
					fmt.Sprintf("steps[%d]: unknown action %q (available: %v)", i, step.Action, BuiltinNames()))
			}
		}
	}

	return &plan, nil
}
