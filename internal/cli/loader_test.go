package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePlan(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.cue")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadPlan_Valid(t *testing.T) {
	path := writePlan(t, `
name: "counter"
initial: { value: 0 }
digest_interval: 2
steps: [
	{ op: "add", action: "increment", params: ["value", 1] },
	{ op: "rerun", index: 0 },
	{ op: "reset" },
]
`)

	plan, err := LoadPlan(path)
	require.NoError(t, err)

	assert.Equal(t, "counter", plan.Name)
	assert.Equal(t, 2, plan.DigestInterval)
	require.Len(t, plan.Steps, 3)
	assert.Equal(t, "add", plan.Steps[0].Op)
	assert.Equal(t, "increment", plan.Steps[0].Action)
	require.NotNil(t, plan.Steps[1].Index)
	assert.Equal(t, 0, *plan.Steps[1].Index)
	assert.Equal(t, "reset", plan.Steps[2].Op)
}

func TestLoadPlan_Defaults(t *testing.T) {
	path := writePlan(t, `
name: "minimal"
steps: [{ op: "retry" }]
`)

	plan, err := LoadPlan(path)
	require.NoError(t, err)

	assert.Equal(t, "", plan.Description)
	assert.Equal(t, 10, plan.DigestInterval)
	assert.NotNil(t, plan.Initial)
	assert.Empty(t, plan.Initial)
}

func TestLoadPlan_MissingFile(t *testing.T) {
	_, err := LoadPlan(filepath.Join(t.TempDir(), "nope.cue"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestLoadPlan_SchemaViolations(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing name",
			content: `steps: [{ op: "retry" }]`,
		},
		{
			name:    "empty steps",
			content: `name: "x", steps: []`,
		},
		{
			name:    "unknown op",
			content: `name: "x", steps: [{ op: "teleport" }]`,
		},
		{
			name:    "add without action",
			content: `name: "x", steps: [{ op: "add" }]`,
		},
		{
			name:    "rerun without index",
			content: `name: "x", steps: [{ op: "rerun" }]`,
		},
		{
			name:    "negative rerun index",
			content: `name: "x", steps: [{ op: "rerun", index: -1 }]`,
		},
		{
			name:    "zero digest interval",
			content: `name: "x", digest_interval: 0, steps: [{ op: "retry" }]`,
		},
		{
			name:    "unknown top-level field",
			content: `name: "x", stepz: [], steps: [{ op: "retry" }]`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadPlan(writePlan(t, tt.content))
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}

func TestLoadPlan_UnknownAction(t *testing.T) {
	path := writePlan(t, `
name: "x"
steps: [{ op: "add", action: "summon" }]
`)

	_, err := LoadPlan(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown action "summon"`)
}
