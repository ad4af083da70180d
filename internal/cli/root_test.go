package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoot_ListsSubcommands(t *testing.T) {
	out, err := executeCommand(t, "--help")
	require.NoError(t, err)

	for _, sub := range []string{"run", "replay", "digests", "show"} {
		assert.Contains(t, out, sub)
	}
}

func TestRoot_RejectsInvalidFormat(t *testing.T) {
	path := writePlan(t, `
name: "x"
steps: [{ op: "add", action: "set", params: ["k", 1] }]
`)

	_, err := executeCommand(t, "run", path, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRoot_UnknownCommand(t *testing.T) {
	_, err := executeCommand(t, "transmogrify")
	assert.Error(t, err)
}
