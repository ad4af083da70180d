package container

import (
	"errors"
	"fmt"
)

// ConfigError reports an out-of-range or unusable construction argument.
// Construction errors are fatal and returned synchronously, never wrapped
// into Issues.
type ConfigError struct {
	// Field names the offending option.
	Field string

	// Message describes the valid range or expectation.
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("container config: %s: %s", e.Field, e.Message)
}

// IsConfigError reports whether err is a ConfigError.
// Uses errors.As to handle wrapped errors.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// Lookup failures surface as Issues with these exact messages; callers
// branch on the outcome, tooling matches on the text.
const (
	// MsgInvalidRerunIndex is returned when Rerun gets an index outside
	// [0, len(history)).
	MsgInvalidRerunIndex = "Invalid index for rerun"

	// MsgNoActionsToReset is returned when Reset runs with no applied
	// action at the current pointer.
	MsgNoActionsToReset = "No actions to reset"

	// MsgNoActionToRetry is returned when Retry finds nothing past the
	// current pointer.
	MsgNoActionToRetry = "No action available to retry"
)

// ErrStateMutated marks a strict-mode violation: an executable or transform
// modified its input state in place instead of returning a new value.
var ErrStateMutated = errors.New("executable mutated state in place")
