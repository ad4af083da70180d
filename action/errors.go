package action

import (
	"errors"
	"fmt"
)

// ErrNotImplemented is returned when an action is executed without an
// attached executable. Deserialized actions whose logic was never registered
// in the ledger fail with this error.
var ErrNotImplemented = errors.New("action not implemented")

// ErrDuplicateKey is returned by Ledger.Set when the key is already taken.
// The ledger never silently overwrites registered logic.
var ErrDuplicateKey = errors.New("already registered")

// ErrNotRegistered is returned by Ledger.Get for an unknown key.
var ErrNotRegistered = errors.New("not registered")

// StructureError reports a malformed serialized record: a required field is
// missing or carries an unusable value.
type StructureError struct {
	// Field names the offending record field.
	Field string

	// Message describes what is wrong with it.
	Message string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("invalid structure: %s: %s", e.Field, e.Message)
}

// IsStructureError reports whether err is a StructureError.
// Uses errors.As to handle wrapped errors.
func IsStructureError(err error) bool {
	var se *StructureError
	return errors.As(err, &se)
}
