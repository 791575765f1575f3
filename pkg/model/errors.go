package model

import (
	"errors"
	"fmt"
)

// ErrUnknownKind is returned when an action names an unsupported kind.
var ErrUnknownKind = errors.New("unknown action kind")

// ValidationError rejects a malformed trigger definition at registration
// time. The registry never stores a definition that fails validation.
type ValidationError struct {
	Trigger string
	Field   string
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid trigger %q: %s: %s", e.Trigger, e.Field, e.Reason)
}
