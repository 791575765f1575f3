package dispatch

import (
	"fmt"

	"github.com/quiverhq/quiver/pkg/model"
)

// DeliveryError is the terminal failure of one action after its retry
// budget is exhausted. It wraps the last transport error.
type DeliveryError struct {
	Kind     model.ActionKind
	Target   string
	Attempts int
	Err      error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s delivery to %s failed after %d attempts: %v", e.Kind, e.Target, e.Attempts, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
