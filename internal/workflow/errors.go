package workflow

import "fmt"

// ValidationError reports a malformed or incomplete transition payload.
// It is checked before any permission or state lookup.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid transition payload: %s", e.Reason)
}

// PermissionError reports that the acting role lacks the capability
// required by the requested action.
type PermissionError struct {
	Role   Role
	Action Action
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("role %s is not allowed to %s", e.Role, e.Action)
}

// InvalidStateError reports that the action is not valid from the
// intervention's current status.
type InvalidStateError struct {
	Action Action
	Status Status
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s an intervention in status %s", e.Action, e.Status)
}
