package crisis

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSelection  = errors.New("invalid selection")
	ErrNoCrisisAvailable = errors.New("no crisis available")
	ErrPhaseViolation    = errors.New("phase violation")
)

// SelectionError reports a rejected action, modifier or scenario ID.
type SelectionError struct {
	ID     string
	Reason string
}

func (e *SelectionError) Error() string {
	if e.ID == "" {
		return "invalid selection: " + e.Reason
	}
	return fmt.Sprintf("invalid selection %q: %s", e.ID, e.Reason)
}

func (e *SelectionError) Unwrap() error { return ErrInvalidSelection }

// PhaseError reports a command issued in a phase that does not accept it.
type PhaseError struct {
	Op    string
	Phase Phase
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("phase violation: %s not allowed in %s", e.Op, e.Phase)
}

func (e *PhaseError) Unwrap() error { return ErrPhaseViolation }
