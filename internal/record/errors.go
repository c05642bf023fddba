package record

import (
	"errors"
	"fmt"
)

// ErrClockIntegrity is returned when the clock source reports a time before
// a previously observed one where that would corrupt the session, e.g. a
// resume computing a negative paused duration. The failing transition is
// aborted and the recorder state is left unchanged.
var ErrClockIntegrity = errors.New("clock went backwards")

// TransitionError is returned when a recorder operation is called in a state
// that does not permit it. The recorder state is unchanged.
type TransitionError struct {
	Op    string // the operation attempted, e.g. "Pause"
	State State  // the state the recorder was in
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s while %s", e.Op, e.State)
}

func invalidTransition(op string, state State) error {
	return &TransitionError{Op: op, State: state}
}
