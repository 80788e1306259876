package loop

import (
	"errors"
	"fmt"
)

var ErrNilHistory = errors.New("history is nil")

// TurnError is a failure that aborted a turn: the provider failed or the
// turn was cancelled.
type TurnError struct {
	Iteration int
	Err       error
}

func (e *TurnError) Error() string {
	return fmt.Sprintf("turn aborted at iteration %d: %v", e.Iteration, e.Err)
}

func (e *TurnError) Unwrap() error { return e.Err }
