package executor

import (
	"errors"
	"fmt"
)

// ErrTimeout is returned when a command exceeds its timeout.
var ErrTimeout = errors.New("command timeout")

// StartError reports a process that could not be started.
type StartError struct {
	Program string
	Cause   error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("cannot start %s: %v", e.Program, e.Cause)
}

func (e *StartError) Unwrap() error { return e.Cause }
