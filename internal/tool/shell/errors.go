package shell

import (
	"fmt"
	"time"
)

// TimeoutError is returned when a shell command exceeds its timeout.
type TimeoutError struct {
	Command  string
	Duration time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("command %q timed out after %v", e.Command, e.Duration)
}

func (e *TimeoutError) Timeout() bool {
	return true
}

// EnvFileReadError is returned when reading an env file fails.
type EnvFileReadError struct {
	Path  string
	Cause error
}

func (e *EnvFileReadError) Error() string {
	return fmt.Sprintf("failed to read env file %s: %v", e.Path, e.Cause)
}

func (e *EnvFileReadError) Unwrap() error {
	return e.Cause
}

func (e *EnvFileReadError) IOError() bool {
	return true
}

// EnvFileParseError is returned when an env file has an invalid format.
type EnvFileParseError struct {
	Path  string
	Cause error
}

func (e *EnvFileParseError) Error() string {
	return fmt.Sprintf("invalid env file %s: %v", e.Path, e.Cause)
}

func (e *EnvFileParseError) Unwrap() error {
	return e.Cause
}

func (e *EnvFileParseError) InvalidInput() bool {
	return true
}
