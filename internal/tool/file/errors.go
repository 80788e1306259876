package file

import (
	"errors"
	"fmt"
)

// -- Sentinels --

var (
	ErrFileMissing      = errors.New("file does not exist")
	ErrBinaryFile       = errors.New("file is binary")
	ErrFileTooLarge     = errors.New("file too large")
	ErrIsDirectory      = errors.New("path is a directory")
	ErrContentRequired  = errors.New("content is required")
	ErrUnknownOperation = errors.New("unknown operation")
	ErrLineOutOfRange   = errors.New("line out of range")
	ErrNotDirectory     = errors.New("path is not a directory")
)

// LineRangeError reports a line reference past the end of the file.
type LineRangeError struct {
	Line  int
	Total int
}

func (e *LineRangeError) Error() string {
	return fmt.Sprintf("line %d out of range (file has %d lines)", e.Line, e.Total)
}

func (e *LineRangeError) Unwrap() error { return ErrLineOutOfRange }
