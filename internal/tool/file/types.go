package file

import (
	"fmt"

	"github.com/Cyclone1070/claw/internal/tool"
)

// -- Read File --

type ReadFileRequest struct {
	Path   string `json:"path"`
	Offset *int   `json:"offset,omitempty"`
	Limit  *int   `json:"limit,omitempty"`
}

func (r *ReadFileRequest) Validate() error {
	if r.Path == "" {
		return &tool.ValidationError{Field: "path", Reason: "is required"}
	}
	if r.Offset != nil && *r.Offset < 1 {
		return &tool.ValidationError{Field: "offset", Reason: "must be >= 1"}
	}
	if r.Limit != nil && *r.Limit < 1 {
		return &tool.ValidationError{Field: "limit", Reason: "must be >= 1"}
	}
	return nil
}

// -- Write File --

type WriteFileRequest struct {
	Path    string  `json:"path"`
	Content *string `json:"content"`
}

func (r *WriteFileRequest) Validate() error {
	if r.Path == "" {
		return &tool.ValidationError{Field: "path", Reason: "is required"}
	}
	if r.Content == nil {
		return &tool.ValidationError{Field: "content", Reason: ErrContentRequired.Error()}
	}
	return nil
}

// -- Edit File --

// Edit operations.
const (
	OpInsert  = "insert"
	OpDelete  = "delete"
	OpReplace = "replace"
)

type EditFileRequest struct {
	Path      string  `json:"path"`
	Operation string  `json:"operation"`
	Line      int     `json:"line"`
	EndLine   *int    `json:"end_line,omitempty"`
	Content   *string `json:"content,omitempty"`
}

func (r *EditFileRequest) Validate() error {
	if r.Path == "" {
		return &tool.ValidationError{Field: "path", Reason: "is required"}
	}
	switch r.Operation {
	case OpInsert, OpReplace:
		if r.Content == nil {
			return &tool.ValidationError{Field: "content", Reason: fmt.Sprintf("%s for %s", ErrContentRequired, r.Operation)}
		}
	case OpDelete:
	default:
		return &tool.ValidationError{Field: "operation", Reason: fmt.Sprintf("%s %q, use insert, delete or replace", ErrUnknownOperation, r.Operation)}
	}
	if r.Line < 0 {
		return &tool.ValidationError{Field: "line", Reason: "must be >= 0"}
	}
	if r.EndLine != nil && *r.EndLine < r.Line {
		return &tool.ValidationError{Field: "end_line", Reason: "must be >= line"}
	}
	return nil
}

// endLine is the last line of a delete or replace range before clamping.
func (r *EditFileRequest) endLine() int {
	if r.EndLine != nil {
		return *r.EndLine
	}
	return r.Line
}

// -- List Directory --

type ListDirectoryRequest struct {
	Path           string `json:"path,omitempty"`
	MaxDepth       *int   `json:"max_depth,omitempty"`
	Limit          *int   `json:"limit,omitempty"`
	IncludeIgnored bool   `json:"include_ignored,omitempty"`
}

func (r *ListDirectoryRequest) Validate() error {
	if r.MaxDepth != nil && *r.MaxDepth < -1 {
		return &tool.ValidationError{Field: "max_depth", Reason: "must be >= -1"}
	}
	if r.Limit != nil && *r.Limit < 1 {
		return &tool.ValidationError{Field: "limit", Reason: "must be >= 1"}
	}
	return nil
}
