package shell

import "github.com/Cyclone1070/claw/internal/tool"

// ShellRequest is the decoded argument set of the shell tool.
type ShellRequest struct {
	Command        string `json:"command"`
	WorkingDir     string `json:"working_dir,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
}

func (r *ShellRequest) Validate() error {
	if r.Command == "" {
		return &tool.ValidationError{Field: "command", Reason: "cannot be empty"}
	}
	if r.TimeoutSeconds < 0 {
		return &tool.ValidationError{Field: "timeout_seconds", Reason: "cannot be negative"}
	}
	return nil
}
