package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Type represents JSON Schema types.
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
	TypeArray   Type = "array"
	TypeObject  Type = "object"
)

// Schema represents a JSON Schema for tool parameters.
type Schema struct {
	Type        Type               `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
}

// Declaration declares a tool's function signature for the LLM.
type Declaration struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Parameters  *Schema `json:"parameters,omitempty"`
}

// Tool is a named capability the agent can invoke.
//
// Execute never returns a Go error: every failure is reported in Result.
type Tool interface {
	Name() string
	Description() string
	Parameters() *Schema
	Execute(ctx context.Context, args map[string]any) Result
}

// DeclarationOf builds the model-facing declaration of t.
func DeclarationOf(t Tool) Declaration {
	return Declaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  t.Parameters(),
	}
}

// Result is the outcome of a tool invocation.
type Result struct {
	Success bool   `json:"success"`
	Output  string `json:"output"`
	Error   string `json:"error,omitempty"`
}

// OK returns a successful result.
func OK(output string) Result {
	return Result{Success: true, Output: output}
}

// Fail returns a failed result carrying err's message.
func Fail(err error) Result {
	return Result{Error: err.Error()}
}

// Failf returns a failed result with a formatted message.
func Failf(format string, a ...any) Result {
	return Result{Error: fmt.Sprintf(format, a...)}
}

// Content is the text sent back to the model for this result.
func (r Result) Content() string {
	if r.Success {
		return r.Output
	}
	if r.Output == "" {
		return "Error: " + r.Error
	}
	return r.Output + "\nError: " + r.Error
}

// Instructions renders the declarations as plain text for the system prompt.
func Instructions(decls []Declaration) string {
	var sb strings.Builder
	sb.WriteString("## Tools\n\nYou have access to the following tools.\n\n")
	for _, d := range decls {
		schema := []byte("{}")
		if d.Parameters != nil {
			schema, _ = json.Marshal(d.Parameters)
		}
		fmt.Fprintf(&sb, "**%s**: %s\nParameters: `%s`\n\n", d.Name, d.Description, schema)
	}
	return sb.String()
}
