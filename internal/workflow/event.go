package workflow

import (
	"time"
)

// Event is the interface for all workflow events.
// Observers handle events via type switch.
type Event interface {
	isEvent()
}

// ThinkingEvent is emitted before each provider round-trip.
type ThinkingEvent struct {
	Iteration int
}

func (ThinkingEvent) isEvent() {}

// TextEvent is emitted when the model produces text output.
type TextEvent struct {
	Text string
}

func (TextEvent) isEvent() {}

// ToolStartEvent is emitted when a tool execution begins.
type ToolStartEvent struct {
	CallID   string
	ToolName string
	Args     string // raw JSON arguments
}

func (ToolStartEvent) isEvent() {}

// ToolInvokedEvent is emitted once per tool call, after it finishes.
type ToolInvokedEvent struct {
	CallID   string
	Name     string
	Duration time.Duration
	Success  bool
	Error    string
	Output   string
}

func (ToolInvokedEvent) isEvent() {}

// TurnCompletedEvent is emitted when a turn ends without a fatal error.
type TurnCompletedEvent struct {
	Iterations int
	Duration   time.Duration
	Capped     bool
}

func (TurnCompletedEvent) isEvent() {}

// ErrorEvent reports a failure that aborted a turn or a background step.
type ErrorEvent struct {
	Component string
	Err       error
}

func (ErrorEvent) isEvent() {}
