// Package observe provides workflow.Observer implementations.
package observe

import (
	"log/slog"

	"github.com/Cyclone1070/claw/internal/logging"
	"github.com/Cyclone1070/claw/internal/workflow"
)

// Log writes workflow events to a structured logger.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logging.OrDiscard(logger)}
}

func (l *Log) Observe(ev workflow.Event) {
	switch e := ev.(type) {
	case workflow.ToolInvokedEvent:
		if e.Success {
			l.logger.Info("tool invoked", "tool", e.Name, "call_id", e.CallID, "duration", e.Duration)
		} else {
			l.logger.Warn("tool failed", "tool", e.Name, "call_id", e.CallID, "duration", e.Duration, "error", e.Error)
		}
	case workflow.TurnCompletedEvent:
		l.logger.Info("turn completed", "iterations", e.Iterations, "duration", e.Duration, "capped", e.Capped)
	case workflow.ErrorEvent:
		l.logger.Error("workflow error", "component", e.Component, "error", e.Err)
	case workflow.ThinkingEvent:
		l.logger.Debug("calling provider", "iteration", e.Iteration)
	case workflow.ToolStartEvent:
		l.logger.Debug("tool started", "tool", e.ToolName, "call_id", e.CallID)
	}
}
