package observe

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/Cyclone1070/claw/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestLog_WritesToolAndTurnEvents(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLog(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	obs.Observe(workflow.ToolInvokedEvent{CallID: "c1", Name: "shell", Success: true})
	obs.Observe(workflow.ToolInvokedEvent{CallID: "c2", Name: "file_read", Error: "file not found"})
	obs.Observe(workflow.TurnCompletedEvent{Iterations: 3, Capped: true})
	obs.Observe(workflow.ErrorEvent{Component: "provider", Err: errors.New("503")})

	out := buf.String()
	assert.Contains(t, out, `msg="tool invoked" tool=shell call_id=c1`)
	assert.Contains(t, out, `level=WARN msg="tool failed" tool=file_read`)
	assert.Contains(t, out, `error="file not found"`)
	assert.Contains(t, out, "iterations=3")
	assert.Contains(t, out, "capped=true")
	assert.Contains(t, out, "component=provider error=503")
}

func TestLog_NilLogger(t *testing.T) {
	assert.NotPanics(t, func() { NewLog(nil).Observe(workflow.TextEvent{Text: "x"}) })
}

func TestChannel_DropsWhenFull(t *testing.T) {
	ch := make(chan workflow.Event, 1)
	obs := NewChannel(ch)

	obs.Observe(workflow.TextEvent{Text: "a"})
	obs.Observe(workflow.TextEvent{Text: "b"})

	require.Len(t, ch, 1)
	assert.Equal(t, workflow.TextEvent{Text: "a"}, <-ch)
}

func TestTracing_RecordsSpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	obs := NewTracing(tp)
	end := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	obs.now = func() time.Time { return end }

	obs.Observe(workflow.ToolInvokedEvent{CallID: "c1", Name: "shell", Duration: 2 * time.Second, Success: false, Error: "exit status 1"})
	obs.Observe(workflow.TurnCompletedEvent{Iterations: 2, Duration: 5 * time.Second})
	obs.Observe(workflow.TextEvent{Text: "ignored"})

	spans := sr.Ended()
	require.Len(t, spans, 2)

	tool := spans[0]
	assert.Equal(t, "tool.shell", tool.Name())
	assert.Equal(t, end.Add(-2*time.Second), tool.StartTime())
	assert.Equal(t, end, tool.EndTime())
	assert.Equal(t, codes.Error, tool.Status().Code)
	assert.Contains(t, tool.Attributes(), attribute.String("tool.call_id", "c1"))

	turn := spans[1]
	assert.Equal(t, "agent.turn", turn.Name())
	assert.Contains(t, turn.Attributes(), attribute.Int("turn.iterations", 2))
}
