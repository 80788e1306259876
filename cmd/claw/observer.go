package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Cyclone1070/claw/internal/workflow"
	"github.com/Cyclone1070/claw/internal/workflow/observe"
	"go.opentelemetry.io/otel"
)

// newObserver builds the configured observability backend. The returned
// shutdown flushes it.
func newObserver(ctx context.Context, backend, service string, logger *slog.Logger) (workflow.Observer, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	switch backend {
	case "", "none":
		return nil, noop, nil
	case "log":
		return observe.NewLog(logger), noop, nil
	case "otel":
		tp, err := observe.NewOTLPProvider(ctx, service)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		otel.SetTracerProvider(tp)
		return observe.NewTracing(tp), tp.Shutdown, nil
	default:
		return nil, noop, fmt.Errorf("unknown observability backend %q", backend)
	}
}
