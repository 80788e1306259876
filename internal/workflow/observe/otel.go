package observe

import (
	"context"
	"time"

	"github.com/Cyclone1070/claw/internal/workflow"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/Cyclone1070/claw/workflow"

// Tracing records workflow events as spans. Events arrive after the fact,
// so each span is started with the event's own start time.
type Tracing struct {
	tracer trace.Tracer
	now    func() time.Time
}

// NewTracing uses tp, or the global tracer provider when tp is nil.
func NewTracing(tp trace.TracerProvider) *Tracing {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Tracing{tracer: tp.Tracer(tracerName), now: time.Now}
}

func (t *Tracing) Observe(ev workflow.Event) {
	ctx := context.Background()
	end := t.now()

	switch e := ev.(type) {
	case workflow.ToolInvokedEvent:
		_, span := t.tracer.Start(ctx, "tool."+e.Name, trace.WithTimestamp(end.Add(-e.Duration)))
		span.SetAttributes(
			attribute.String("tool.name", e.Name),
			attribute.String("tool.call_id", e.CallID),
			attribute.Bool("tool.success", e.Success),
		)
		if !e.Success {
			span.SetStatus(codes.Error, e.Error)
		}
		span.End(trace.WithTimestamp(end))

	case workflow.TurnCompletedEvent:
		_, span := t.tracer.Start(ctx, "agent.turn", trace.WithTimestamp(end.Add(-e.Duration)))
		span.SetAttributes(
			attribute.Int("turn.iterations", e.Iterations),
			attribute.Bool("turn.capped", e.Capped),
		)
		span.End(trace.WithTimestamp(end))

	case workflow.ErrorEvent:
		_, span := t.tracer.Start(ctx, "error."+e.Component)
		if e.Err != nil {
			span.RecordError(e.Err)
			span.SetStatus(codes.Error, e.Err.Error())
		}
		span.End()
	}
}

// NewOTLPProvider builds a tracer provider exporting over OTLP/HTTP. The
// endpoint follows the standard OTEL_EXPORTER_OTLP_* environment variables.
func NewOTLPProvider(ctx context.Context, serviceName string) (*sdktrace.TracerProvider, error) {
	exp, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, err
	}
	res := resource.NewSchemaless(attribute.String("service.name", serviceName))
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	), nil
}
