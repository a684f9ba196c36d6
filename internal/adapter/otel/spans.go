package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "toolgate"

// StartToolCallSpan starts a span for a single tool invocation, from
// request-wrapper entry through policy check, validation, and execute.
func StartToolCallSpan(ctx context.Context, agentID, tool string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "toolcall",
		trace.WithAttributes(
			attribute.String("toolgate.agent_id", agentID),
			attribute.String("toolgate.tool", tool),
		),
	)
}

// StartLLMQuerySpan starts a span around a single provider round trip.
func StartLLMQuerySpan(ctx context.Context, provider, model string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "llmquery",
		trace.WithAttributes(
			attribute.String("toolgate.provider", provider),
			attribute.String("toolgate.model", model),
		),
	)
}

// StartEgressSpan starts a span for an outbound HTTP call through the
// guarded client, before the request is handed to the underlying
// otelhttp-instrumented transport.
func StartEgressSpan(ctx context.Context, host string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "egress",
		trace.WithAttributes(
			attribute.String("toolgate.host", host),
		),
	)
}
