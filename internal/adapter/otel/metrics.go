package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "toolgate"

// Metrics holds every gateway metric instrument.
type Metrics struct {
	ToolCallsAllowed metric.Int64Counter
	ToolCallsDenied  metric.Int64Counter
	DenyReasons      metric.Int64Counter
	ToolCallDuration metric.Float64Histogram
	BudgetSpend      metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.ToolCallsAllowed, err = meter.Int64Counter("toolgate.toolcalls.allowed",
		metric.WithDescription("Number of tool calls allowed by the policy engine"))
	if err != nil {
		return nil, err
	}

	m.ToolCallsDenied, err = meter.Int64Counter("toolgate.toolcalls.denied",
		metric.WithDescription("Number of tool calls denied by the policy engine"))
	if err != nil {
		return nil, err
	}

	m.DenyReasons, err = meter.Int64Counter("toolgate.policy.deny_reasons",
		metric.WithDescription("Count of individual denial reasons, labeled by reason"))
	if err != nil {
		return nil, err
	}

	m.ToolCallDuration, err = meter.Float64Histogram("toolgate.toolcalls.duration_seconds",
		metric.WithDescription("Tool call duration in seconds, from wrapper entry to result"))
	if err != nil {
		return nil, err
	}

	m.BudgetSpend, err = meter.Float64Histogram("toolgate.llm.cost_usd",
		metric.WithDescription("Estimated USD cost recorded per LLM query"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
