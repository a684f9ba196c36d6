// Package wrapper implements the per-tool-invocation glue: it reads the
// caller identity from context, enforces policy, acquires a per-agent
// concurrency slot, validates arguments against the tool's declared schema,
// invokes the tool, and logs the outcome. It is the only code path by which
// a ToolPlugin's Execute is reachable.
package wrapper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	toolgateotel "github.com/Strob0t/toolgate/internal/adapter/otel"
	"github.com/Strob0t/toolgate/internal/policy"
	"github.com/Strob0t/toolgate/internal/registry"
)

// Wrapper splices the policy engine, concurrency gate, and registry around
// every tool call. metrics is optional; a nil value disables instrument
// recording without disabling spans (tracing no-ops safely on its own when
// no provider is configured).
type Wrapper struct {
	policy  *policy.Engine
	gate    *policy.ConcurrencyGate
	metrics *toolgateotel.Metrics
	logger  *slog.Logger
}

// New constructs a Wrapper. gate and metrics may be nil.
func New(engine *policy.Engine, gate *policy.ConcurrencyGate, metrics *toolgateotel.Metrics, logger *slog.Logger) *Wrapper {
	if logger == nil {
		logger = slog.Default()
	}
	if gate == nil {
		gate = policy.NewConcurrencyGate()
	}
	return &Wrapper{policy: engine, gate: gate, metrics: metrics, logger: logger}
}

// errorBody marshals a single-field error response.
func errorBody(message string) string {
	body, _ := json.Marshal(map[string]string{"error": message})
	return string(body)
}

func deniedBody(message string, reasons []string) string {
	body, _ := json.Marshal(map[string]any{"error": message, "reasons": reasons})
	return string(body)
}

// Call drives a single tool invocation through the full pipeline. rawArgs is
// the caller-supplied argument payload, still in string-keyed JSON form.
func (w *Wrapper) Call(ctx context.Context, tool registry.ToolPlugin, rawArgs json.RawMessage) string {
	identity, ok := Identity(ctx)
	if !ok {
		return errorBody("Not authenticated")
	}

	manifest := tool.Manifest()
	start := time.Now()

	ctx, span := toolgateotel.StartToolCallSpan(ctx, identity.AgentID, manifest.Name)
	defer span.End()

	payloadSize := len(rawArgs)

	decision := w.policy.CheckToolCall(identity, manifest, payloadSize)
	if w.metrics != nil {
		if decision.Allowed {
			w.metrics.ToolCallsAllowed.Add(ctx, 1)
		} else {
			w.metrics.ToolCallsDenied.Add(ctx, 1)
			for range decision.Reasons {
				w.metrics.DenyReasons.Add(ctx, 1)
			}
		}
	}
	if !decision.Allowed {
		return deniedBody("Policy denied", decision.Reasons)
	}

	concurrency := 5
	if agentCfg, ok := w.policy.AgentConfig(identity.AgentID); ok && agentCfg.Concurrency > 0 {
		concurrency = agentCfg.Concurrency
	}
	if err := w.gate.Acquire(ctx, identity.AgentID, concurrency); err != nil {
		return errorBody(fmt.Sprintf("concurrency wait cancelled: %s", err.Error()))
	}
	defer w.gate.Release(identity.AgentID, concurrency)

	var args map[string]any
	if len(rawArgs) > 0 {
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			return errorBody(fmt.Sprintf("invalid arguments: %s", err.Error()))
		}
	} else {
		args = map[string]any{}
	}

	if schema := tool.InputSchema(); schema != nil {
		if err := schema.Validate(args); err != nil {
			return errorBody(err.Error())
		}
	}

	result, err := func() (text string, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return tool.Execute(registry.ToolContext{Context: ctx, Identity: identity, RawArguments: rawArgs}, args)
	}()

	if w.metrics != nil {
		w.metrics.ToolCallDuration.Record(ctx, time.Since(start).Seconds())
	}

	if err != nil {
		w.logger.Error("tool execution failed",
			slog.String("agent_id", identity.AgentID),
			slog.String("tool", manifest.Name),
			slog.String("error", err.Error()),
		)
		return errorBody(err.Error())
	}

	w.logger.Info("tool call succeeded",
		slog.String("agent_id", identity.AgentID),
		slog.String("tool", manifest.Name),
	)
	return result
}
