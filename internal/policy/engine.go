package policy

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/Strob0t/toolgate/internal/config"
	"github.com/Strob0t/toolgate/internal/domain/gateway"
)

// Engine composes the rate limiter, budget tracker, and a live agent config
// snapshot into the tool-call and egress decisions described by the
// gateway's policy surface.
type Engine struct {
	cfg    *config.Config
	rate   *RateLimiter
	budget *BudgetTracker
	logger *slog.Logger
}

// NewEngine constructs a policy engine over the given config snapshot.
func NewEngine(cfg *config.Config, rate *RateLimiter, budget *BudgetTracker, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{cfg: cfg, rate: rate, budget: budget, logger: logger}
}

// CheckToolCall runs the six ordered checks against a tool invocation,
// accumulating every failing reason rather than stopping at the first. Only
// unknown-agent failure is terminal, since no agent config exists to check
// against. The rate window is first read without recording, so an exceeded
// limit is reported alongside any other failing reason. Recording the
// timestamp happens only after every check passes, in one atomic
// check-and-record step, so a denied call never consumes a slot and
// concurrent callers can't all observe "under limit" before any of them
// records.
func (e *Engine) CheckToolCall(identity gateway.AgentIdentity, manifest gateway.PluginManifest, payloadSize int) gateway.PolicyDecision {
	agentCfg, ok := e.cfg.Agents[identity.AgentID]
	if !ok {
		return gateway.Deny([]string{fmt.Sprintf("Unknown agent: %s", identity.AgentID)})
	}

	var reasons []string

	if _, allowed := agentCfg.AllowedToolSet()[manifest.Name]; !allowed {
		reasons = append(reasons, fmt.Sprintf("Tool '%s' is not in allowed_tools for agent '%s'", manifest.Name, identity.AgentID))
	}

	if missing := manifest.MissingCapabilities(agentCfg.AllowedCapabilitySet()); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, c := range missing {
			names[i] = string(c)
		}
		sort.Strings(names)
		reasons = append(reasons, fmt.Sprintf("Missing capabilities: %s", formatList(names)))
	}

	if payloadSize > agentCfg.MaxPayloadBytes {
		reasons = append(reasons, fmt.Sprintf("Payload too large: %d > %d", payloadSize, agentCfg.MaxPayloadBytes))
	}

	if !e.rate.Check(identity.AgentID, agentCfg.RateLimit) {
		reasons = append(reasons, fmt.Sprintf("Rate limit exceeded: %d/60s", agentCfg.RateLimit))
	}

	if manifest.RequiresCapability(gateway.CapabilityLLMQuery) {
		if e.budget.Check(identity.AgentID, agentCfg.MaxCostPerDay) <= 0 {
			reasons = append(reasons, fmt.Sprintf("Daily LLM budget exhausted (limit: $%.2f)", agentCfg.MaxCostPerDay))
		}
	}

	if len(reasons) > 0 {
		e.logger.Warn("policy denied tool call",
			slog.String("agent_id", identity.AgentID),
			slog.String("tool", manifest.Name),
			slog.Any("reasons", reasons),
		)
		return gateway.Deny(reasons)
	}

	if !e.rate.CheckAndRecord(identity.AgentID, agentCfg.RateLimit) {
		reasons = append(reasons, fmt.Sprintf("Rate limit exceeded: %d/60s", agentCfg.RateLimit))
		e.logger.Warn("policy denied tool call",
			slog.String("agent_id", identity.AgentID),
			slog.String("tool", manifest.Name),
			slog.Any("reasons", reasons),
		)
		return gateway.Deny(reasons)
	}

	return gateway.Allow()
}

// CheckEgress enforces that identity's agent exists, holds
// network:outbound, and that host (case-insensitively, exact match) is in
// the agent's egress allowlist.
func (e *Engine) CheckEgress(identity gateway.AgentIdentity, host string) gateway.PolicyDecision {
	agentCfg, ok := e.cfg.Agents[identity.AgentID]
	if !ok {
		return gateway.Deny([]string{fmt.Sprintf("Unknown agent: %s", identity.AgentID)})
	}

	var reasons []string

	if _, ok := agentCfg.AllowedCapabilitySet()[gateway.CapabilityNetworkOutbound]; !ok {
		reasons = append(reasons, fmt.Sprintf("Missing capabilities: %s", formatList([]string{string(gateway.CapabilityNetworkOutbound)})))
	}

	if _, ok := agentCfg.EgressAllowlistSet()[strings.ToLower(host)]; !ok {
		reasons = append(reasons, fmt.Sprintf("Host not allowed: %s", host))
	}

	if len(reasons) > 0 {
		return gateway.Deny(reasons)
	}
	return gateway.Allow()
}

// AgentConfig exposes the resolved agent snapshot for callers (the LLM
// router and request wrapper) that need fields beyond a policy decision.
func (e *Engine) AgentConfig(agentID string) (*config.AgentConfig, bool) {
	cfg, ok := e.cfg.Agents[agentID]
	return cfg, ok
}

// RecordCost charges cost to agentID's daily budget. Callers must only
// invoke this after a successful, billable operation.
func (e *Engine) RecordCost(agentID string, cost float64) {
	e.budget.Record(agentID, cost)
}

func formatList(items []string) string {
	return "[" + strings.Join(quoteAll(items), ", ") + "]"
}

func quoteAll(items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = "'" + s + "'"
	}
	return out
}
