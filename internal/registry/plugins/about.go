package plugins

import (
	"encoding/json"
	"fmt"

	"github.com/Strob0t/toolgate/internal/config"
	"github.com/Strob0t/toolgate/internal/domain/gateway"
	"github.com/Strob0t/toolgate/internal/registry"
)

func init() {
	registry.RegisterResource("about.server", newAboutServer)
	registry.RegisterResource("about.policies", newAboutPolicies)
	registry.RegisterResource("instructions.agent", newInstructionsAgent)
}

type aboutServerResource struct {
	manifest gateway.PluginManifest
	cfg      *config.Config
}

func newAboutServer(deps registry.Dependencies) (registry.ResourcePlugin, error) {
	return &aboutServerResource{
		manifest: gateway.NewManifest("about.server", "About Server", "Server name, version, and description."),
		cfg:      deps.Config,
	}, nil
}

func (r *aboutServerResource) Manifest() gateway.PluginManifest { return r.manifest }
func (r *aboutServerResource) URI() string                      { return "about://server" }

func (r *aboutServerResource) Read(_ *gateway.AgentIdentity) (string, error) {
	body, err := json.MarshalIndent(map[string]string{
		"name":        r.cfg.Server.Name,
		"version":     r.cfg.Server.Version,
		"description": r.cfg.Server.Description,
	}, "", "  ")
	return string(body), err
}

type aboutPoliciesResource struct {
	manifest gateway.PluginManifest
	cfg      *config.Config
}

func newAboutPolicies(deps registry.Dependencies) (registry.ResourcePlugin, error) {
	return &aboutPoliciesResource{
		manifest: gateway.NewManifest("about.policies", "About Policies", "Effective policy configuration for the requesting agent (secrets redacted)."),
		cfg:      deps.Config,
	}, nil
}

func (r *aboutPoliciesResource) Manifest() gateway.PluginManifest { return r.manifest }
func (r *aboutPoliciesResource) URI() string                      { return "about://policies" }

func (r *aboutPoliciesResource) Read(identity *gateway.AgentIdentity) (string, error) {
	if identity == nil {
		return jsonError("Not authenticated"), nil
	}
	agentCfg, ok := r.cfg.Agents[identity.AgentID]
	if !ok {
		return jsonError(fmt.Sprintf("Unknown agent: %s", identity.AgentID)), nil
	}

	body, err := json.MarshalIndent(map[string]any{
		"agent_id":               identity.AgentID,
		"tenant_id":              identity.TenantID,
		"allowed_tools":          agentCfg.AllowedTools,
		"allowed_capabilities":   agentCfg.AllowedCapabilities,
		"egress_allowlist":       agentCfg.EgressAllowlist,
		"max_payload_bytes":      agentCfg.MaxPayloadBytes,
		"max_response_bytes":     agentCfg.MaxResponseBytes,
		"timeout_seconds":        agentCfg.TimeoutSeconds,
		"concurrency":            agentCfg.Concurrency,
		"rate_limit":             agentCfg.RateLimit,
		"max_tokens_per_request": agentCfg.MaxTokensPerRequest,
		"max_cost_per_day":       agentCfg.MaxCostPerDay,
		"enabled_plugins":        r.cfg.EnabledPlugins,
	}, "", "  ")
	return string(body), err
}

type instructionsAgentResource struct {
	manifest gateway.PluginManifest
	cfg      *config.Config
}

func newInstructionsAgent(deps registry.Dependencies) (registry.ResourcePlugin, error) {
	return &instructionsAgentResource{
		manifest: gateway.NewManifest("instructions.agent", "Agent Instructions", "Per-agent instructions loaded at session start and after context clearing."),
		cfg:      deps.Config,
	}, nil
}

func (r *instructionsAgentResource) Manifest() gateway.PluginManifest { return r.manifest }
func (r *instructionsAgentResource) URI() string                      { return "instructions://agent" }

func (r *instructionsAgentResource) Read(identity *gateway.AgentIdentity) (string, error) {
	if identity == nil {
		return jsonError("Not authenticated"), nil
	}
	agentCfg, ok := r.cfg.Agents[identity.AgentID]
	if !ok {
		return jsonError(fmt.Sprintf("Unknown agent: %s", identity.AgentID)), nil
	}
	instructions := agentCfg.Instructions
	if instructions == "" {
		instructions = "(no per-agent instructions configured)"
	}
	body, err := json.Marshal(map[string]string{
		"agent_id":     identity.AgentID,
		"instructions": instructions,
	})
	return string(body), err
}

func jsonError(message string) string {
	body, _ := json.Marshal(map[string]string{"error": message})
	return string(body)
}
