package llmrouter

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/Strob0t/toolgate/internal/config"
	"github.com/Strob0t/toolgate/internal/domain/gateway"
	"github.com/Strob0t/toolgate/internal/policy"
	"github.com/Strob0t/toolgate/internal/registry"
)

func newTestRouter(t *testing.T) (*Router, *config.Config) {
	t.Helper()
	cfg := config.Defaults()
	cfg.Agents["agent-alpha"] = &config.AgentConfig{
		TenantID:            "default",
		AllowedTools:        []string{"llm.query"},
		AllowedCapabilities: []gateway.Capability{gateway.CapabilityNetworkOutbound, gateway.CapabilityLLMQuery},
		EgressAllowlist:     []string{"api.openai.com"},
		MaxTokensPerRequest: 100,
		MaxCostPerDay:       10,
	}
	cfg.LLM.Providers = map[string]config.LLMProviderConfig{
		"openai": {APIKey: "", BaseURL: "", AllowedModels: []string{"gpt-4o-mini"}},
	}

	engine := policy.NewEngine(&cfg, policy.NewRateLimiter(), policy.NewBudgetTracker(), nil)
	router, err := New(&cfg, engine, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	return router, &cfg
}

func TestExecute_EgressDenied(t *testing.T) {
	cfg := config.Defaults()
	cfg.Agents["agent-alpha"] = &config.AgentConfig{
		TenantID:            "default",
		AllowedTools:        []string{"llm.query"},
		AllowedCapabilities: []gateway.Capability{gateway.CapabilityNetworkOutbound, gateway.CapabilityLLMQuery},
		EgressAllowlist:     []string{"somewhere-else.example.com"},
		MaxTokensPerRequest: 100,
		MaxCostPerDay:       10,
	}
	cfg.LLM.Providers = map[string]config.LLMProviderConfig{
		"openai": {AllowedModels: []string{"gpt-4o-mini"}},
	}
	engine := policy.NewEngine(&cfg, policy.NewRateLimiter(), policy.NewBudgetTracker(), nil)
	router, err := New(&cfg, engine, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	out, err := router.Execute(registry.ToolContext{Identity: gateway.AgentIdentity{AgentID: "agent-alpha"}}, map[string]any{
		"provider": "openai",
		"model":    "gpt-4o-mini",
		"prompt":   "hi",
	})
	if err != nil {
		t.Fatal(err)
	}
	var body map[string]any
	if err := json.Unmarshal([]byte(out), &body); err != nil {
		t.Fatal(err)
	}
	if body["error"] != "Egress denied" {
		t.Errorf("expected egress denial, got %v", body)
	}
}

func TestExecute_UnknownModelRejected(t *testing.T) {
	router, _ := newTestRouter(t)

	out, err := router.Execute(registry.ToolContext{Identity: gateway.AgentIdentity{AgentID: "agent-alpha"}}, map[string]any{
		"provider": "openai",
		"model":    "not-on-allowlist",
		"prompt":   "hi",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "not on the allowlist") {
		t.Errorf("expected allowlist rejection, got %s", out)
	}
}

func TestExecute_LocalProviderEgressHostFollowsBaseURL(t *testing.T) {
	cfg := config.Defaults()
	cfg.Agents["agent-alpha"] = &config.AgentConfig{
		TenantID:            "default",
		AllowedTools:        []string{"llm.query"},
		AllowedCapabilities: []gateway.Capability{gateway.CapabilityNetworkOutbound, gateway.CapabilityLLMQuery},
		EgressAllowlist:     []string{"remote-ollama.internal"},
		MaxTokensPerRequest: 100,
		MaxCostPerDay:       10,
	}
	cfg.LLM.Providers = map[string]config.LLMProviderConfig{
		"local": {BaseURL: "http://remote-ollama.internal:11434", AllowedModels: []string{"llama3"}},
	}
	engine := policy.NewEngine(&cfg, policy.NewRateLimiter(), policy.NewBudgetTracker(), nil)
	router, err := New(&cfg, engine, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	if got := router.providerHosts["local"]; got != "remote-ollama.internal" {
		t.Fatalf("expected resolved local host 'remote-ollama.internal', got %q", got)
	}

	decision := engine.CheckEgress(gateway.AgentIdentity{AgentID: "agent-alpha"}, router.providerHosts["local"])
	if !decision.Allowed {
		t.Errorf("expected egress check against the configured base_url host to pass, got %v", decision.Reasons)
	}
}

func TestExecute_LocalProviderEgressDeniedAgainstHardcodedLocalhost(t *testing.T) {
	cfg := config.Defaults()
	cfg.Agents["agent-alpha"] = &config.AgentConfig{
		TenantID:            "default",
		AllowedTools:        []string{"llm.query"},
		AllowedCapabilities: []gateway.Capability{gateway.CapabilityNetworkOutbound, gateway.CapabilityLLMQuery},
		EgressAllowlist:     []string{"localhost"},
		MaxTokensPerRequest: 100,
		MaxCostPerDay:       10,
	}
	cfg.LLM.Providers = map[string]config.LLMProviderConfig{
		"local": {BaseURL: "http://remote-ollama.internal:11434", AllowedModels: []string{"llama3"}},
	}
	engine := policy.NewEngine(&cfg, policy.NewRateLimiter(), policy.NewBudgetTracker(), nil)
	router, err := New(&cfg, engine, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	out, err := router.Execute(registry.ToolContext{Identity: gateway.AgentIdentity{AgentID: "agent-alpha"}}, map[string]any{
		"provider": "local",
		"model":    "llama3",
		"prompt":   "hi",
	})
	if err != nil {
		t.Fatal(err)
	}
	var body map[string]any
	if err := json.Unmarshal([]byte(out), &body); err != nil {
		t.Fatal(err)
	}
	if body["error"] != "Egress denied" {
		t.Errorf("expected egress check against real target host to deny an allowlist of only 'localhost', got %v", body)
	}
}

func TestExecute_MissingAPIKeyReturnsSuccessfulErrorBody(t *testing.T) {
	router, _ := newTestRouter(t)

	out, err := router.Execute(registry.ToolContext{Identity: gateway.AgentIdentity{AgentID: "agent-alpha"}}, map[string]any{
		"provider": "openai",
		"model":    "gpt-4o-mini",
		"prompt":   "hi",
	})
	if err != nil {
		t.Fatal(err)
	}
	var body map[string]any
	if err := json.Unmarshal([]byte(out), &body); err != nil {
		t.Fatal(err)
	}
	text, _ := body["text"].(string)
	if !strings.HasPrefix(text, "Error:") {
		t.Errorf("expected Error: prefixed text for missing API key, got %v", body)
	}
	if body["estimated_cost"] != 0.0 {
		t.Errorf("expected zero cost on misconfiguration, got %v", body["estimated_cost"])
	}
}
