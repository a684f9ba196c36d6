// Package llmrouter implements the llm.query tool: the one plugin that
// exercises every enforcement dimension at once (egress, capability,
// budget, input validation, provider abstraction).
package llmrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	toolgateotel "github.com/Strob0t/toolgate/internal/adapter/otel"
	"github.com/Strob0t/toolgate/internal/config"
	"github.com/Strob0t/toolgate/internal/domain/gateway"
	"github.com/Strob0t/toolgate/internal/egress"
	"github.com/Strob0t/toolgate/internal/llmrouter/providers"
	"github.com/Strob0t/toolgate/internal/policy"
	"github.com/Strob0t/toolgate/internal/registry"
	"github.com/Strob0t/toolgate/internal/resilience"
	"github.com/Strob0t/toolgate/internal/secrets"
)

var manifest = gateway.NewManifest(
	"llm.query",
	"LLM Query",
	"Route queries to LLM providers (OpenAI, Anthropic, local). Requires network:outbound and llm:query capabilities.",
	gateway.CapabilityNetworkOutbound,
	gateway.CapabilityLLMQuery,
)

// Router is the llm.query tool plugin.
type Router struct {
	cfg           *config.Config
	policy        *policy.Engine
	providers     map[string]providers.Provider
	providerHosts map[string]string
	breakers      map[string]*resilience.Breaker
	vault         *secrets.Vault
	logger        *slog.Logger
	schema        *registry.Schema
	metrics       *toolgateotel.Metrics
}

// envKeyFor is the environment variable a provider's API key falls back to
// when llm.providers.<name>.api_key is left empty in YAML, e.g.
// TOOLGATE_OPENAI_API_KEY.
func envKeyFor(provider string) string {
	upper := make([]byte, len(provider))
	for i, c := range []byte(provider) {
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		upper[i] = c
	}
	return "TOOLGATE_" + string(upper) + "_API_KEY"
}

// New constructs a Router, building one guarded provider per entry in
// cfg.LLM.Providers. metrics is optional; a nil value disables instrument
// recording without disabling spans.
func New(cfg *config.Config, engine *policy.Engine, metrics *toolgateotel.Metrics, logger *slog.Logger) (*Router, error) {
	if logger == nil {
		logger = slog.Default()
	}
	schema, err := registry.NewSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"provider":   map[string]any{"type": "string", "description": "LLM provider: 'openai', 'anthropic', or 'local'"},
			"model":      map[string]any{"type": "string", "description": "Model name (must be on allowlist)"},
			"prompt":     map[string]any{"type": "string", "description": "The prompt to send to the LLM"},
			"max_tokens": map[string]any{"type": "integer", "description": "Maximum tokens in response", "default": 1024},
		},
		"required": []any{"provider", "model", "prompt"},
	})
	if err != nil {
		return nil, err
	}

	envKeys := make([]string, 0, len(cfg.LLM.Providers))
	for name := range cfg.LLM.Providers {
		envKeys = append(envKeys, envKeyFor(name))
	}
	vault, err := secrets.NewVault(secrets.EnvLoader(envKeys...))
	if err != nil {
		return nil, fmt.Errorf("provider secrets: %w", err)
	}

	r := &Router{
		cfg:           cfg,
		policy:        engine,
		providers:     make(map[string]providers.Provider),
		providerHosts: make(map[string]string),
		breakers:      make(map[string]*resilience.Breaker),
		vault:         vault,
		logger:        logger,
		schema:        schema,
		metrics:       metrics,
	}
	for name, pcfg := range cfg.LLM.Providers {
		if pcfg.APIKey == "" {
			pcfg.APIKey = vault.Get(envKeyFor(name))
		}
		switch name {
		case "openai":
			baseURL := pcfg.BaseURL
			if baseURL == "" {
				baseURL = "https://api.openai.com/v1"
			}
			host := providers.HostFromBaseURL(baseURL, "api.openai.com")
			guarded := egress.New([]string{host})
			r.providers["openai"] = providers.NewOpenAI(pcfg.APIKey, baseURL, guarded)
			r.providerHosts["openai"] = host
		case "anthropic":
			baseURL := pcfg.BaseURL
			if baseURL == "" {
				baseURL = "https://api.anthropic.com/v1"
			}
			host := providers.HostFromBaseURL(baseURL, "api.anthropic.com")
			guarded := egress.New([]string{host})
			r.providers["anthropic"] = providers.NewAnthropic(pcfg.APIKey, baseURL, guarded)
			r.providerHosts["anthropic"] = host
		case "local":
			baseURL := pcfg.BaseURL
			if baseURL == "" {
				baseURL = "http://localhost:11434"
			}
			host := providers.HostFromBaseURL(baseURL, "localhost")
			guarded := egress.New([]string{host})
			r.providers["local"] = providers.NewLocal(baseURL, guarded)
			r.providerHosts["local"] = host
		}
		if _, ok := r.providers[name]; ok {
			r.breakers[name] = resilience.NewBreaker(5, 30*time.Second)
		}
	}
	return r, nil
}

func (r *Router) Manifest() gateway.PluginManifest { return manifest }
func (r *Router) InputSchema() *registry.Schema     { return r.schema }

func (r *Router) Execute(ctx registry.ToolContext, args map[string]any) (string, error) {
	identity := ctx.Identity
	callCtx := ctx.Context
	if callCtx == nil {
		callCtx = context.Background()
	}
	if _, ok := r.cfg.Agents[identity.AgentID]; !ok {
		return jsonError(fmt.Sprintf("Unknown agent: %s", identity.AgentID)), nil
	}

	providerName, _ := args["provider"].(string)
	host := r.providerHosts[providerName]
	if host == "" {
		host = "unknown"
	}

	egressDecision := r.policy.CheckEgress(identity, host)
	if !egressDecision.Allowed {
		return jsonErrorWithReasons("Egress denied", egressDecision.Reasons), nil
	}

	provider, ok := r.providers[providerName]
	if !ok {
		return jsonError(fmt.Sprintf("Unknown provider: %s", providerName)), nil
	}

	model, _ := args["model"].(string)
	pcfg, ok := r.cfg.LLM.Providers[providerName]
	if !ok || !allowedModel(pcfg.AllowedModels, model) {
		return jsonError(fmt.Sprintf("Model '%s' is not on the allowlist for provider '%s'", model, providerName)), nil
	}

	prompt, _ := args["prompt"].(string)
	if reasons := checkInput(prompt); len(reasons) > 0 {
		return jsonErrorWithReasons("Input rejected", reasons), nil
	}

	requestedMaxTokens := 1024
	if mt, ok := args["max_tokens"]; ok {
		if f, ok := mt.(float64); ok {
			requestedMaxTokens = int(f)
		}
	}
	agentCfg, _ := r.policy.AgentConfig(identity.AgentID)
	effectiveMaxTokens := requestedMaxTokens
	if agentCfg.MaxTokensPerRequest < effectiveMaxTokens {
		effectiveMaxTokens = agentCfg.MaxTokensPerRequest
	}

	spanCtx, span := toolgateotel.StartLLMQuerySpan(callCtx, providerName, model)
	defer span.End()

	var response providers.Response
	breaker := r.breakers[providerName]
	err := breaker.Execute(func() error {
		var queryErr error
		response, queryErr = provider.Query(spanCtx, model, prompt, effectiveMaxTokens)
		return queryErr
	})
	if err != nil {
		if err == resilience.ErrCircuitOpen {
			r.logger.Warn("llm query rejected: circuit open", slog.String("provider", providerName))
			return jsonError(fmt.Sprintf("provider '%s' is temporarily unavailable", providerName)), nil
		}
		safeErr := r.vault.RedactString(err.Error())
		r.logger.Warn("llm query failed",
			slog.String("provider", providerName),
			slog.String("model", model),
			slog.String("error", safeErr),
		)
		return jsonError(fmt.Sprintf("LLM query failed: %s", safeErr)), nil
	}

	if response.EstimatedCost > 0 {
		r.policy.RecordCost(identity.AgentID, response.EstimatedCost)
		if r.metrics != nil {
			r.metrics.BudgetSpend.Record(spanCtx, response.EstimatedCost)
		}
	}

	body, err := json.Marshal(map[string]any{
		"text":           response.Text,
		"model":          response.Model,
		"usage":          response.Usage,
		"estimated_cost": response.EstimatedCost,
	})
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func allowedModel(allowlist []string, model string) bool {
	for _, m := range allowlist {
		if m == model {
			return true
		}
	}
	return false
}

func jsonError(message string) string {
	body, _ := json.Marshal(map[string]string{"error": message})
	return string(body)
}

func jsonErrorWithReasons(message string, reasons []string) string {
	body, _ := json.Marshal(map[string]any{"error": message, "reasons": reasons})
	return string(body)
}
