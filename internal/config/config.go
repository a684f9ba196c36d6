// Package config defines the gateway's configuration schema and loads it
// from YAML with environment-variable expansion. Precedence: defaults <
// YAML file < environment variables already expanded into the YAML values.
package config

import "github.com/Strob0t/toolgate/internal/domain/gateway"

// Server holds the HTTP listener and self-description fields advertised via
// the about.server resource.
type Server struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Description string `yaml:"description"`
}

// AgentConfig is the immutable per-agent snapshot held by the running
// server: token, allowlists, limits, and budget.
type AgentConfig struct {
	Token               string               `yaml:"token"`
	TenantID            string               `yaml:"tenant_id"`
	AllowedTools        []string             `yaml:"allowed_tools"`
	AllowedCapabilities []gateway.Capability `yaml:"allowed_capabilities"`
	EgressAllowlist     []string             `yaml:"egress_allowlist"`
	MaxPayloadBytes     int                  `yaml:"max_payload_bytes"`
	MaxResponseBytes    int                  `yaml:"max_response_bytes"`
	TimeoutSeconds      int                  `yaml:"timeout_seconds"`
	Concurrency         int                  `yaml:"concurrency"`
	RateLimit           int                  `yaml:"rate_limit"`
	MaxTokensPerRequest int                  `yaml:"max_tokens_per_request"`
	MaxCostPerDay       float64              `yaml:"max_cost_per_day"`
	Instructions        string               `yaml:"instructions"`

	allowedToolSet       map[string]struct{}
	allowedCapabilitySet map[gateway.Capability]struct{}
	egressAllowlistSet   map[string]struct{}
}

// AllowedToolSet returns the agent's allowed tool names as a set, built
// lazily from AllowedTools on first use.
func (a *AgentConfig) AllowedToolSet() map[string]struct{} {
	if a.allowedToolSet == nil {
		a.allowedToolSet = make(map[string]struct{}, len(a.AllowedTools))
		for _, t := range a.AllowedTools {
			a.allowedToolSet[t] = struct{}{}
		}
	}
	return a.allowedToolSet
}

// AllowedCapabilitySet returns the agent's allowed capabilities as a set.
func (a *AgentConfig) AllowedCapabilitySet() map[gateway.Capability]struct{} {
	if a.allowedCapabilitySet == nil {
		a.allowedCapabilitySet = make(map[gateway.Capability]struct{}, len(a.AllowedCapabilities))
		for _, c := range a.AllowedCapabilities {
			a.allowedCapabilitySet[c] = struct{}{}
		}
	}
	return a.allowedCapabilitySet
}

// EgressAllowlistSet returns the agent's egress allowlist as a lower-cased
// set for case-insensitive host matching.
func (a *AgentConfig) EgressAllowlistSet() map[string]struct{} {
	if a.egressAllowlistSet == nil {
		a.egressAllowlistSet = make(map[string]struct{}, len(a.EgressAllowlist))
		for _, h := range a.EgressAllowlist {
			a.egressAllowlistSet[lower(h)] = struct{}{}
		}
	}
	return a.egressAllowlistSet
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// LLMProviderConfig is one entry in llm.providers.
type LLMProviderConfig struct {
	APIKey        string   `yaml:"api_key"`
	BaseURL       string   `yaml:"base_url"`
	AllowedModels []string `yaml:"allowed_models"`
}

// LLMConfig holds the configured LLM provider table.
type LLMConfig struct {
	Providers map[string]LLMProviderConfig `yaml:"providers"`
}

// Logging configures the structured logger. Async enables the buffered
// worker-pool handler; the caller must flush it on shutdown.
type Logging struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
	Async   bool   `yaml:"async"`
}

// Observability configures the OTLP/gRPC trace and metric exporters. When
// Enabled is false the server runs with no-op global providers and never
// dials an endpoint.
type Observability struct {
	Enabled    bool    `yaml:"enabled"`
	Endpoint   string  `yaml:"endpoint"`
	Insecure   bool    `yaml:"insecure"`
	SampleRate float64 `yaml:"sample_rate"`
}

// Cache configures the in-process read-through cache fronting resource
// reads. MaxCostBytes is the ristretto cost budget; TTLSeconds is the
// per-entry expiry.
type Cache struct {
	MaxCostBytes int64 `yaml:"max_cost_bytes"`
	TTLSeconds   int   `yaml:"ttl_seconds"`
}

// Config is the full configuration snapshot loaded once at startup. After
// load it is treated as immutable for the process lifetime — no hot reload.
type Config struct {
	Server         Server                  `yaml:"server"`
	Agents         map[string]*AgentConfig `yaml:"agents"`
	EnabledPlugins []string                `yaml:"enabled_plugins"`
	LLM            LLMConfig               `yaml:"llm"`
	Logging        Logging                 `yaml:"logging"`
	Observability  Observability           `yaml:"observability"`
	Cache          Cache                   `yaml:"cache"`
	RedactPatterns []string                `yaml:"redact_patterns"`
}

// Defaults returns a Config with spec-mandated defaults and no agents.
func Defaults() Config {
	return Config{
		Server: Server{
			Host:        "0.0.0.0",
			Port:        8000,
			Name:        "toolgate",
			Version:     "0.1.0",
			Description: "Remote tool-serving gateway for multi-agent assistants",
		},
		Agents:         map[string]*AgentConfig{},
		EnabledPlugins: []string{"core.echo", "core.sum"},
		Logging: Logging{
			Level:   "info",
			Service: "toolgate",
			Async:   false,
		},
		Observability: Observability{
			Enabled:    false,
			SampleRate: 1.0,
		},
		Cache: Cache{
			MaxCostBytes: 1 << 20,
			TTLSeconds:   30,
		},
		RedactPatterns: []string{
			`(?i)sk-[A-Za-z0-9]{20,}`,
			`(?i)Bearer\s+[A-Za-z0-9._\-]+`,
			`(?i)api[_-]?key\s*[:=]\s*\S+`,
		},
	}
}

// applyAgentDefaults fills zero-valued numeric fields with the spec's
// per-agent defaults after YAML unmarshaling, since yaml.v3 leaves unset
// scalar fields at their Go zero value rather than a supplied default.
func applyAgentDefaults(a *AgentConfig) {
	if a.MaxPayloadBytes == 0 {
		a.MaxPayloadBytes = 1 << 20
	}
	if a.MaxResponseBytes == 0 {
		a.MaxResponseBytes = 1 << 20
	}
	if a.TimeoutSeconds == 0 {
		a.TimeoutSeconds = 30
	}
	if a.Concurrency == 0 {
		a.Concurrency = 5
	}
	if a.RateLimit == 0 {
		a.RateLimit = 60
	}
	if a.MaxTokensPerRequest == 0 {
		a.MaxTokensPerRequest = 4096
	}
	if a.MaxCostPerDay == 0 {
		a.MaxCostPerDay = 10.0
	}
}
