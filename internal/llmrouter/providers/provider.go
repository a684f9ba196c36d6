// Package providers implements the LLM backends llm.query can route to:
// OpenAI-compatible chat, Anthropic messages, and a local Ollama-shaped
// endpoint. Each wraps a per-provider egress.Client so every outbound call,
// whether issued directly or through an injected SDK, passes the same
// hostname allowlist check.
package providers

import "context"

// Response is the normalized result of a single provider query.
type Response struct {
	Text          string
	Model         string
	Usage         map[string]int
	EstimatedCost float64
}

// Provider is a queryable LLM backend.
type Provider interface {
	Name() string
	Query(ctx context.Context, model, prompt string, maxTokens int) (Response, error)
}
