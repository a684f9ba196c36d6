package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Strob0t/toolgate/internal/egress"
)

// Local routes llm.query calls to an Ollama-shaped local endpoint. No SDK
// exists for this wire format, so requests are built and issued directly
// through the guarded client.
type Local struct {
	baseURL string
	client  *egress.Client
}

// NewLocal constructs a Local provider against baseURL (e.g.
// http://localhost:11434).
func NewLocal(baseURL string, guarded *egress.Client) *Local {
	return &Local{baseURL: strings.TrimRight(baseURL, "/"), client: guarded}
}

func (p *Local) Name() string { return "local" }

type localGenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options localOptions   `json:"options"`
}

type localOptions struct {
	NumPredict int `json:"num_predict"`
}

type localGenerateResponse struct {
	Response       string `json:"response"`
	EvalCount      int    `json:"eval_count"`
	PromptEvalCount int   `json:"prompt_eval_count"`
}

func (p *Local) Query(ctx context.Context, model, prompt string, maxTokens int) (Response, error) {
	body, err := json.Marshal(localGenerateRequest{
		Model:  model,
		Prompt: prompt,
		Stream: false,
		Options: localOptions{
			NumPredict: maxTokens,
		},
	})
	if err != nil {
		return Response{}, fmt.Errorf("encode local request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("build local request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return Response{}, fmt.Errorf("local provider returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read local response: %w", err)
	}

	var parsed localGenerateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Response{}, fmt.Errorf("decode local response: %w", err)
	}

	return Response{
		Text:  parsed.Response,
		Model: model,
		Usage: map[string]int{
			"total_tokens": parsed.EvalCount + parsed.PromptEvalCount,
		},
		EstimatedCost: 0,
	}, nil
}
