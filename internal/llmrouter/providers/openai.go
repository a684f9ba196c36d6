package providers

import (
	"context"
	"strings"

	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/Strob0t/toolgate/internal/egress"
)

// costPer1KOpenAI holds rough per-1K-token price estimates, input and output
// averaged. Unknown models fall back to a conservative flat rate.
var costPer1KOpenAI = map[string]float64{
	"gpt-4o":      0.005,
	"gpt-4o-mini": 0.0003,
}

const fallbackCostOpenAI = 0.01

// OpenAI routes llm.query calls through the OpenAI chat completions API via
// the official SDK, with the SDK's transport pinned to a guarded client so
// egress enforcement cannot be bypassed by SDK-internal requests.
type OpenAI struct {
	apiKey string
	client sdk.Client
}

// NewOpenAI constructs an OpenAI provider. An empty apiKey is valid; Query
// then returns a misconfiguration response instead of calling the API.
func NewOpenAI(apiKey, baseURL string, guarded *egress.Client) *OpenAI {
	opts := []option.RequestOption{
		option.WithHTTPClient(guarded.HTTPClient()),
	}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAI{apiKey: apiKey, client: sdk.NewClient(opts...)}
}

func (p *OpenAI) Name() string { return "openai" }

func (p *OpenAI) Query(ctx context.Context, model, prompt string, maxTokens int) (Response, error) {
	if p.apiKey == "" {
		return Response{
			Text:  "Error: OpenAI API key is not configured. Set TOOLGATE_OPENAI_API_KEY in environment.",
			Model: model,
		}, nil
	}

	completion, err := p.client.Chat.Completions.New(ctx, sdk.ChatCompletionNewParams{
		Model: model,
		Messages: []sdk.ChatCompletionMessageParamUnion{
			sdk.UserMessage(prompt),
		},
		MaxTokens: sdk.Int(int64(maxTokens)),
	})
	if err != nil {
		return Response{}, err
	}

	var text string
	if len(completion.Choices) > 0 {
		text = completion.Choices[0].Message.Content
	}

	totalTokens := int(completion.Usage.TotalTokens)
	price, ok := costPer1KOpenAI[model]
	if !ok {
		price = fallbackCostOpenAI
	}
	cost := (float64(totalTokens) / 1000) * price

	return Response{
		Text:  text,
		Model: model,
		Usage: map[string]int{
			"prompt_tokens":     int(completion.Usage.PromptTokens),
			"completion_tokens": int(completion.Usage.CompletionTokens),
			"total_tokens":      totalTokens,
		},
		EstimatedCost: cost,
	}, nil
}

// HostFromBaseURL extracts the hostname a base URL would send requests to,
// used to build the provider's egress allowlist entry when not hardcoded.
func HostFromBaseURL(baseURL, fallback string) string {
	u := strings.TrimPrefix(baseURL, "https://")
	u = strings.TrimPrefix(u, "http://")
	if idx := strings.IndexAny(u, "/:"); idx >= 0 {
		u = u[:idx]
	}
	if u == "" {
		return fallback
	}
	return u
}
