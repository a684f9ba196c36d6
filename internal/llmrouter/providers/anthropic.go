package providers

import (
	"context"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/Strob0t/toolgate/internal/egress"
)

var costPer1KAnthropic = map[string]float64{
	"claude-sonnet-4-20250514":  0.006,
	"claude-haiku-4-5-20251001": 0.002,
}

const fallbackCostAnthropic = 0.005

// Anthropic routes llm.query calls through the Anthropic Messages API via
// the official SDK, with its transport pinned to a guarded client.
type Anthropic struct {
	apiKey string
	client sdk.Client
}

// NewAnthropic constructs an Anthropic provider. An empty apiKey is valid;
// Query then returns a misconfiguration response instead of calling the API.
func NewAnthropic(apiKey, baseURL string, guarded *egress.Client) *Anthropic {
	opts := []option.RequestOption{
		option.WithHTTPClient(guarded.HTTPClient()),
	}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Anthropic{apiKey: apiKey, client: sdk.NewClient(opts...)}
}

func (p *Anthropic) Name() string { return "anthropic" }

func (p *Anthropic) Query(ctx context.Context, model, prompt string, maxTokens int) (Response, error) {
	if p.apiKey == "" {
		return Response{
			Text:  "Error: Anthropic API key is not configured. Set TOOLGATE_ANTHROPIC_API_KEY in environment.",
			Model: model,
		}, nil
	}

	message, err := p.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(model),
		MaxTokens: int64(maxTokens),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return Response{}, err
	}

	var blocks []string
	for _, block := range message.Content {
		if block.Type == "text" {
			blocks = append(blocks, block.Text)
		}
	}
	text := strings.Join(blocks, "\n")

	inputTokens := int(message.Usage.InputTokens)
	outputTokens := int(message.Usage.OutputTokens)
	total := inputTokens + outputTokens

	price, ok := costPer1KAnthropic[model]
	if !ok {
		price = fallbackCostAnthropic
	}
	cost := (float64(total) / 1000) * price

	return Response{
		Text:  text,
		Model: model,
		Usage: map[string]int{
			"input_tokens":  inputTokens,
			"output_tokens": outputTokens,
			"total_tokens":  total,
		},
		EstimatedCost: cost,
	}, nil
}
