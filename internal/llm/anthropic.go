package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-haiku-4-5"

type anthropicGenerator struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
}

func newAnthropic(cfg Config) (*anthropicGenerator, error) {
	if cfg.AnthropicAPIKey == "" {
		return nil, fmt.Errorf("%w: ANTHROPIC_API_KEY", ErrMissingAPIKey)
	}
	client := anthropic.NewClient(option.WithAPIKey(cfg.AnthropicAPIKey))
	model := cfg.Model
	if model == "" {
		model = defaultAnthropicModel
	}
	return &anthropicGenerator{client: &client, model: model, maxTokens: max(cfg.MaxTokens, 1024)}, nil
}

func (g *anthropicGenerator) Name() string { return ProviderAnthropic + "/" + g.model }

func (g *anthropicGenerator) Generate(ctx context.Context, req Request) (string, error) {
	resp, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: g.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: instructions(req)},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", ErrEmptyResponse
	}
	return cleanJSON(sb.String()), nil
}
