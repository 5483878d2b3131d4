package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultOpenAIModel = "gpt-4o-mini"

type openAIGenerator struct {
	client    *openai.Client
	model     string
	maxTokens int64
}

func newOpenAI(cfg Config) (*openAIGenerator, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY", ErrMissingAPIKey)
	}
	client := openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey))
	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	return &openAIGenerator{client: &client, model: model, maxTokens: cfg.MaxTokens}, nil
}

func (g *openAIGenerator) Name() string { return ProviderOpenAI + "/" + g.model }

func (g *openAIGenerator) Generate(ctx context.Context, req Request) (string, error) {
	resp, err := g.client.Chat.Completions.New(ctx, openAIParams(g.model, g.maxTokens, req))
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return cleanJSON(resp.Choices[0].Message.Content), nil
}

func openAIParams(model string, maxTokens int64, req Request) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(instructions(req)),
			openai.UserMessage(req.Prompt),
		},
	}
	if maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(maxTokens)
	}
	if req.Schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "newsletter",
					Schema: req.Schema,
				},
			},
		}
	}
	return params
}
