package llm

import (
	"context"
	"fmt"
	"math"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-1.5-flash-latest"

type geminiGenerator struct {
	client    *genai.Client
	model     string
	maxTokens int32
}

func newGemini(ctx context.Context, cfg Config) (*geminiGenerator, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY", ErrMissingAPIKey)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}
	return &geminiGenerator{client: client, model: model, maxTokens: int32(min(cfg.MaxTokens, math.MaxInt32))}, nil
}

func (g *geminiGenerator) Name() string { return ProviderGemini + "/" + g.model }

func (g *geminiGenerator) Generate(ctx context.Context, req Request) (string, error) {
	gc := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   geminiSchema(req.Schema),
		MaxOutputTokens:  max(g.maxTokens, 0),
	}
	if req.System != "" {
		gc.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), gc)
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	text := strings.TrimSpace(responseText(resp))
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil && !p.Thought {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

var geminiTypes = map[string]genai.Type{
	TypeObject:  genai.TypeObject,
	TypeArray:   genai.TypeArray,
	TypeString:  genai.TypeString,
	TypeInteger: genai.TypeInteger,
	TypeNumber:  genai.TypeNumber,
	TypeBoolean: genai.TypeBoolean,
}

func geminiSchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        geminiTypes[s.Type],
		Description: s.Description,
		Items:       geminiSchema(s.Items),
		Required:    s.Required,
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, p := range s.Properties {
			out.Properties[name] = geminiSchema(p)
		}
	}
	return out
}
