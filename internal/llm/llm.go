// Package llm wraps the generative model providers behind one JSON-producing
// Generator.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrUnknownProvider = errors.New("llm: unknown provider")
	ErrMissingAPIKey   = errors.New("llm: missing API key")
	ErrEmptyResponse   = errors.New("llm: empty response")
)

const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config selects and configures the provider.
type Config struct {
	Provider        string        `env:"LLM_PROVIDER" envDefault:"gemini"`
	Model           string        `env:"LLM_MODEL"`
	Timeout         time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`
	MaxTokens       int64         `env:"LLM_MAX_TOKENS" envDefault:"2048"`
	GeminiAPIKey    string        `env:"GEMINI_API_KEY"`
	OpenAIAPIKey    string        `env:"OPENAI_API_KEY"`
	AnthropicAPIKey string        `env:"ANTHROPIC_API_KEY"`
}

// Request is one structured generation call.
type Request struct {
	System string
	Prompt string
	// Schema describes the expected JSON output. Gemini and OpenAI enforce
	// it natively. OpenAI and Anthropic also get it in the instructions.
	Schema *Schema
}

// Generator returns the raw JSON text produced for req.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
	Name() string
}

// Schema is the provider-neutral subset of JSON schema used for outputs.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// Schema types.
const (
	TypeObject  = "object"
	TypeArray   = "array"
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
)

// New builds the generator named by cfg.Provider.
func New(ctx context.Context, cfg Config) (Generator, error) {
	var (
		g   Generator
		err error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderGemini:
		g, err = newGemini(ctx, cfg)
	case ProviderOpenAI:
		g, err = newOpenAI(cfg)
	case ProviderAnthropic:
		g, err = newAnthropic(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	if cfg.Timeout > 0 {
		g = withTimeout{Generator: g, timeout: cfg.Timeout}
	}
	return g, nil
}

type withTimeout struct {
	Generator
	timeout time.Duration
}

func (w withTimeout) Generate(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	return w.Generator.Generate(ctx, req)
}

// instructions appends the schema to the system prompt for providers
// without native schema support.
func instructions(req Request) string {
	if req.Schema == nil {
		return req.System
	}
	schema, _ := json.MarshalIndent(req.Schema, "", "  ")
	return req.System + "\n\nRespond with JSON only, no prose and no code fences, matching this JSON schema:\n" + string(schema)
}

// cleanJSON strips code fences and any prose around the outermost object.
func cleanJSON(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}
	return content
}
