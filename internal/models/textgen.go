// Package models provides the closed set of model-provider adapters.
package models

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// GenerateRequest is a single-shot text generation call.
type GenerateRequest struct {
	Prompt          string
	SystemPrompt    string
	MaxOutputTokens int32
	// ResponseSchema, when set, constrains the output to a JSON document
	// matching the schema. Backends that cannot enforce it still receive the
	// schema as an instruction; callers parse defensively either way.
	ResponseSchema *jsonschema.Schema
}

// TextGenerator produces text from a prompt. Implementations are selected
// once at startup; swapping the backend must not change caller behavior.
type TextGenerator interface {
	Name() string
	GenerateText(ctx context.Context, req GenerateRequest) (string, error)
}

// NewTextGenerator resolves the configured provider to a backend.
func NewTextGenerator(ctx context.Context, provider, modelName, apiKey string) (TextGenerator, error) {
	switch provider {
	case "openai":
		return NewOpenAIModel(ctx, modelName, apiKey)
	case "grok":
		return NewGrokModel(ctx, modelName, apiKey)
	case "openrouter":
		return NewOpenRouterModel(ctx, modelName, apiKey)
	case "gemini":
		return NewGeminiModel(ctx, modelName, apiKey)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", provider)
	}
}
