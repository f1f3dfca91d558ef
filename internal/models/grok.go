package models

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// NewGrokModel creates a TextGenerator targeting the x.ai API.
//
// It uses the OpenAI-compatible client with the x.ai base URL. The modelName
// specifies which Grok model to target (e.g., "grok-4-fast").
func NewGrokModel(ctx context.Context, modelName, apiKey string) (TextGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if modelName == "" {
		return nil, fmt.Errorf("model name cannot be empty")
	}

	// Create OpenAI client with x.ai configuration
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL("https://api.x.ai/v1"),
	)

	// Create header value once, when the model is created
	headerValue := fmt.Sprintf("grok-go/%s go/%s",
		"1.0.0", strings.TrimPrefix(runtime.Version(), "go"))

	return &openaiModel{
		name:               modelName,
		client:             &client,
		versionHeaderValue: headerValue,
	}, nil
}
