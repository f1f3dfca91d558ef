package models

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// NewOpenRouterModel creates a TextGenerator routed through OpenRouter.
func NewOpenRouterModel(ctx context.Context, modelName, apiKey string) (TextGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if modelName == "" {
		return nil, fmt.Errorf("model name cannot be empty")
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL("https://openrouter.ai/api/v1"),
	)

	// Create header value once, when the model is created
	headerValue := fmt.Sprintf("openrouter-go/%s go/%s",
		"1.0.0", strings.TrimPrefix(runtime.Version(), "go"))

	modelName = fmt.Sprintf("openrouter/%s", modelName)

	return &openaiModel{
		name:               modelName,
		client:             &client,
		versionHeaderValue: headerValue,
	}, nil
}
