package models

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// geminiModel generates text through the Gemini API.
type geminiModel struct {
	client *genai.Client
	name   string
}

// NewGeminiModel creates a TextGenerator backed by Gemini.
func NewGeminiModel(ctx context.Context, modelName, apiKey string) (TextGenerator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if modelName == "" {
		return nil, fmt.Errorf("model name cannot be empty")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &geminiModel{
		client: client,
		name:   modelName,
	}, nil
}

func (m *geminiModel) Name() string {
	return m.name
}

func (m *geminiModel) GenerateText(ctx context.Context, req GenerateRequest) (string, error) {
	config := &genai.GenerateContentConfig{}
	if req.SystemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, "system")
	}
	if req.MaxOutputTokens > 0 {
		config.MaxOutputTokens = req.MaxOutputTokens
	}
	if req.ResponseSchema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseJsonSchema = req.ResponseSchema
	}

	resp, err := m.client.Models.GenerateContent(ctx, m.name, genai.Text(req.Prompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to call gemini API: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty generation response")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}
