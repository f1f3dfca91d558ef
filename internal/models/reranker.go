package models

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Reranker scores candidate documents against a query.
type Reranker interface {
	Rerank(ctx context.Context, query string, documents []string) ([]float64, error)
}

// HTTPReranker calls a Jina-style POST /rerank endpoint.
type HTTPReranker struct {
	client *resty.Client
	model  string
}

type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
}

type rerankResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
}

// NewHTTPReranker creates a rerank client for the given endpoint.
func NewHTTPReranker(baseURL, apiKey, model string) (*HTTPReranker, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("rerank base URL is required")
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(20 * time.Second)
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	return &HTTPReranker{client: client, model: model}, nil
}

func (r *HTTPReranker) Rerank(ctx context.Context, query string, documents []string) ([]float64, error) {
	if len(documents) == 0 {
		return nil, nil
	}

	var out rerankResponse
	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(rerankRequest{Model: r.model, Query: query, Documents: documents}).
		SetResult(&out).
		Post("/rerank")
	if err != nil {
		return nil, fmt.Errorf("failed to call rerank API: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("rerank API returned %s", resp.Status())
	}

	scores := make([]float64, len(documents))
	for _, result := range out.Results {
		if result.Index >= 0 && result.Index < len(scores) {
			scores[result.Index] = result.RelevanceScore
		}
	}
	return scores, nil
}
