// Package retrieval implements the multi-query product search pipeline.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/easeaico/gift-scout/internal/types"
	"github.com/easeaico/gift-scout/internal/utils"
)

// Embedder converts a search query into a vector.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Reranker scores candidate documents against a query.
type Reranker interface {
	Rerank(ctx context.Context, query string, documents []string) ([]float64, error)
}

// CatalogSearcher returns nearest-neighbor products for an embedding.
type CatalogSearcher interface {
	SearchSimilar(ctx context.Context, embedding []float32, limit int, activeOnly bool, maxPrice float64) ([]types.GiftCandidate, error)
}

// Notifier surfaces degraded-mode events to monitoring.
type Notifier interface {
	Notify(event string, kv ...any)
}

// Config tunes the pipeline.
type Config struct {
	MaxQueries       int
	PerQueryLimit    int
	ItemsPerQuery    int
	InterleaveBudget int
	DeepDiveQueries  int
	DeepDiveLimit    int
	DeepDiveSize     int
	// BudgetFlexMargin relaxes the stated budget upward: a candidate slightly
	// over budget beats returning nothing.
	BudgetFlexMargin float64
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		MaxQueries:       4,
		PerQueryLimit:    12,
		ItemsPerQuery:    3,
		InterleaveBudget: 8,
		DeepDiveQueries:  3,
		DeepDiveLimit:    30,
		DeepDiveSize:     10,
		BudgetFlexMargin: 0.15,
	}
}

// Pipeline runs preview and deep-dive product retrieval.
type Pipeline struct {
	embedder Embedder
	searcher CatalogSearcher
	reranker Reranker
	notifier Notifier
	cfg      Config
}

// New creates a Pipeline.
func New(embedder Embedder, searcher CatalogSearcher, reranker Reranker, notifier Notifier, cfg Config) *Pipeline {
	if cfg.MaxQueries <= 0 {
		cfg = DefaultConfig()
	}
	return &Pipeline{
		embedder: embedder,
		searcher: searcher,
		reranker: reranker,
		notifier: notifier,
		cfg:      cfg,
	}
}

// FindPreviewProducts runs the preview search: concurrent per-query retrieval
// under a flexed budget, one global rerank, per-query top-K, and a
// round-robin interleave so no single query dominates the preview.
// An empty result is a valid outcome, not an error.
func (p *Pipeline) FindPreviewProducts(ctx context.Context, queries []string, title string, maxPrice float64) ([]types.GiftCandidate, error) {
	queries = boundQueries(queries, p.cfg.MaxQueries)
	if len(queries) == 0 {
		return nil, nil
	}

	perQuery := p.searchAll(ctx, queries, p.cfg.PerQueryLimit, p.flexBudget(maxPrice))

	pool, index := unionCandidates(perQuery)
	if len(pool) == 0 {
		return nil, nil
	}

	rerankContext := title
	if rerankContext == "" {
		rerankContext = strings.Join(queries[:min(2, len(queries))], " ")
	}
	scores := p.rerankPool(ctx, rerankContext, pool)

	// Per-query top-K by shared rerank score, then interleave across queries.
	topK := make([][]types.GiftCandidate, len(perQuery))
	for i, candidates := range perQuery {
		topK[i] = takeTopK(candidates, index, scores, p.cfg.ItemsPerQuery)
	}
	return interleave(topK, p.cfg.InterleaveBudget), nil
}

// FindDeepDiveProducts runs the heavier search triggered when a hypothesis is
// liked: fewer queries, deeper candidate sets, and a global ordering by
// rerank score instead of interleaving.
func (p *Pipeline) FindDeepDiveProducts(ctx context.Context, queries []string, title, description string, maxPrice float64) ([]types.GiftCandidate, error) {
	queries = boundQueries(queries, p.cfg.DeepDiveQueries)
	if len(queries) == 0 {
		return nil, nil
	}

	perQuery := p.searchAll(ctx, queries, p.cfg.DeepDiveLimit, p.flexBudget(maxPrice))

	pool, _ := unionCandidates(perQuery)
	if len(pool) == 0 {
		return nil, nil
	}

	rerankContext := strings.TrimSpace(title + ". " + description)
	scores := p.rerankPool(ctx, rerankContext, pool)

	order := make([]int, len(pool))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	size := min(p.cfg.DeepDiveSize, len(pool))
	out := make([]types.GiftCandidate, 0, size)
	for _, idx := range order[:size] {
		out = append(out, pool[idx])
	}
	return out, nil
}

// searchAll embeds and searches every query concurrently. A failing query is
// logged and excluded; survivors still produce a result.
func (p *Pipeline) searchAll(ctx context.Context, queries []string, limit int, maxPrice float64) [][]types.GiftCandidate {
	results := utils.Gather(ctx, len(queries), func(ctx context.Context, i int) ([]types.GiftCandidate, error) {
		vec, err := p.embedder.EmbedQuery(ctx, queries[i])
		if err != nil {
			return nil, fmt.Errorf("failed to embed query: %w", err)
		}
		return p.searcher.SearchSimilar(ctx, vec, limit, true, maxPrice)
	})

	perQuery := make([][]types.GiftCandidate, len(queries))
	for _, result := range results {
		if result.Err != nil {
			slog.Warn("search query failed, dropping it", "query", queries[result.Index], "error", result.Err.Error())
			continue
		}
		perQuery[result.Index] = result.Value
	}
	return perQuery
}

// rerankPool scores the pool against the context string. On rerank failure it
// substitutes a descending score from the original retrieval rank so the
// preview never fails just because reranking is down.
func (p *Pipeline) rerankPool(ctx context.Context, rerankContext string, pool []types.GiftCandidate) []float64 {
	documents := make([]string, len(pool))
	for i, candidate := range pool {
		documents[i] = candidate.Title
	}

	scores, err := p.reranker.Rerank(ctx, rerankContext, documents)
	if err == nil && len(scores) == len(pool) {
		return scores
	}
	if err != nil {
		slog.Warn("rerank failed, falling back to retrieval order", "error", err.Error())
	} else {
		slog.Warn("rerank returned wrong score count, falling back to retrieval order", "got", len(scores), "want", len(pool))
	}
	p.notifier.Notify("rerank_degraded", "pool_size", len(pool))

	fallback := make([]float64, len(pool))
	for i := range pool {
		fallback[i] = float64(len(pool) - i)
	}
	return fallback
}

func (p *Pipeline) flexBudget(maxPrice float64) float64 {
	if maxPrice <= 0 {
		return 0
	}
	return maxPrice * (1 + p.cfg.BudgetFlexMargin)
}

func boundQueries(queries []string, limit int) []string {
	out := utils.DedupeStrings(queries)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// unionCandidates merges per-query candidate lists into one deduplicated
// pool, preserving first-seen order as the original retrieval rank.
func unionCandidates(perQuery [][]types.GiftCandidate) ([]types.GiftCandidate, map[string]int) {
	pool := make([]types.GiftCandidate, 0)
	index := make(map[string]int)
	for _, candidates := range perQuery {
		for _, candidate := range candidates {
			if _, ok := index[candidate.ProductID]; ok {
				continue
			}
			index[candidate.ProductID] = len(pool)
			pool = append(pool, candidate)
		}
	}
	return pool, index
}

// takeTopK sorts one query's own candidates by the shared rerank score and
// keeps the best k.
func takeTopK(candidates []types.GiftCandidate, index map[string]int, scores []float64, k int) []types.GiftCandidate {
	sorted := make([]types.GiftCandidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(a, b int) bool {
		return scores[index[sorted[a].ProductID]] > scores[index[sorted[b].ProductID]]
	})
	if len(sorted) > k {
		sorted = sorted[:k]
	}
	return sorted
}

// interleave merges the per-query lists round-robin, skipping product ids
// already emitted, until the lists are exhausted or the budget is spent.
func interleave(lists [][]types.GiftCandidate, budget int) []types.GiftCandidate {
	out := make([]types.GiftCandidate, 0, budget)
	seen := make(map[string]bool)
	for depth := 0; ; depth++ {
		exhausted := true
		for _, list := range lists {
			if depth >= len(list) {
				continue
			}
			exhausted = false
			candidate := list[depth]
			if seen[candidate.ProductID] {
				continue
			}
			seen[candidate.ProductID] = true
			out = append(out, candidate)
			if budget > 0 && len(out) >= budget {
				return out
			}
		}
		if exhausted {
			return out
		}
	}
}
