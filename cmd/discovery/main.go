// Package main runs the gift discovery service.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/easeaico/gift-scout/internal/config"
	"github.com/easeaico/gift-scout/internal/dialogue"
	"github.com/easeaico/gift-scout/internal/models"
	"github.com/easeaico/gift-scout/internal/repository"
	"github.com/easeaico/gift-scout/internal/retrieval"
	"github.com/easeaico/gift-scout/internal/session"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("shutting down")
		cancel()
	}()

	store, err := repository.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer store.Close()

	sessions := session.NewStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.SessionTTL)
	if err := sessions.Ping(ctx); err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer sessions.Close()

	embedder, err := models.NewEmbedder(ctx, cfg.GoogleAPIKey, cfg.EmbeddingModel)
	if err != nil {
		log.Fatalf("failed to create embedder: %v", err)
	}

	generator, err := models.NewTextGenerator(ctx, cfg.LLMProvider, cfg.LLMModel, cfg.ProviderAPIKey())
	if err != nil {
		log.Fatalf("failed to create text generator: %v", err)
	}

	reranker, err := models.NewHTTPReranker(cfg.RerankURL, cfg.RerankAPIKey, cfg.RerankModel)
	if err != nil {
		log.Fatalf("failed to create reranker: %v", err)
	}

	pipeline := retrieval.New(embedder, store.Products, reranker, dialogue.SlogNotifier{}, retrieval.Config{
		MaxQueries:       cfg.MaxSearchQueries,
		PerQueryLimit:    cfg.PerQueryLimit,
		ItemsPerQuery:    cfg.ItemsPerQuery,
		InterleaveBudget: cfg.InterleaveBudget,
		DeepDiveQueries:  cfg.DeepDiveQueries,
		DeepDiveLimit:    cfg.DeepDiveLimit,
		DeepDiveSize:     cfg.DeepDiveSize,
		BudgetFlexMargin: cfg.BudgetFlexMargin,
	})

	service := dialogue.NewService(generator, pipeline, sessions, store, nil, cfg.DefaultLanguage)

	if err := runDemo(ctx, service); err != nil && err != context.Canceled {
		log.Fatalf("discovery run failed: %v", err)
	}
}
