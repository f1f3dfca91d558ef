// Package dialogue drives the discovery session state machine.
package dialogue

import (
	"context"
	"errors"
	"log/slog"

	"github.com/easeaico/gift-scout/internal/models"
	"github.com/easeaico/gift-scout/internal/types"
)

var (
	// ErrTrackNotFound is returned for interactions against an unknown track.
	ErrTrackNotFound = errors.New("track not found")
	// ErrHypothesisNotFound is returned for reactions against an unknown hypothesis.
	ErrHypothesisNotFound = errors.New("hypothesis not found")
)

// TextGenerator produces structured or free text from a prompt.
type TextGenerator interface {
	GenerateText(ctx context.Context, req models.GenerateRequest) (string, error)
}

// Retriever finds preview and deep-dive products for a hypothesis.
type Retriever interface {
	FindPreviewProducts(ctx context.Context, queries []string, title string, maxPrice float64) ([]types.GiftCandidate, error)
	FindDeepDiveProducts(ctx context.Context, queries []string, title, description string, maxPrice float64) ([]types.GiftCandidate, error)
}

// SessionStore persists the in-flight session between interactions.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*types.RecommendationSession, error)
	Save(ctx context.Context, sess *types.RecommendationSession) error
}

// PersistenceStore is the durable write-behind side channel. Every call is
// best-effort from the orchestrator's point of view.
type PersistenceStore interface {
	CreateRecipient(ctx context.Context, recipient types.Recipient) error
	SaveHypotheses(ctx context.Context, sessionID string, track types.TopicTrack) error
	SaveInteraction(ctx context.Context, sessionID string, interaction types.UserInteraction) error
	UpdateHypothesisReaction(ctx context.Context, hypothesisID, reaction string) error
}

// Notifier surfaces degraded-mode events to monitoring.
type Notifier interface {
	Notify(event string, kv ...any)
}

// SlogNotifier reports monitoring events through the process logger.
type SlogNotifier struct{}

func (SlogNotifier) Notify(event string, kv ...any) {
	slog.Warn("monitoring event", append([]any{"event", event}, kv...)...)
}

// Service owns the discovery session state machine.
type Service struct {
	generator   TextGenerator
	retriever   Retriever
	sessions    SessionStore
	store       PersistenceStore
	notifier    Notifier
	defaultLang string
}

// NewService creates the dialogue orchestrator.
func NewService(generator TextGenerator, retriever Retriever, sessions SessionStore, store PersistenceStore, notifier Notifier, defaultLang string) *Service {
	if notifier == nil {
		notifier = SlogNotifier{}
	}
	if defaultLang == "" {
		defaultLang = "en"
	}
	return &Service{
		generator:   generator,
		retriever:   retriever,
		sessions:    sessions,
		store:       store,
		notifier:    notifier,
		defaultLang: defaultLang,
	}
}

func (s *Service) language(quiz types.QuizAnswers) string {
	if quiz.Language != "" {
		return quiz.Language
	}
	return s.defaultLang
}

// bestEffort runs a durable write that must never fail the live dialogue.
func (s *Service) bestEffort(op string, fn func() error) {
	if err := fn(); err != nil {
		slog.Warn("best-effort write failed", "op", op, "error", err.Error())
	}
}
