package repository

import (
	"context"

	"github.com/easeaico/gift-scout/internal/types"
)

// Convenience wrappers so the store can be handed to the dialogue service as
// a single durable write sink.

func (s *Store) CreateRecipient(ctx context.Context, recipient types.Recipient) error {
	return s.Recipients.Create(ctx, recipient)
}

func (s *Store) SaveHypotheses(ctx context.Context, sessionID string, track types.TopicTrack) error {
	return s.Hypotheses.SaveBatch(ctx, sessionID, track)
}

func (s *Store) SaveInteraction(ctx context.Context, sessionID string, interaction types.UserInteraction) error {
	return s.Interactions.Save(ctx, sessionID, interaction)
}

func (s *Store) UpdateHypothesisReaction(ctx context.Context, hypothesisID, reaction string) error {
	return s.Hypotheses.UpdateReaction(ctx, hypothesisID, reaction)
}
