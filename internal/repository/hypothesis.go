package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/easeaico/gift-scout/internal/types"
)

// hypothesisModel maps to the hypotheses table.
type hypothesisModel struct {
	ID            string
	SessionID     string
	TrackID       string
	Topic         string
	Title         string
	Description   string
	Reasoning     string
	GapTag        string
	SearchQueries json.RawMessage `gorm:"type:jsonb"`
	// Reaction holds the latest user reaction ("like"/"dislike"), NULL when cleared.
	Reaction  *string
	CreatedAt time.Time
}

func (hypothesisModel) TableName() string {
	return "hypotheses"
}

// HypothesisRepo persists generated hypotheses and their reactions.
type HypothesisRepo struct {
	db *gorm.DB
}

// NewHypothesisRepo returns a HypothesisRepo.
func NewHypothesisRepo(db *gorm.DB) *HypothesisRepo {
	return &HypothesisRepo{db: db}
}

// SaveBatch writes every hypothesis of a track in one insert.
func (r *HypothesisRepo) SaveBatch(ctx context.Context, sessionID string, track types.TopicTrack) error {
	if len(track.Hypotheses) == 0 {
		return nil
	}
	records := make([]hypothesisModel, 0, len(track.Hypotheses))
	for _, h := range track.Hypotheses {
		queries, err := marshalJSON(h.SearchQueries)
		if err != nil {
			return fmt.Errorf("failed to encode search queries: %w", err)
		}
		records = append(records, hypothesisModel{
			ID:            h.ID,
			SessionID:     sessionID,
			TrackID:       track.ID,
			Topic:         track.Topic,
			Title:         h.Title,
			Description:   h.Description,
			Reasoning:     h.Reasoning,
			GapTag:        h.GapTag,
			SearchQueries: queries,
		})
	}
	if err := r.db.WithContext(ctx).Create(&records).Error; err != nil {
		return fmt.Errorf("failed to insert hypotheses: %w", err)
	}
	return nil
}

// UpdateReaction sets or clears the persisted reaction for a hypothesis.
func (r *HypothesisRepo) UpdateReaction(ctx context.Context, hypothesisID, reaction string) error {
	var value *string
	if reaction != "" {
		value = &reaction
	}
	if err := r.db.WithContext(ctx).
		Model(&hypothesisModel{}).
		Where("id = ?", hypothesisID).
		Update("reaction", value).Error; err != nil {
		return fmt.Errorf("failed to update hypothesis reaction: %w", err)
	}
	return nil
}
