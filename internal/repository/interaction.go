package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/easeaico/gift-scout/internal/types"
)

// interactionModel maps to the interactions table. Unlike the capped
// in-session history, rows here are never trimmed.
type interactionModel struct {
	ID         string
	SessionID  string
	Type       string
	TargetID   string
	TargetType string
	Value      string
	Metadata   json.RawMessage `gorm:"type:jsonb"`
	CreatedAt  time.Time
}

func (interactionModel) TableName() string {
	return "interactions"
}

// InteractionRepo appends interaction events.
type InteractionRepo struct {
	db *gorm.DB
}

// NewInteractionRepo returns an InteractionRepo.
func NewInteractionRepo(db *gorm.DB) *InteractionRepo {
	return &InteractionRepo{db: db}
}

func (r *InteractionRepo) Save(ctx context.Context, sessionID string, interaction types.UserInteraction) error {
	metadata, err := marshalJSON(interaction.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode interaction metadata: %w", err)
	}
	record := interactionModel{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		Type:       interaction.Type,
		TargetID:   interaction.TargetID,
		TargetType: interaction.TargetType,
		Value:      interaction.Value,
		Metadata:   metadata,
		CreatedAt:  interaction.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to insert interaction: %w", err)
	}
	return nil
}
