package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/easeaico/gift-scout/internal/types"
)

// recipientModel maps to the recipients table.
type recipientModel struct {
	ID           string
	UserID       string
	Age          int
	Gender       string
	Relationship string
	Occasion     string
	Interests    json.RawMessage `gorm:"type:jsonb"`
	Budget       float64
	Language     string
	CreatedAt    time.Time
}

func (recipientModel) TableName() string {
	return "recipients"
}

// RecipientRepo persists durable recipient rows.
type RecipientRepo struct {
	db *gorm.DB
}

// NewRecipientRepo returns a RecipientRepo.
func NewRecipientRepo(db *gorm.DB) *RecipientRepo {
	return &RecipientRepo{db: db}
}

func (r *RecipientRepo) Create(ctx context.Context, recipient types.Recipient) error {
	interests, err := marshalJSON(recipient.Interests)
	if err != nil {
		return fmt.Errorf("failed to encode recipient interests: %w", err)
	}
	record := recipientModel{
		ID:           recipient.ID,
		UserID:       recipient.UserID,
		Age:          recipient.Age,
		Gender:       recipient.Gender,
		Relationship: recipient.Relationship,
		Occasion:     recipient.Occasion,
		Interests:    interests,
		Budget:       recipient.Budget,
		Language:     recipient.Language,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to insert recipient: %w", err)
	}
	return nil
}
