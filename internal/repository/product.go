package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/easeaico/gift-scout/internal/types"
)

// productModel maps to the products table populated by the ingestion pipeline.
type productModel struct {
	ID           string
	Title        string
	Price        float64
	Currency     string
	ImageURL     string
	MerchantName string
	Category     string
	IsActive     bool
	// Embedding stores the vector representation for similarity search.
	Embedding *pgvector.Vector `gorm:"type:vector"`
	CreatedAt time.Time
}

func (productModel) TableName() string {
	return "products"
}

// ProductRepo reads the gift catalog.
type ProductRepo struct {
	db *gorm.DB
}

// NewProductRepo returns a ProductRepo.
func NewProductRepo(db *gorm.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

// SearchSimilar returns the nearest catalog products for an embedding,
// optionally restricted to active products under a price ceiling.
func (r *ProductRepo) SearchSimilar(ctx context.Context, embedding []float32, limit int, activeOnly bool, maxPrice float64) ([]types.GiftCandidate, error) {
	if len(embedding) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	conditions := "embedding IS NOT NULL"
	args := []any{pgvector.NewVector(embedding)}
	argIndex := 2

	if activeOnly {
		conditions += " AND is_active = TRUE"
	}
	if maxPrice > 0 {
		conditions += fmt.Sprintf(" AND price <= $%d", argIndex)
		args = append(args, maxPrice)
		argIndex++
	}

	query := fmt.Sprintf(`
		SELECT id AS product_id, title, price, currency, image_url,
		       merchant_name AS merchant, category
		FROM products
		WHERE %s
		ORDER BY embedding <=> $1
		LIMIT $%d`, conditions, argIndex)

	args = append(args, limit)

	var results []types.GiftCandidate
	if err := r.db.WithContext(ctx).
		Raw(query, args...).
		Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to search similar products: %w", err)
	}
	return results, nil
}
