package repository

import (
	"context"

	"github.com/milfin/milfin-api/internal/models"
	"gorm.io/gorm"
)

// SequenceRepository reserves per-year document numbers
type SequenceRepository interface {
	NextValue(ctx context.Context, scope string, year int) (int, error)
	NextDocumentNumber(ctx context.Context, scope string, year int) (string, error)
}

type sequenceRepository struct {
	db *gorm.DB
}

// NewSequenceRepository creates a new sequence repository
func NewSequenceRepository(db *gorm.DB) SequenceRepository {
	return &sequenceRepository{db: db}
}

// NextValue reserves the next sequence value for a scope/year pair.
// The upsert runs as a single statement so two concurrent callers can
// never receive the same value.
func (r *sequenceRepository) NextValue(ctx context.Context, scope string, year int) (int, error) {
	var value int
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO document_sequences (scope, year, value, created_at, updated_at)
		VALUES (?, ?, 1, NOW(), NOW())
		ON CONFLICT (scope, year)
		DO UPDATE SET value = document_sequences.value + 1, updated_at = NOW()
		RETURNING value`, scope, year).
		Scan(&value).Error
	if err != nil {
		return 0, err
	}
	return value, nil
}

func (r *sequenceRepository) NextDocumentNumber(ctx context.Context, scope string, year int) (string, error) {
	value, err := r.NextValue(ctx, scope, year)
	if err != nil {
		return "", err
	}
	return models.FormatDocumentNumber(scope, year, value), nil
}
