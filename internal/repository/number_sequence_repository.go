package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// firstSequenceNumber is the first number handed out for a fresh
// company/kind sequence. Quote and job numbers start at 1001 so they
// never look like row counts in customer-facing documents.
const firstSequenceNumber = 1001

// NumberSequenceRepository hands out quote and job numbers. Each
// company keeps an independent counter per kind.
type NumberSequenceRepository struct {
	db *gorm.DB
}

func NewNumberSequenceRepository(db *gorm.DB) *NumberSequenceRepository {
	return &NumberSequenceRepository{db: db}
}

// NextNumber atomically advances and returns the next number for a
// company/kind. The row is locked with SELECT FOR UPDATE so concurrent
// callers never receive the same number. A missing sequence is created
// on first use.
func (r *NumberSequenceRepository) NextNumber(ctx context.Context, companyID uuid.UUID, kind domain.SequenceKind) (int, error) {
	var next int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq domain.NumberSequence
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("company_id = ? AND kind = ?", companyID, kind).
			First(&seq)

		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			seq = domain.NumberSequence{
				CompanyID:  companyID,
				Kind:       kind,
				LastNumber: firstSequenceNumber,
			}
			if err := tx.Create(&seq).Error; err != nil {
				return fmt.Errorf("failed to create number sequence: %w", err)
			}
			next = firstSequenceNumber
			return nil
		}
		if result.Error != nil {
			return fmt.Errorf("failed to get number sequence: %w", result.Error)
		}

		next = seq.LastNumber + 1
		if err := tx.Model(&seq).Update("last_number", next).Error; err != nil {
			return fmt.Errorf("failed to update number sequence: %w", err)
		}
		return nil
	})

	if err != nil {
		return 0, err
	}
	return next, nil
}

// CurrentNumber returns the last issued number without advancing.
// Returns 0 when the sequence has never been used.
func (r *NumberSequenceRepository) CurrentNumber(ctx context.Context, companyID uuid.UUID, kind domain.SequenceKind) (int, error) {
	var seq domain.NumberSequence
	result := r.db.WithContext(ctx).
		Where("company_id = ? AND kind = ?", companyID, kind).
		First(&seq)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if result.Error != nil {
		return 0, fmt.Errorf("failed to get number sequence: %w", result.Error)
	}
	return seq.LastNumber, nil
}
