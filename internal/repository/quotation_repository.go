package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/domain"
	"gorm.io/gorm"
)

type QuotationRepository struct {
	db *gorm.DB
}

func NewQuotationRepository(db *gorm.DB) *QuotationRepository {
	return &QuotationRepository{db: db}
}

func (r *QuotationRepository) Create(ctx context.Context, quotation *domain.Quotation) error {
	return r.db.WithContext(ctx).Create(quotation).Error
}

func (r *QuotationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quotation, error) {
	var quotation domain.Quotation
	query := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Company").
		Preload("Job").
		Where("id = ?", id)
	query = ApplyCompanyScope(ctx, query)
	if err := query.First(&quotation).Error; err != nil {
		return nil, err
	}
	return &quotation, nil
}

// GetByToken looks a quotation up by its public signing token. Token lookups
// come from the unauthenticated signing page, so no company scope applies.
func (r *QuotationRepository) GetByToken(ctx context.Context, token string) (*domain.Quotation, error) {
	var quotation domain.Quotation
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Company").
		Preload("Job").
		Where("public_token = ?", token).
		First(&quotation).Error
	if err != nil {
		return nil, err
	}
	return &quotation, nil
}

func (r *QuotationRepository) Update(ctx context.Context, quotation *domain.Quotation) error {
	return r.db.WithContext(ctx).Save(quotation).Error
}

// UpdateStatusIf performs the conditional status transition: fields are
// applied only when the row still holds the expected status. Returns false
// when another writer won the race (zero rows affected).
func (r *QuotationRepository) UpdateStatusIf(ctx context.Context, id uuid.UUID, expected domain.QuotationStatus, updates map[string]interface{}) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Quotation{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *QuotationRepository) List(ctx context.Context, page, pageSize int, status *domain.QuotationStatus, customerID *uuid.UUID) ([]domain.Quotation, int64, error) {
	var quotations []domain.Quotation
	var total int64

	page, pageSize = NormalizePage(page, pageSize)

	query := r.db.WithContext(ctx).Model(&domain.Quotation{}).Preload("Customer")
	query = ApplyCompanyScope(ctx, query)

	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if customerID != nil {
		query = query.Where("customer_id = ?", *customerID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&quotations).Error

	return quotations, total, err
}

// ListExpiredSent returns SENT quotations whose validity window has passed.
// Used by the auto-resolution sweep, which runs without a user context.
func (r *QuotationRepository) ListExpiredSent(ctx context.Context, now time.Time) ([]domain.Quotation, error) {
	var quotations []domain.Quotation
	err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?", domain.QuotationStatusSent, now).
		Find(&quotations).Error
	return quotations, err
}
