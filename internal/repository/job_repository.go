package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/domain"
	"gorm.io/gorm"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(ctx context.Context, job *domain.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	var job domain.Job
	query := r.db.WithContext(ctx).
		Preload("Quotation").
		Preload("Quotation.Customer").
		Preload("Crew").
		Preload("Crew.User").
		Where("id = ?", id)
	query = ApplyCompanyScope(ctx, query)
	if err := query.First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *JobRepository) GetByQuotationID(ctx context.Context, quotationID uuid.UUID) (*domain.Job, error) {
	var job domain.Job
	err := r.db.WithContext(ctx).
		Where("quotation_id = ?", quotationID).
		First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// UpdateStatusIf performs the conditional status transition: fields are
// applied only when the row still holds the expected status. Returns false
// when a concurrent writer already moved the job (zero rows affected).
func (r *JobRepository) UpdateStatusIf(ctx context.Context, id uuid.UUID, expected domain.JobStatus, updates map[string]interface{}) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Job{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *JobRepository) List(ctx context.Context, page, pageSize int, status *domain.JobStatus) ([]domain.Job, int64, error) {
	var jobs []domain.Job
	var total int64

	page, pageSize = NormalizePage(page, pageSize)

	query := r.db.WithContext(ctx).Model(&domain.Job{}).
		Preload("Quotation").
		Preload("Quotation.Customer").
		Preload("Crew").
		Preload("Crew.User")
	query = ApplyCompanyScope(ctx, query)

	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("scheduled_start ASC").Find(&jobs).Error

	return jobs, total, err
}

// ListByCrewMember returns jobs the given employee is assigned to
func (r *JobRepository) ListByCrewMember(ctx context.Context, userID uuid.UUID, status *domain.JobStatus) ([]domain.Job, error) {
	var jobs []domain.Job

	query := r.db.WithContext(ctx).Model(&domain.Job{}).
		Joins("JOIN job_crew ON job_crew.job_id = jobs.id").
		Where("job_crew.user_id = ?", userID).
		Preload("Quotation").
		Preload("Quotation.Customer").
		Preload("Crew").
		Preload("Crew.User")
	query = ApplyCompanyScopeWithAlias(ctx, query, "jobs")

	if status != nil {
		query = query.Where("jobs.status = ?", *status)
	}

	err := query.Order("jobs.scheduled_start ASC").Find(&jobs).Error
	return jobs, err
}

// ListOverdueConfirmed returns CONFIRMED jobs whose scheduled end has
// passed without a start. Sweep query, no company scope.
func (r *JobRepository) ListOverdueConfirmed(ctx context.Context, now time.Time) ([]domain.Job, error) {
	var jobs []domain.Job
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_end < ?", domain.JobStatusConfirmed, now).
		Find(&jobs).Error
	return jobs, err
}

// ListOverdueInProgress returns IN_PROGRESS jobs whose scheduled end plus
// grace has passed without being ended. Sweep query, no company scope.
func (r *JobRepository) ListOverdueInProgress(ctx context.Context, now time.Time, grace time.Duration) ([]domain.Job, error) {
	var jobs []domain.Job
	deadline := now.Add(-grace)
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_end < ?", domain.JobStatusInProgress, deadline).
		Find(&jobs).Error
	return jobs, err
}

// ReplaceCrew swaps the job's crew assignments in one transaction
func (r *JobRepository) ReplaceCrew(ctx context.Context, jobID uuid.UUID, crew []domain.JobCrew) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_id = ?", jobID).Delete(&domain.JobCrew{}).Error; err != nil {
			return err
		}
		if len(crew) == 0 {
			return nil
		}
		return tx.Create(&crew).Error
	})
}
