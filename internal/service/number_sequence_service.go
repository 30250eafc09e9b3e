package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/domain"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/repository"
	"go.uber.org/zap"
)

// NumberSequenceService hands out quote and job numbers. Each company
// keeps an independent counter per kind, and the first issued value is
// 1001 so customer-facing documents never start at 1.
type NumberSequenceService struct {
	repo   *repository.NumberSequenceRepository
	logger *zap.Logger
}

// NewNumberSequenceService creates a new NumberSequenceService
func NewNumberSequenceService(
	repo *repository.NumberSequenceRepository,
	logger *zap.Logger,
) *NumberSequenceService {
	return &NumberSequenceService{
		repo:   repo,
		logger: logger,
	}
}

// NextQuoteNumber issues the next quote number for a company.
// Called when a quotation is created.
func (s *NumberSequenceService) NextQuoteNumber(ctx context.Context, companyID uuid.UUID) (int, error) {
	return s.nextNumber(ctx, companyID, domain.SequenceKindQuote)
}

// NextJobNumber issues the next job number for a company.
// Called when a sent quotation spawns its job.
func (s *NumberSequenceService) NextJobNumber(ctx context.Context, companyID uuid.UUID) (int, error) {
	return s.nextNumber(ctx, companyID, domain.SequenceKindJob)
}

func (s *NumberSequenceService) nextNumber(ctx context.Context, companyID uuid.UUID, kind domain.SequenceKind) (int, error) {
	number, err := s.repo.NextNumber(ctx, companyID, kind)
	if err != nil {
		s.logger.Error("failed to issue sequence number",
			zap.String("companyID", companyID.String()),
			zap.String("kind", string(kind)),
			zap.Error(err))
		return 0, fmt.Errorf("failed to issue %s number: %w", kind, err)
	}

	s.logger.Debug("issued sequence number",
		zap.Int("number", number),
		zap.String("companyID", companyID.String()),
		zap.String("kind", string(kind)))

	return number, nil
}

// CurrentNumber returns the last issued number for a company/kind without
// advancing it. Returns 0 if the sequence has never been used.
func (s *NumberSequenceService) CurrentNumber(ctx context.Context, companyID uuid.UUID, kind domain.SequenceKind) (int, error) {
	return s.repo.CurrentNumber(ctx, companyID, kind)
}
