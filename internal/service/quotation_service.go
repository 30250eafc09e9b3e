package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/auth"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/clock"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/domain"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/mapper"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/repository"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QuotationService handles quotation CRUD and the signing lifecycle.
// Lifecycle methods live in quotation_lifecycle_service.go.
type QuotationService struct {
	quotationRepo   *repository.QuotationRepository
	customerRepo    *repository.CustomerRepository
	jobRepo         *repository.JobRepository
	sequenceService *NumberSequenceService
	notifications   *NotificationService
	storage         storage.Storage
	clock           clock.Clock
	logger          *zap.Logger
}

func NewQuotationService(
	quotationRepo *repository.QuotationRepository,
	customerRepo *repository.CustomerRepository,
	jobRepo *repository.JobRepository,
	sequenceService *NumberSequenceService,
	notifications *NotificationService,
	store storage.Storage,
	clk clock.Clock,
	logger *zap.Logger,
) *QuotationService {
	return &QuotationService{
		quotationRepo:   quotationRepo,
		customerRepo:    customerRepo,
		jobRepo:         jobRepo,
		sequenceService: sequenceService,
		notifications:   notifications,
		storage:         store,
		clock:           clk,
		logger:          logger,
	}
}

// Create creates a DRAFT quotation. The quote number is issued immediately
// so the office can reference the quote before it is sent.
func (s *QuotationService) Create(ctx context.Context, req *domain.CreateQuotationRequest) (*domain.QuotationDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	// Customer must exist within the caller's company
	if _, err := s.customerRepo.GetByID(ctx, req.CustomerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: customer not found", ErrValidation)
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	quoteNumber, err := s.sequenceService.NextQuoteNumber(ctx, userCtx.CompanyID)
	if err != nil {
		return nil, err
	}

	quotation := &domain.Quotation{
		CompanyID:          userCtx.CompanyID,
		QuoteNumber:        quoteNumber,
		CustomerID:         req.CustomerID,
		Status:             domain.QuotationStatusDraft,
		StartTime:          req.StartTime,
		EstimatedHours:     req.EstimatedHours,
		OriginAddress:      req.OriginAddress,
		DestinationAddress: req.DestinationAddress,
		BasePrice:          req.BasePrice,
		ExtraServicesPrice: req.ExtraServicesPrice,
		TotalPrice:         req.BasePrice + req.ExtraServicesPrice,
		ValidityDays:       req.ValidityDays,
	}

	if req.MovingDate != nil {
		movingDate, err := time.Parse("2006-01-02", *req.MovingDate)
		if err != nil {
			return nil, fmt.Errorf("%w: bad moving date", ErrValidation)
		}
		quotation.MovingDate = &movingDate
	}

	start, end, err := domain.DeriveSchedule(quotation.MovingDate, quotation.StartTime, quotation.EstimatedHours)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	quotation.ScheduledStart = start
	quotation.ScheduledEnd = end

	if err := s.quotationRepo.Create(ctx, quotation); err != nil {
		return nil, fmt.Errorf("failed to create quotation: %w", err)
	}

	s.logger.Info("quotation created",
		zap.String("quotationID", quotation.ID.String()),
		zap.Int("quoteNumber", quotation.QuoteNumber),
		zap.String("companyID", userCtx.CompanyID.String()),
	)

	// Reload with relations
	quotation, err = s.quotationRepo.GetByID(ctx, quotation.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload quotation: %w", err)
	}

	dto := mapper.ToQuotationDTO(quotation)
	return &dto, nil
}

func (s *QuotationService) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuotationDTO, error) {
	quotation, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quotation: %w", err)
	}

	dto := mapper.ToQuotationDTO(quotation)
	return &dto, nil
}

// Update edits a DRAFT quotation. Quotes stop being editable once sent;
// the schedule and pricing a customer signs must match what was offered.
func (s *QuotationService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateQuotationRequest) (*domain.QuotationDTO, error) {
	quotation, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quotation: %w", err)
	}

	if quotation.Status != domain.QuotationStatusDraft {
		return nil, ErrInvalidState
	}

	if req.MovingDate != nil {
		movingDate, err := time.Parse("2006-01-02", *req.MovingDate)
		if err != nil {
			return nil, fmt.Errorf("%w: bad moving date", ErrValidation)
		}
		quotation.MovingDate = &movingDate
	}
	if req.StartTime != nil {
		quotation.StartTime = *req.StartTime
	}
	if req.EstimatedHours != nil {
		quotation.EstimatedHours = req.EstimatedHours
	}
	if req.OriginAddress != nil {
		quotation.OriginAddress = *req.OriginAddress
	}
	if req.DestinationAddress != nil {
		quotation.DestinationAddress = *req.DestinationAddress
	}
	if req.BasePrice != nil {
		quotation.BasePrice = *req.BasePrice
	}
	if req.ExtraServicesPrice != nil {
		quotation.ExtraServicesPrice = *req.ExtraServicesPrice
	}
	if req.ValidityDays != nil {
		quotation.ValidityDays = req.ValidityDays
	}
	quotation.TotalPrice = quotation.BasePrice + quotation.ExtraServicesPrice

	// Re-derive the schedule while still a draft
	start, end, err := domain.DeriveSchedule(quotation.MovingDate, quotation.StartTime, quotation.EstimatedHours)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	quotation.ScheduledStart = start
	quotation.ScheduledEnd = end

	if err := s.quotationRepo.Update(ctx, quotation); err != nil {
		return nil, fmt.Errorf("failed to update quotation: %w", err)
	}

	dto := mapper.ToQuotationDTO(quotation)
	return &dto, nil
}

func (s *QuotationService) List(ctx context.Context, page, pageSize int, status *domain.QuotationStatus, customerID *uuid.UUID) (*domain.PaginatedResponse, error) {
	if status != nil && !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *status)
	}

	quotations, total, err := s.quotationRepo.List(ctx, page, pageSize, status, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotations: %w", err)
	}

	page, pageSize = repository.NormalizePage(page, pageSize)

	dtos := make([]domain.QuotationDTO, len(quotations))
	for i := range quotations {
		dtos[i] = mapper.ToQuotationDTO(&quotations[i])
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}
