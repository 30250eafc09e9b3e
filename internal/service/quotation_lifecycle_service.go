package service

// Signing lifecycle methods for quotations: send, sign, reject and
// expiry. Status changes go through conditional updates so concurrent
// callers resolve deterministically, exactly one writer wins.

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/domain"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/mapper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Send transitions a DRAFT quotation to SENT: mints the public signing
// token, stamps the expiry from the validity window, and creates the
// PENDING job. Sending an already SENT quotation is a no-op success so
// retried requests never mint a second token.
func (s *QuotationService) Send(ctx context.Context, id uuid.UUID) (*domain.QuotationDTO, error) {
	quotation, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quotation: %w", err)
	}

	// Idempotent re-send
	if quotation.Status == domain.QuotationStatusSent {
		dto := mapper.ToQuotationDTO(quotation)
		return &dto, nil
	}

	if quotation.Status != domain.QuotationStatusDraft {
		return nil, ErrInvalidState
	}

	if quotation.ValidityDays == nil || quotation.ScheduledStart == nil || quotation.ScheduledEnd == nil {
		return nil, ErrMissingSchedule
	}

	now := s.clock.Now()
	token := uuid.NewString()
	expiresAt := now.Add(time.Duration(*quotation.ValidityDays) * 24 * time.Hour)

	won, err := s.quotationRepo.UpdateStatusIf(ctx, id, domain.QuotationStatusDraft, map[string]interface{}{
		"status":       domain.QuotationStatusSent,
		"public_token": token,
		"expires_at":   expiresAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send quotation: %w", err)
	}
	if !won {
		// A concurrent send may have won; treat that as success too
		quotation, err = s.quotationRepo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to reload quotation: %w", err)
		}
		if quotation.Status != domain.QuotationStatusSent {
			return nil, ErrInvalidState
		}
	}

	if _, err := s.ensureJob(ctx, id); err != nil {
		return nil, err
	}

	// Reload with relations
	quotation, err = s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload quotation: %w", err)
	}

	s.logger.Info("quotation sent",
		zap.String("quotationID", id.String()),
		zap.Int("quoteNumber", quotation.QuoteNumber),
		zap.Time("expiresAt", expiresAt),
	)

	dto := mapper.ToQuotationDTO(quotation)
	return &dto, nil
}

// ensureJob creates the quotation's PENDING job if it does not exist yet.
// The unique index on quotation_id guards the concurrent-send race.
func (s *QuotationService) ensureJob(ctx context.Context, quotationID uuid.UUID) (*domain.Job, error) {
	job, err := s.jobRepo.GetByQuotationID(ctx, quotationID)
	if err == nil {
		return job, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up job: %w", err)
	}

	quotation, err := s.quotationRepo.GetByID(ctx, quotationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quotation: %w", err)
	}

	jobNumber, err := s.sequenceService.NextJobNumber(ctx, quotation.CompanyID)
	if err != nil {
		return nil, err
	}

	job = &domain.Job{
		CompanyID:      quotation.CompanyID,
		JobNumber:      jobNumber,
		QuotationID:    quotation.ID,
		Status:         domain.JobStatusPending,
		ScheduledStart: *quotation.ScheduledStart,
		ScheduledEnd:   *quotation.ScheduledEnd,
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		// A concurrent send may have created it first
		if existing, lookupErr := s.jobRepo.GetByQuotationID(ctx, quotationID); lookupErr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	s.logger.Info("job created for quotation",
		zap.String("jobID", job.ID.String()),
		zap.Int("jobNumber", job.JobNumber),
		zap.String("quotationID", quotationID.String()),
	)

	return job, nil
}

// GetByToken serves the public signing page. A quotation whose validity
// window has lapsed is expired lazily on read so the customer never sees
// a signable quote that the sweep has not caught up with yet.
func (s *QuotationService) GetByToken(ctx context.Context, token string) (*domain.PublicQuotationDTO, error) {
	quotation, err := s.quotationRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quotation: %w", err)
	}

	if s.isPastExpiry(quotation) {
		s.expireQuotation(ctx, quotation)
		quotation, err = s.quotationRepo.GetByToken(ctx, token)
		if err != nil {
			return nil, fmt.Errorf("failed to reload quotation: %w", err)
		}
	}

	dto := mapper.ToPublicQuotationDTO(quotation)
	return &dto, nil
}

// SignByToken records the customer's signature on a SENT quotation.
// Exactly one of sign/reject wins; the loser observes the terminal state.
func (s *QuotationService) SignByToken(ctx context.Context, token string, req *domain.SignQuotationRequest) (*domain.PublicQuotationDTO, error) {
	quotation, err := s.quotationRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quotation: %w", err)
	}

	if err := s.checkSignable(ctx, quotation); err != nil {
		return nil, err
	}

	signaturePath, err := s.storeSignature(ctx, quotation, req.Signature)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	won, err := s.quotationRepo.UpdateStatusIf(ctx, quotation.ID, domain.QuotationStatusSent, map[string]interface{}{
		"status":         domain.QuotationStatusSigned,
		"signed_by":      req.SignedBy,
		"signed_at":      now,
		"signature_path": signaturePath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign quotation: %w", err)
	}
	if !won {
		// The stored image has no owner once another resolution wins
		if err := s.storage.Delete(ctx, signaturePath); err != nil {
			s.logger.Warn("failed to remove orphaned signature",
				zap.String("quotationID", quotation.ID.String()),
				zap.String("signaturePath", signaturePath),
				zap.Error(err))
		}
		return nil, s.resolveLostRace(ctx, token)
	}

	s.logger.Info("quotation signed",
		zap.String("quotationID", quotation.ID.String()),
		zap.Int("quoteNumber", quotation.QuoteNumber),
		zap.String("signedBy", req.SignedBy),
	)

	s.notifications.NotifyOwners(ctx, quotation.CompanyID, domain.NotificationTypeQuoteSigned,
		"Quote signed",
		fmt.Sprintf("Quote #%d was signed by %s", quotation.QuoteNumber, req.SignedBy),
		nil, &quotation.ID)

	quotation, err = s.quotationRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to reload quotation: %w", err)
	}

	dto := mapper.ToPublicQuotationDTO(quotation)
	return &dto, nil
}

// RejectByToken records the customer's rejection of a SENT quotation
// and cancels the pending job.
func (s *QuotationService) RejectByToken(ctx context.Context, token string) (*domain.PublicQuotationDTO, error) {
	quotation, err := s.quotationRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quotation: %w", err)
	}

	if err := s.checkSignable(ctx, quotation); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	won, err := s.quotationRepo.UpdateStatusIf(ctx, quotation.ID, domain.QuotationStatusSent, map[string]interface{}{
		"status":      domain.QuotationStatusRejected,
		"rejected_at": now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reject quotation: %w", err)
	}
	if !won {
		return nil, s.resolveLostRace(ctx, token)
	}

	s.cancelPendingJob(ctx, quotation.ID)

	s.logger.Info("quotation rejected",
		zap.String("quotationID", quotation.ID.String()),
		zap.Int("quoteNumber", quotation.QuoteNumber),
	)

	s.notifications.NotifyOwners(ctx, quotation.CompanyID, domain.NotificationTypeQuoteRejected,
		"Quote rejected",
		fmt.Sprintf("Quote #%d was rejected by the customer", quotation.QuoteNumber),
		nil, &quotation.ID)

	quotation, err = s.quotationRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to reload quotation: %w", err)
	}

	dto := mapper.ToPublicQuotationDTO(quotation)
	return &dto, nil
}

// checkSignable validates that a sign/reject may proceed. A lapsed
// validity window expires the quotation before reporting ErrExpired.
func (s *QuotationService) checkSignable(ctx context.Context, quotation *domain.Quotation) error {
	switch quotation.Status {
	case domain.QuotationStatusSigned, domain.QuotationStatusRejected:
		return ErrAlreadyResolved
	case domain.QuotationStatusExpired:
		return ErrExpired
	case domain.QuotationStatusSent:
		if s.isPastExpiry(quotation) {
			s.expireQuotation(ctx, quotation)
			return ErrExpired
		}
		return nil
	default:
		return ErrInvalidState
	}
}

// resolveLostRace maps a lost conditional update to the error matching
// the state the winner left behind.
func (s *QuotationService) resolveLostRace(ctx context.Context, token string) error {
	quotation, err := s.quotationRepo.GetByToken(ctx, token)
	if err != nil {
		return ErrAlreadyResolved
	}
	if quotation.Status == domain.QuotationStatusExpired {
		return ErrExpired
	}
	return ErrAlreadyResolved
}

func (s *QuotationService) isPastExpiry(quotation *domain.Quotation) bool {
	return quotation.Status == domain.QuotationStatusSent &&
		quotation.ExpiresAt != nil &&
		!s.clock.Now().Before(*quotation.ExpiresAt)
}

// expireQuotation moves a SENT quotation to EXPIRED and cancels its
// pending job. Loses silently when another writer got there first.
func (s *QuotationService) expireQuotation(ctx context.Context, quotation *domain.Quotation) {
	won, err := s.quotationRepo.UpdateStatusIf(ctx, quotation.ID, domain.QuotationStatusSent, map[string]interface{}{
		"status": domain.QuotationStatusExpired,
	})
	if err != nil {
		s.logger.Error("failed to expire quotation",
			zap.String("quotationID", quotation.ID.String()),
			zap.Error(err))
		return
	}
	if !won {
		return
	}

	s.cancelPendingJob(ctx, quotation.ID)

	s.logger.Info("quotation expired",
		zap.String("quotationID", quotation.ID.String()),
		zap.Int("quoteNumber", quotation.QuoteNumber),
	)

	s.notifications.NotifyOwners(ctx, quotation.CompanyID, domain.NotificationTypeQuoteExpired,
		"Quote expired",
		fmt.Sprintf("Quote #%d expired without a signature", quotation.QuoteNumber),
		nil, &quotation.ID)
}

// ExpireDueQuotations expires every SENT quotation whose validity window
// has passed. Called by the sweep; failures on one quotation never block
// the rest. Returns the number of quotations expired.
func (s *QuotationService) ExpireDueQuotations(ctx context.Context, now time.Time) (int, error) {
	quotations, err := s.quotationRepo.ListExpiredSent(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list expired quotations: %w", err)
	}

	expired := 0
	for i := range quotations {
		s.expireQuotation(ctx, &quotations[i])
		expired++
	}
	return expired, nil
}

// cancelPendingJob cancels the quotation's job if it is still PENDING.
// A job the owner already confirmed stays untouched.
func (s *QuotationService) cancelPendingJob(ctx context.Context, quotationID uuid.UUID) {
	job, err := s.jobRepo.GetByQuotationID(ctx, quotationID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("failed to look up job for cancellation",
				zap.String("quotationID", quotationID.String()),
				zap.Error(err))
		}
		return
	}

	won, err := s.jobRepo.UpdateStatusIf(ctx, job.ID, domain.JobStatusPending, map[string]interface{}{
		"status": domain.JobStatusCancelled,
	})
	if err != nil {
		s.logger.Warn("failed to cancel job",
			zap.String("jobID", job.ID.String()),
			zap.Error(err))
		return
	}
	if won {
		s.logger.Info("job cancelled",
			zap.String("jobID", job.ID.String()),
			zap.Int("jobNumber", job.JobNumber),
		)
	}
}

// storeSignature decodes and persists the base64 signature image,
// returning the storage path. Data URL prefixes are tolerated.
func (s *QuotationService) storeSignature(ctx context.Context, quotation *domain.Quotation, signature string) (string, error) {
	encoded := signature
	if _, after, found := strings.Cut(encoded, ","); found && strings.HasPrefix(encoded, "data:") {
		encoded = after
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: signature is not valid base64", ErrValidation)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: signature is empty", ErrValidation)
	}

	filename := fmt.Sprintf("signature-%d.png", quotation.QuoteNumber)
	path, err := s.storage.Save(ctx, filename, data)
	if err != nil {
		return "", fmt.Errorf("failed to store signature: %w", err)
	}
	return path, nil
}

// DownloadSignature streams the stored signature image for a quotation
func (s *QuotationService) DownloadSignature(ctx context.Context, id uuid.UUID) (io.ReadCloser, error) {
	quotation, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quotation: %w", err)
	}

	if quotation.SignaturePath == "" {
		return nil, ErrNotFound
	}

	reader, err := s.storage.Open(ctx, quotation.SignaturePath)
	if err != nil {
		return nil, fmt.Errorf("failed to download signature: %w", err)
	}
	return reader, nil
}
