package service_test

import (
	"context"
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/auth"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/clock"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/domain"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/repository"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/service"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/storage"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/testutil"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/timer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// baseTime is well before any derived schedule used in the tests
var baseTime = time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)

type fixture struct {
	db            *gorm.DB
	clk           *clock.Fake
	quotations    *service.QuotationService
	jobs          *service.JobService
	jobRepo       *repository.JobRepository
	quotationRepo *repository.QuotationRepository
	timers        *timer.Registry
	storageDir    string
	company       *domain.Company
	owner         *domain.User
	employee      *domain.User
	customer      *domain.Customer
	ctx           context.Context
}

func newFixture(t *testing.T) *fixture {
	db := testutil.SetupTestDB(t)
	clk := clock.NewFake(baseTime)
	log := zap.NewNop()

	storageDir := t.TempDir()
	store, err := storage.NewLocalStorage(storageDir)
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	quotationRepo := repository.NewQuotationRepository(db)
	jobRepo := repository.NewJobRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	sequenceRepo := repository.NewNumberSequenceRepository(db)

	sequences := service.NewNumberSequenceService(sequenceRepo, log)
	notifications := service.NewNotificationService(notificationRepo, userRepo, log)
	timers := timer.NewRegistry()

	quotations := service.NewQuotationService(quotationRepo, customerRepo, jobRepo, sequences, notifications, store, clk, log)
	jobs := service.NewJobService(jobRepo, userRepo, notifications, timers, clk, 0, 0, log)

	company := testutil.CreateTestCompany(t, db, "Flytte AS")
	owner := testutil.CreateTestUser(t, db, company.ID, "owner@example.com", domain.UserRoleOwner)
	employee := testutil.CreateTestUser(t, db, company.ID, "crew@example.com", domain.UserRoleEmployee)
	customer := testutil.CreateTestCustomer(t, db, company.ID, "Kari Nordmann")

	return &fixture{
		db:            db,
		clk:           clk,
		quotations:    quotations,
		jobs:          jobs,
		jobRepo:       jobRepo,
		quotationRepo: quotationRepo,
		timers:        timers,
		storageDir:    storageDir,
		company:       company,
		owner:         owner,
		employee:      employee,
		customer:      customer,
		ctx:           auth.WithUserContext(context.Background(), testutil.UserContext(owner)),
	}
}

func strPtr(s string) *string { return &s }

// createDraft creates a complete DRAFT quotation ready to be sent.
// Scheduled start derives to 2025-06-01 09:00 UTC, end to 13:00.
func (f *fixture) createDraft(t *testing.T) *domain.QuotationDTO {
	hours := 4.0
	validity := 7
	dto, err := f.quotations.Create(f.ctx, &domain.CreateQuotationRequest{
		CustomerID:         f.customer.ID,
		MovingDate:         strPtr("2025-06-01"),
		StartTime:          "09:00",
		EstimatedHours:     &hours,
		OriginAddress:      "Storgata 1, Oslo",
		DestinationAddress: "Kirkegata 5, Bergen",
		BasePrice:          12000,
		ExtraServicesPrice: 1500,
		ValidityDays:       &validity,
	})
	require.NoError(t, err)
	return dto
}

func signaturePNG() string {
	return base64.StdEncoding.EncodeToString([]byte("fake png bytes"))
}

// storedSignatureCount counts the signature images on disk
func (f *fixture) storedSignatureCount(t *testing.T) int {
	entries, err := os.ReadDir(filepath.Join(f.storageDir, "signatures"))
	require.NoError(t, err)
	return len(entries)
}

func TestQuotationService_Create(t *testing.T) {
	f := newFixture(t)

	dto := f.createDraft(t)
	assert.Equal(t, domain.QuotationStatusDraft, dto.Status)
	assert.Equal(t, 1001, dto.QuoteNumber)
	assert.Equal(t, 13500.0, dto.TotalPrice)
	require.NotNil(t, dto.ScheduledStart)
	assert.Equal(t, "2025-06-01T09:00:00Z", *dto.ScheduledStart)
	require.NotNil(t, dto.ScheduledEnd)
	assert.Equal(t, "2025-06-01T13:00:00Z", *dto.ScheduledEnd)

	second := f.createDraft(t)
	assert.Equal(t, 1002, second.QuoteNumber)
}

func TestQuotationService_Send(t *testing.T) {
	f := newFixture(t)
	dto := f.createDraft(t)

	sent, err := f.quotations.Send(f.ctx, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuotationStatusSent, sent.Status)
	require.NotNil(t, sent.ExpiresAt)
	assert.Equal(t, domain.FormatInstant(baseTime.Add(7*24*time.Hour)), *sent.ExpiresAt)

	quotation, err := f.quotationRepo.GetByID(f.ctx, dto.ID)
	require.NoError(t, err)
	require.NotNil(t, quotation.PublicToken)
	assert.NotEmpty(t, *quotation.PublicToken)

	// The PENDING job exists with its own sequential number
	job, err := f.jobRepo.GetByQuotationID(f.ctx, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusPending, job.Status)
	assert.Equal(t, 1001, job.JobNumber)
	assert.True(t, quotation.ScheduledStart.Equal(job.ScheduledStart))
	assert.True(t, quotation.ScheduledEnd.Equal(job.ScheduledEnd))
}

func TestQuotationService_Send_Idempotent(t *testing.T) {
	f := newFixture(t)
	dto := f.createDraft(t)

	_, err := f.quotations.Send(f.ctx, dto.ID)
	require.NoError(t, err)

	first, err := f.quotationRepo.GetByID(f.ctx, dto.ID)
	require.NoError(t, err)

	// Re-sending neither errors nor mints a new token
	_, err = f.quotations.Send(f.ctx, dto.ID)
	require.NoError(t, err)

	second, err := f.quotationRepo.GetByID(f.ctx, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, *first.PublicToken, *second.PublicToken)
	assert.Equal(t, first.ExpiresAt.UTC(), second.ExpiresAt.UTC())

	var jobCount int64
	require.NoError(t, f.db.Model(&domain.Job{}).Where("quotation_id = ?", dto.ID).Count(&jobCount).Error)
	assert.Equal(t, int64(1), jobCount)
}

func TestQuotationService_Send_MissingSchedule(t *testing.T) {
	f := newFixture(t)

	dto, err := f.quotations.Create(f.ctx, &domain.CreateQuotationRequest{
		CustomerID: f.customer.ID,
		BasePrice:  5000,
	})
	require.NoError(t, err)

	_, err = f.quotations.Send(f.ctx, dto.ID)
	assert.ErrorIs(t, err, service.ErrMissingSchedule)
}

func TestQuotationService_SignByToken(t *testing.T) {
	f := newFixture(t)
	dto := f.createDraft(t)

	_, err := f.quotations.Send(f.ctx, dto.ID)
	require.NoError(t, err)
	quotation, err := f.quotationRepo.GetByID(f.ctx, dto.ID)
	require.NoError(t, err)
	token := *quotation.PublicToken

	signed, err := f.quotations.SignByToken(context.Background(), token, &domain.SignQuotationRequest{
		SignedBy:  "Kari Nordmann",
		Signature: signaturePNG(),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.QuotationStatusSigned, signed.Status)

	quotation, err = f.quotationRepo.GetByID(f.ctx, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kari Nordmann", quotation.SignedBy)
	assert.NotEmpty(t, quotation.SignaturePath)
	require.NotNil(t, quotation.SignedAt)

	// The stored image streams back through the service
	reader, err := f.quotations.DownloadSignature(f.ctx, dto.ID)
	require.NoError(t, err)
	image, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.NoError(t, reader.Close())
	assert.Equal(t, []byte("fake png bytes"), image)
	assert.Equal(t, 1, f.storedSignatureCount(t))

	// The owner was notified
	var count int64
	require.NoError(t, f.db.Model(&domain.Notification{}).
		Where("user_id = ? AND type = ?", f.owner.ID, domain.NotificationTypeQuoteSigned).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestQuotationService_SignByToken_InvalidSignature(t *testing.T) {
	f := newFixture(t)
	dto := f.createDraft(t)
	_, err := f.quotations.Send(f.ctx, dto.ID)
	require.NoError(t, err)
	quotation, err := f.quotationRepo.GetByID(f.ctx, dto.ID)
	require.NoError(t, err)

	_, err = f.quotations.SignByToken(context.Background(), *quotation.PublicToken, &domain.SignQuotationRequest{
		SignedBy:  "Kari Nordmann",
		Signature: "not base64 at all!!!",
	})
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestQuotationService_RejectByToken_CancelsPendingJob(t *testing.T) {
	f := newFixture(t)
	dto := f.createDraft(t)
	_, err := f.quotations.Send(f.ctx, dto.ID)
	require.NoError(t, err)
	quotation, err := f.quotationRepo.GetByID(f.ctx, dto.ID)
	require.NoError(t, err)

	rejected, err := f.quotations.RejectByToken(context.Background(), *quotation.PublicToken)
	require.NoError(t, err)
	assert.Equal(t, domain.QuotationStatusRejected, rejected.Status)

	job, err := f.jobRepo.GetByQuotationID(f.ctx, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusCancelled, job.Status)
}

func TestQuotationService_SignThenReject(t *testing.T) {
	f := newFixture(t)
	dto := f.createDraft(t)
	_, err := f.quotations.Send(f.ctx, dto.ID)
	require.NoError(t, err)
	quotation, err := f.quotationRepo.GetByID(f.ctx, dto.ID)
	require.NoError(t, err)
	token := *quotation.PublicToken

	_, err = f.quotations.SignByToken(context.Background(), token, &domain.SignQuotationRequest{
		SignedBy:  "Kari Nordmann",
		Signature: signaturePNG(),
	})
	require.NoError(t, err)

	// The losing side of sign vs reject observes the terminal state
	_, err = f.quotations.RejectByToken(context.Background(), token)
	assert.ErrorIs(t, err, service.ErrAlreadyResolved)

	_, err = f.quotations.SignByToken(context.Background(), token, &domain.SignQuotationRequest{
		SignedBy:  "Kari Nordmann",
		Signature: signaturePNG(),
	})
	assert.ErrorIs(t, err, service.ErrAlreadyResolved)
}

func TestQuotationService_SignPastExpiry(t *testing.T) {
	f := newFixture(t)
	dto := f.createDraft(t)
	_, err := f.quotations.Send(f.ctx, dto.ID)
	require.NoError(t, err)
	quotation, err := f.quotationRepo.GetByID(f.ctx, dto.ID)
	require.NoError(t, err)
	token := *quotation.PublicToken

	// Validity is 7 days
	f.clk.Advance(8 * 24 * time.Hour)

	_, err = f.quotations.SignByToken(context.Background(), token, &domain.SignQuotationRequest{
		SignedBy:  "Kari Nordmann",
		Signature: signaturePNG(),
	})
	assert.ErrorIs(t, err, service.ErrExpired)

	// The failed sign expired the quotation and cancelled its job
	quotation, err = f.quotationRepo.GetByID(f.ctx, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuotationStatusExpired, quotation.Status)

	job, err := f.jobRepo.GetByQuotationID(f.ctx, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusCancelled, job.Status)
}

func TestQuotationService_GetByToken_LazyExpiry(t *testing.T) {
	f := newFixture(t)
	dto := f.createDraft(t)
	_, err := f.quotations.Send(f.ctx, dto.ID)
	require.NoError(t, err)
	quotation, err := f.quotationRepo.GetByID(f.ctx, dto.ID)
	require.NoError(t, err)
	token := *quotation.PublicToken

	// Within the validity window the quote reads as SENT
	public, err := f.quotations.GetByToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, domain.QuotationStatusSent, public.Status)
	assert.Equal(t, "Flytte AS", public.CompanyName)
	assert.Equal(t, "Kari Nordmann", public.CustomerName)

	f.clk.Advance(8 * 24 * time.Hour)

	// Past the window the read itself expires the quote
	public, err = f.quotations.GetByToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, domain.QuotationStatusExpired, public.Status)
}

func TestQuotationService_GetByToken_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.quotations.GetByToken(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestQuotationService_ExpireDueQuotations(t *testing.T) {
	f := newFixture(t)

	first := f.createDraft(t)
	second := f.createDraft(t)
	_, err := f.quotations.Send(f.ctx, first.ID)
	require.NoError(t, err)
	_, err = f.quotations.Send(f.ctx, second.ID)
	require.NoError(t, err)

	// Nothing due yet
	expired, err := f.quotations.ExpireDueQuotations(context.Background(), f.clk.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, expired)

	f.clk.Advance(8 * 24 * time.Hour)

	expired, err = f.quotations.ExpireDueQuotations(context.Background(), f.clk.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, expired)

	quotation, err := f.quotationRepo.GetByID(f.ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuotationStatusExpired, quotation.Status)

	job, err := f.jobRepo.GetByQuotationID(f.ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusCancelled, job.Status)

	// A second sweep pass finds nothing left to expire
	expired, err = f.quotations.ExpireDueQuotations(context.Background(), f.clk.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, expired)
}

func TestQuotationService_Update_DraftOnly(t *testing.T) {
	f := newFixture(t)
	dto := f.createDraft(t)

	newBase := 15000.0
	updated, err := f.quotations.Update(f.ctx, dto.ID, &domain.UpdateQuotationRequest{
		BasePrice: &newBase,
	})
	require.NoError(t, err)
	assert.Equal(t, 16500.0, updated.TotalPrice)

	_, err = f.quotations.Send(f.ctx, dto.ID)
	require.NoError(t, err)

	_, err = f.quotations.Update(f.ctx, dto.ID, &domain.UpdateQuotationRequest{
		BasePrice: &newBase,
	})
	assert.ErrorIs(t, err, service.ErrInvalidState)
}
