package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/domain"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scheduledStart matches the schedule derived by createDraft
var (
	scheduledStart = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	scheduledEnd   = time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)
)

// createSentJob sends a fresh quotation and returns its PENDING job
// together with the public signing token.
func (f *fixture) createSentJob(t *testing.T) (*domain.Job, string) {
	dto := f.createDraft(t)
	_, err := f.quotations.Send(f.ctx, dto.ID)
	require.NoError(t, err)

	quotation, err := f.quotationRepo.GetByID(f.ctx, dto.ID)
	require.NoError(t, err)
	job, err := f.jobRepo.GetByQuotationID(f.ctx, dto.ID)
	require.NoError(t, err)
	return job, *quotation.PublicToken
}

func (f *fixture) createSignedJob(t *testing.T) *domain.Job {
	job, token := f.createSentJob(t)
	_, err := f.quotations.SignByToken(context.Background(), token, &domain.SignQuotationRequest{
		SignedBy:  "Kari Nordmann",
		Signature: signaturePNG(),
	})
	require.NoError(t, err)
	return job
}

func (f *fixture) createConfirmedJob(t *testing.T) *domain.Job {
	job := f.createSignedJob(t)
	_, err := f.jobs.Confirm(f.ctx, job.ID)
	require.NoError(t, err)
	return job
}

// createStartedJob confirms a job and starts it right at its scheduled start
func (f *fixture) createStartedJob(t *testing.T) *domain.Job {
	job := f.createConfirmedJob(t)
	f.clk.Set(scheduledStart)
	_, err := f.jobs.Start(f.ctx, job.ID)
	require.NoError(t, err)
	return job
}

func TestJobService_Confirm_RequiresSignedQuotation(t *testing.T) {
	f := newFixture(t)
	job, _ := f.createSentJob(t)

	_, err := f.jobs.Confirm(f.ctx, job.ID)
	assert.ErrorIs(t, err, service.ErrInvalidState)
}

func TestJobService_Confirm(t *testing.T) {
	f := newFixture(t)
	job := f.createSignedJob(t)

	// Crew assigned before confirmation gets notified
	_, err := f.jobs.AssignCrew(f.ctx, job.ID, &domain.AssignCrewRequest{
		Crew: []domain.CrewAssignment{{UserID: f.employee.ID, Role: domain.CrewRoleLead}},
	})
	require.NoError(t, err)

	dto, err := f.jobs.Confirm(f.ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusConfirmed, dto.Status)

	var count int64
	require.NoError(t, f.db.Model(&domain.Notification{}).
		Where("user_id = ? AND type = ?", f.employee.ID, domain.NotificationTypeJobConfirmed).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// Confirming twice fails on the state check
	_, err = f.jobs.Confirm(f.ctx, job.ID)
	assert.ErrorIs(t, err, service.ErrInvalidState)
}

func TestJobService_Deny(t *testing.T) {
	f := newFixture(t)
	job, _ := f.createSentJob(t)

	dto, err := f.jobs.Deny(f.ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusCancelled, dto.Status)

	_, err = f.jobs.Deny(f.ctx, job.ID)
	assert.ErrorIs(t, err, service.ErrInvalidState)
}

func TestJobService_Start_TooEarly(t *testing.T) {
	f := newFixture(t)
	job := f.createConfirmedJob(t)

	// One second before the window opens at 08:45
	f.clk.Set(scheduledStart.Add(-15*time.Minute - time.Second))
	_, err := f.jobs.Start(f.ctx, job.ID)
	assert.ErrorIs(t, err, service.ErrNotYetStartable)

	record, err := f.jobRepo.GetByID(f.ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusConfirmed, record.Status)
	assert.Nil(t, record.ActualStart)
}

func TestJobService_Start_WithinWindow(t *testing.T) {
	f := newFixture(t)
	job := f.createConfirmedJob(t)

	startAt := scheduledStart.Add(-15 * time.Minute)
	f.clk.Set(startAt)

	dto, err := f.jobs.Start(f.ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusInProgress, dto.Status)

	record, err := f.jobRepo.GetByID(f.ctx, job.ID)
	require.NoError(t, err)
	require.NotNil(t, record.ActualStart)
	assert.True(t, record.ActualStart.Equal(startAt))

	_, ok := f.timers.Get(job.ID)
	assert.True(t, ok)
}

func TestJobService_Start_WindowLapsed(t *testing.T) {
	f := newFixture(t)
	job := f.createConfirmedJob(t)

	f.clk.Set(scheduledStart.Add(60*time.Minute + time.Second))
	_, err := f.jobs.Start(f.ctx, job.ID)
	assert.ErrorIs(t, err, service.ErrWindowLapsed)
}

func TestJobService_Start_RequiresConfirmed(t *testing.T) {
	f := newFixture(t)
	job, _ := f.createSentJob(t)

	f.clk.Set(scheduledStart)
	_, err := f.jobs.Start(f.ctx, job.ID)
	assert.ErrorIs(t, err, service.ErrInvalidState)
}

func TestJobService_End(t *testing.T) {
	f := newFixture(t)
	job := f.createStartedJob(t)

	endAt := scheduledStart.Add(3 * time.Hour)
	f.clk.Set(endAt)

	dto, err := f.jobs.End(f.ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusCompleted, dto.Status)

	record, err := f.jobRepo.GetByID(f.ctx, job.ID)
	require.NoError(t, err)
	require.NotNil(t, record.ActualEnd)
	assert.True(t, record.ActualEnd.Equal(endAt))

	_, ok := f.timers.Get(job.ID)
	assert.False(t, ok)
}

func TestJobService_End_Idempotent(t *testing.T) {
	f := newFixture(t)
	job := f.createStartedJob(t)

	endAt := scheduledStart.Add(3 * time.Hour)
	f.clk.Set(endAt)
	_, err := f.jobs.End(f.ctx, job.ID)
	require.NoError(t, err)

	// A later re-end neither errors nor moves the end time
	f.clk.Advance(time.Hour)
	dto, err := f.jobs.End(f.ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusCompleted, dto.Status)

	record, err := f.jobRepo.GetByID(f.ctx, job.ID)
	require.NoError(t, err)
	assert.True(t, record.ActualEnd.Equal(endAt))
}

func TestJobService_End_RequiresInProgress(t *testing.T) {
	f := newFixture(t)
	job, _ := f.createSentJob(t)

	_, err := f.jobs.End(f.ctx, job.ID)
	assert.ErrorIs(t, err, service.ErrInvalidState)
}

func TestJobService_AssignCrew(t *testing.T) {
	f := newFixture(t)
	job, _ := f.createSentJob(t)

	dto, err := f.jobs.AssignCrew(f.ctx, job.ID, &domain.AssignCrewRequest{
		Crew: []domain.CrewAssignment{{UserID: f.employee.ID, Role: domain.CrewRoleDriver}},
	})
	require.NoError(t, err)
	require.Len(t, dto.Crew, 1)
	assert.Equal(t, f.employee.ID, dto.Crew[0].UserID)
	assert.Equal(t, domain.CrewRoleDriver, dto.Crew[0].Role)

	// Reassignment replaces, not appends
	dto, err = f.jobs.AssignCrew(f.ctx, job.ID, &domain.AssignCrewRequest{
		Crew: []domain.CrewAssignment{{UserID: f.employee.ID, Role: domain.CrewRoleLead}},
	})
	require.NoError(t, err)
	require.Len(t, dto.Crew, 1)
	assert.Equal(t, domain.CrewRoleLead, dto.Crew[0].Role)
}

func TestJobService_AssignCrew_Duplicate(t *testing.T) {
	f := newFixture(t)
	job, _ := f.createSentJob(t)

	_, err := f.jobs.AssignCrew(f.ctx, job.ID, &domain.AssignCrewRequest{
		Crew: []domain.CrewAssignment{
			{UserID: f.employee.ID, Role: domain.CrewRoleLead},
			{UserID: f.employee.ID, Role: domain.CrewRoleMover},
		},
	})
	assert.ErrorIs(t, err, service.ErrDuplicateCrewMember)
}

func TestJobService_AssignCrew_Unavailable(t *testing.T) {
	f := newFixture(t)
	job, _ := f.createSentJob(t)

	require.NoError(t, f.db.Model(&domain.User{}).
		Where("id = ?", f.employee.ID).
		Update("is_available", false).Error)

	_, err := f.jobs.AssignCrew(f.ctx, job.ID, &domain.AssignCrewRequest{
		Crew: []domain.CrewAssignment{{UserID: f.employee.ID, Role: domain.CrewRoleMover}},
	})
	assert.ErrorIs(t, err, service.ErrEmployeeUnavailable)
}

func TestJobService_AssignCrew_UnknownRole(t *testing.T) {
	f := newFixture(t)
	job, _ := f.createSentJob(t)

	_, err := f.jobs.AssignCrew(f.ctx, job.ID, &domain.AssignCrewRequest{
		Crew: []domain.CrewAssignment{{UserID: f.employee.ID, Role: domain.CrewRole("FOREMAN")}},
	})
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestJobService_AssignCrew_AfterStart(t *testing.T) {
	f := newFixture(t)
	job := f.createStartedJob(t)

	_, err := f.jobs.AssignCrew(f.ctx, job.ID, &domain.AssignCrewRequest{
		Crew: []domain.CrewAssignment{{UserID: f.employee.ID, Role: domain.CrewRoleMover}},
	})
	assert.ErrorIs(t, err, service.ErrInvalidState)
}

func TestJobService_TimerReading(t *testing.T) {
	f := newFixture(t)
	job := f.createStartedJob(t)

	f.clk.Advance(time.Hour)
	reading, err := f.jobs.TimerReading(f.ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3600), reading.ElapsedSeconds)
	assert.Equal(t, int64(10800), reading.RemainingSeconds)
	assert.Equal(t, int64(14400), reading.TotalSeconds)
	assert.False(t, reading.Overrun)

	// Past the allotted four hours the reading goes negative
	f.clk.Set(scheduledStart.Add(4*time.Hour + 30*time.Minute))
	reading, err = f.jobs.TimerReading(f.ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(-1800), reading.RemainingSeconds)
	assert.True(t, reading.Overrun)
}

func TestJobService_TimerReading_SurvivesDetach(t *testing.T) {
	f := newFixture(t)
	job := f.createStartedJob(t)

	// Simulates a restart losing the in-memory session
	f.timers.Detach(job.ID)

	f.clk.Set(scheduledStart.Add(2 * time.Hour))
	reading, err := f.jobs.TimerReading(f.ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7200), reading.ElapsedSeconds)
}

func TestJobService_TimerReading_RequiresInProgress(t *testing.T) {
	f := newFixture(t)
	job := f.createConfirmedJob(t)

	_, err := f.jobs.TimerReading(f.ctx, job.ID)
	assert.ErrorIs(t, err, service.ErrInvalidState)
}

func TestJobService_MarkMissedJobs(t *testing.T) {
	f := newFixture(t)
	job := f.createConfirmedJob(t)

	// Still inside the scheduled window: nothing to do
	missed, err := f.jobs.MarkMissedJobs(context.Background(), scheduledEnd)
	require.NoError(t, err)
	assert.Equal(t, 0, missed)

	sweepAt := scheduledEnd.Add(time.Minute)
	missed, err = f.jobs.MarkMissedJobs(context.Background(), sweepAt)
	require.NoError(t, err)
	assert.Equal(t, 1, missed)

	record, err := f.jobRepo.GetByID(f.ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusMissed, record.Status)
	assert.Nil(t, record.ActualStart)

	// Forced transitions stamp the actual end at the sweep instant
	require.NotNil(t, record.ActualEnd)
	assert.True(t, record.ActualEnd.Equal(sweepAt))

	// Owners hear about it
	var count int64
	require.NoError(t, f.db.Model(&domain.Notification{}).
		Where("user_id = ? AND type = ?", f.owner.ID, domain.NotificationTypeJobMissed).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)

	missed, err = f.jobs.MarkMissedJobs(context.Background(), scheduledEnd.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, missed)
}

func TestJobService_AutoEndOverdueJobs(t *testing.T) {
	f := newFixture(t)
	job := f.createStartedJob(t)
	grace := 30 * time.Minute

	// Within the grace period the job keeps running
	ended, err := f.jobs.AutoEndOverdueJobs(context.Background(), scheduledEnd.Add(20*time.Minute), grace)
	require.NoError(t, err)
	assert.Equal(t, 0, ended)

	sweepAt := scheduledEnd.Add(31 * time.Minute)
	ended, err = f.jobs.AutoEndOverdueJobs(context.Background(), sweepAt, grace)
	require.NoError(t, err)
	assert.Equal(t, 1, ended)

	record, err := f.jobRepo.GetByID(f.ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusAutoEnded, record.Status)
	require.NotNil(t, record.ActualEnd)
	assert.True(t, record.ActualEnd.Equal(sweepAt))

	_, ok := f.timers.Get(job.ID)
	assert.False(t, ok)
}

func TestJobService_GetByID_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.jobs.GetByID(f.ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestJobService_List_FiltersByStatus(t *testing.T) {
	f := newFixture(t)
	f.createSentJob(t)
	f.createConfirmedJob(t)

	pending := domain.JobStatusPending
	page, err := f.jobs.List(f.ctx, 1, 20, &pending)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	page, err = f.jobs.List(f.ctx, 1, 20, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	bogus := domain.JobStatus("RUNNING")
	_, err = f.jobs.List(f.ctx, 1, 20, &bogus)
	assert.ErrorIs(t, err, service.ErrValidation)
}
