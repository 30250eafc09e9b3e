package service

// Execution lifecycle methods for jobs: confirm, deny, start, end and
// the forced transitions applied by the sweep. All status changes go
// through conditional updates keyed on the expected status, so two
// concurrent transitions on the same job resolve to exactly one winner.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/domain"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/mapper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Confirm accepts a PENDING job onto the schedule. Only jobs whose
// quotation the customer has signed can be confirmed.
func (s *JobService) Confirm(ctx context.Context, id uuid.UUID) (*domain.JobDTO, error) {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	if job.Status != domain.JobStatusPending {
		return nil, ErrInvalidState
	}
	if job.Quotation == nil || job.Quotation.Status != domain.QuotationStatusSigned {
		return nil, fmt.Errorf("%w: quotation is not signed", ErrInvalidState)
	}

	won, err := s.jobRepo.UpdateStatusIf(ctx, id, domain.JobStatusPending, map[string]interface{}{
		"status": domain.JobStatusConfirmed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to confirm job: %w", err)
	}
	if !won {
		return nil, ErrConflict
	}

	s.logger.Info("job confirmed",
		zap.String("jobID", id.String()),
		zap.Int("jobNumber", job.JobNumber),
	)

	s.notifyCrew(ctx, job, domain.NotificationTypeJobConfirmed,
		"Job confirmed",
		fmt.Sprintf("Job #%d is confirmed for %s", job.JobNumber, job.ScheduledStart.Format("2006-01-02 15:04")))

	return s.reload(ctx, id)
}

// Deny cancels a PENDING job the owner does not want to take
func (s *JobService) Deny(ctx context.Context, id uuid.UUID) (*domain.JobDTO, error) {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	if job.Status != domain.JobStatusPending {
		return nil, ErrInvalidState
	}

	won, err := s.jobRepo.UpdateStatusIf(ctx, id, domain.JobStatusPending, map[string]interface{}{
		"status": domain.JobStatusCancelled,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to deny job: %w", err)
	}
	if !won {
		return nil, ErrConflict
	}

	s.logger.Info("job denied",
		zap.String("jobID", id.String()),
		zap.Int("jobNumber", job.JobNumber),
	)

	return s.reload(ctx, id)
}

// Start begins the work on a CONFIRMED job. The clock gates the call:
// too early returns ErrNotYetStartable, too late ErrWindowLapsed. On
// success the actual start is stamped once and the timer attached.
func (s *JobService) Start(ctx context.Context, id uuid.UUID) (*domain.JobDTO, error) {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	if job.Status != domain.JobStatusConfirmed {
		return nil, ErrInvalidState
	}

	now := s.clock.Now()
	window := domain.CanStart(now, job.ScheduledStart, s.earlyWindow, s.lateWindow)
	switch window.Decision {
	case domain.StartTooEarly:
		return nil, fmt.Errorf("%w: window opens %s", ErrNotYetStartable, window.WindowOpens.Format(time.RFC3339))
	case domain.StartTooLate:
		return nil, fmt.Errorf("%w: window closed %s", ErrWindowLapsed, window.WindowCloses.Format(time.RFC3339))
	}

	won, err := s.jobRepo.UpdateStatusIf(ctx, id, domain.JobStatusConfirmed, map[string]interface{}{
		"status":       domain.JobStatusInProgress,
		"actual_start": now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start job: %w", err)
	}
	if !won {
		return nil, ErrConflict
	}

	s.timers.Attach(job.ID, now, job.TotalSeconds())

	s.logger.Info("job started",
		zap.String("jobID", id.String()),
		zap.Int("jobNumber", job.JobNumber),
		zap.Time("actualStart", now),
	)

	s.notifications.NotifyOwners(ctx, job.CompanyID, domain.NotificationTypeJobStarted,
		"Job started",
		fmt.Sprintf("Job #%d has started", job.JobNumber),
		&job.ID, nil)

	return s.reload(ctx, id)
}

// End completes a job in progress, stamping the actual end. Ending an
// already COMPLETED job returns the existing record unchanged, so a
// crew double-tapping the button never errors or moves the end time.
func (s *JobService) End(ctx context.Context, id uuid.UUID) (*domain.JobDTO, error) {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	// Idempotent re-end
	if job.Status == domain.JobStatusCompleted {
		dto := mapper.ToJobDTO(job)
		return &dto, nil
	}

	if job.Status != domain.JobStatusInProgress {
		return nil, ErrInvalidState
	}

	now := s.clock.Now()
	won, err := s.jobRepo.UpdateStatusIf(ctx, id, domain.JobStatusInProgress, map[string]interface{}{
		"status":     domain.JobStatusCompleted,
		"actual_end": now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to end job: %w", err)
	}
	if !won {
		// A concurrent end may have won; return the record it produced
		job, err = s.jobRepo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to reload job: %w", err)
		}
		if job.Status == domain.JobStatusCompleted {
			dto := mapper.ToJobDTO(job)
			return &dto, nil
		}
		return nil, ErrConflict
	}

	s.timers.Detach(id)

	s.logger.Info("job completed",
		zap.String("jobID", id.String()),
		zap.Int("jobNumber", job.JobNumber),
		zap.Time("actualEnd", now),
	)

	s.notifications.NotifyOwners(ctx, job.CompanyID, domain.NotificationTypeJobCompleted,
		"Job completed",
		fmt.Sprintf("Job #%d was completed", job.JobNumber),
		&job.ID, nil)

	return s.reload(ctx, id)
}

// MarkMissedJobs forces CONFIRMED jobs whose whole scheduled window has
// passed without a start into MISSED, stamping the actual end at the
// sweep instant. Called by the sweep; one failure never blocks the
// rest. Returns the number of jobs transitioned.
func (s *JobService) MarkMissedJobs(ctx context.Context, now time.Time) (int, error) {
	jobs, err := s.jobRepo.ListOverdueConfirmed(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list overdue confirmed jobs: %w", err)
	}

	missed := 0
	for i := range jobs {
		job := &jobs[i]
		won, err := s.jobRepo.UpdateStatusIf(ctx, job.ID, domain.JobStatusConfirmed, map[string]interface{}{
			"status":     domain.JobStatusMissed,
			"actual_end": now,
		})
		if err != nil {
			s.logger.Error("failed to mark job missed",
				zap.String("jobID", job.ID.String()),
				zap.Error(err))
			continue
		}
		if !won {
			continue
		}

		missed++
		s.logger.Warn("job marked missed",
			zap.String("jobID", job.ID.String()),
			zap.Int("jobNumber", job.JobNumber),
			zap.Time("scheduledEnd", job.ScheduledEnd),
		)

		s.notifications.NotifyOwners(ctx, job.CompanyID, domain.NotificationTypeJobMissed,
			"Job missed",
			fmt.Sprintf("Job #%d was never started and its scheduled window has passed", job.JobNumber),
			&job.ID, nil)
	}

	return missed, nil
}

// AutoEndOverdueJobs forces IN_PROGRESS jobs that ran past their
// scheduled end plus the grace period into AUTO_ENDED, stamping the
// actual end at the sweep instant. Returns the number of jobs ended.
func (s *JobService) AutoEndOverdueJobs(ctx context.Context, now time.Time, grace time.Duration) (int, error) {
	jobs, err := s.jobRepo.ListOverdueInProgress(ctx, now, grace)
	if err != nil {
		return 0, fmt.Errorf("failed to list overdue in-progress jobs: %w", err)
	}

	ended := 0
	for i := range jobs {
		job := &jobs[i]
		won, err := s.jobRepo.UpdateStatusIf(ctx, job.ID, domain.JobStatusInProgress, map[string]interface{}{
			"status":     domain.JobStatusAutoEnded,
			"actual_end": now,
		})
		if err != nil {
			s.logger.Error("failed to auto-end job",
				zap.String("jobID", job.ID.String()),
				zap.Error(err))
			continue
		}
		if !won {
			continue
		}

		ended++
		s.timers.Detach(job.ID)

		s.logger.Warn("job auto-ended",
			zap.String("jobID", job.ID.String()),
			zap.Int("jobNumber", job.JobNumber),
			zap.Time("scheduledEnd", job.ScheduledEnd),
		)

		s.notifications.NotifyOwners(ctx, job.CompanyID, domain.NotificationTypeJobAutoEnded,
			"Job auto-ended",
			fmt.Sprintf("Job #%d ran past its scheduled end and was ended automatically", job.JobNumber),
			&job.ID, nil)
	}

	return ended, nil
}

func (s *JobService) reload(ctx context.Context, id uuid.UUID) (*domain.JobDTO, error) {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload job: %w", err)
	}
	dto := mapper.ToJobDTO(job)
	return &dto, nil
}

// notifyCrew sends the same notification to every assigned crew member
func (s *JobService) notifyCrew(ctx context.Context, job *domain.Job, notificationType domain.NotificationType, title, message string) {
	for _, member := range job.Crew {
		s.notifications.NotifyUser(ctx, member.UserID, notificationType, title, message, &job.ID, nil)
	}
}
