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
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/timer"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// JobService handles jobs: listings, crew assignment and the execution
// lifecycle. Lifecycle methods live in job_lifecycle_service.go.
type JobService struct {
	jobRepo       *repository.JobRepository
	userRepo      *repository.UserRepository
	notifications *NotificationService
	timers        *timer.Registry
	clock         clock.Clock
	logger        *zap.Logger

	// Start window around the scheduled start
	earlyWindow time.Duration
	lateWindow  time.Duration
}

func NewJobService(
	jobRepo *repository.JobRepository,
	userRepo *repository.UserRepository,
	notifications *NotificationService,
	timers *timer.Registry,
	clk clock.Clock,
	earlyWindow time.Duration,
	lateWindow time.Duration,
	logger *zap.Logger,
) *JobService {
	if earlyWindow <= 0 {
		earlyWindow = domain.DefaultEarlyWindow
	}
	if lateWindow <= 0 {
		lateWindow = domain.DefaultLateWindow
	}
	return &JobService{
		jobRepo:       jobRepo,
		userRepo:      userRepo,
		notifications: notifications,
		timers:        timers,
		clock:         clk,
		logger:        logger,
		earlyWindow:   earlyWindow,
		lateWindow:    lateWindow,
	}
}

func (s *JobService) GetByID(ctx context.Context, id uuid.UUID) (*domain.JobDTO, error) {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	dto := mapper.ToJobDTO(job)
	return &dto, nil
}

func (s *JobService) List(ctx context.Context, page, pageSize int, status *domain.JobStatus) (*domain.PaginatedResponse, error) {
	if status != nil && !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *status)
	}

	jobs, total, err := s.jobRepo.List(ctx, page, pageSize, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	page, pageSize = repository.NormalizePage(page, pageSize)

	dtos := make([]domain.JobDTO, len(jobs))
	for i := range jobs {
		dtos[i] = mapper.ToJobDTO(&jobs[i])
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

// ListMine returns the jobs the authenticated employee is on crew for
func (s *JobService) ListMine(ctx context.Context, status *domain.JobStatus) ([]domain.JobDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}
	if status != nil && !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *status)
	}

	jobs, err := s.jobRepo.ListByCrewMember(ctx, userCtx.UserID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	dtos := make([]domain.JobDTO, len(jobs))
	for i := range jobs {
		dtos[i] = mapper.ToJobDTO(&jobs[i])
	}
	return dtos, nil
}

// AssignCrew replaces the job's crew. Crew can only change before the
// work starts. Every assignee must be an available active employee of
// the company, and no employee may appear twice.
func (s *JobService) AssignCrew(ctx context.Context, jobID uuid.UUID, req *domain.AssignCrewRequest) (*domain.JobDTO, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	if job.Status != domain.JobStatusPending && job.Status != domain.JobStatusConfirmed {
		return nil, ErrInvalidState
	}

	seen := make(map[uuid.UUID]struct{}, len(req.Crew))
	userIDs := make([]uuid.UUID, 0, len(req.Crew))
	for _, assignment := range req.Crew {
		if !assignment.Role.IsValid() {
			return nil, fmt.Errorf("%w: unknown crew role %q", ErrValidation, assignment.Role)
		}
		if _, dup := seen[assignment.UserID]; dup {
			return nil, ErrDuplicateCrewMember
		}
		seen[assignment.UserID] = struct{}{}
		userIDs = append(userIDs, assignment.UserID)
	}

	users, err := s.userRepo.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to look up crew members: %w", err)
	}
	byID := make(map[uuid.UUID]*domain.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	for _, userID := range userIDs {
		user, ok := byID[userID]
		if !ok {
			return nil, fmt.Errorf("%w: employee %s not found", ErrValidation, userID)
		}
		if !user.IsActive || !user.IsAvailable {
			return nil, ErrEmployeeUnavailable
		}
	}

	crew := make([]domain.JobCrew, len(req.Crew))
	for i, assignment := range req.Crew {
		crew[i] = domain.JobCrew{
			JobID:  jobID,
			UserID: assignment.UserID,
			Role:   assignment.Role,
		}
	}

	if err := s.jobRepo.ReplaceCrew(ctx, jobID, crew); err != nil {
		return nil, fmt.Errorf("failed to assign crew: %w", err)
	}

	s.logger.Info("crew assigned",
		zap.String("jobID", jobID.String()),
		zap.Int("crewSize", len(crew)),
	)

	job, err = s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload job: %w", err)
	}

	dto := mapper.ToJobDTO(job)
	return &dto, nil
}

// TimerReading returns the live timer state for a job in progress.
// The session is reattached from the job's actual start when missing,
// so readings survive process restarts.
func (s *JobService) TimerReading(ctx context.Context, jobID uuid.UUID) (*domain.TimerReadingDTO, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	if job.Status != domain.JobStatusInProgress || job.ActualStart == nil {
		return nil, ErrInvalidState
	}

	session := s.timers.Attach(job.ID, *job.ActualStart, job.TotalSeconds())
	reading := session.Reading(s.clock.Now())

	dto := toTimerReadingDTO(job.Status, reading)
	return &dto, nil
}

func toTimerReadingDTO(status domain.JobStatus, reading timer.Reading) domain.TimerReadingDTO {
	return domain.TimerReadingDTO{
		JobID:            reading.JobID,
		Status:           status,
		StartedAt:        domain.FormatInstant(reading.StartedAt),
		ElapsedSeconds:   reading.ElapsedSeconds,
		RemainingSeconds: reading.RemainingSeconds,
		TotalSeconds:     reading.TotalSeconds,
		Overrun:          reading.Overrun,
	}
}
