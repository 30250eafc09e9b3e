package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SweepJobName is the name of the lifecycle sweep job
const SweepJobName = "lifecycle_sweep"

// QuotationSweepService expires sent quotations whose validity window
// has passed. The interface keeps the job decoupled from the service
// package.
type QuotationSweepService interface {
	// ExpireDueQuotations expires every SENT quotation past its expiry.
	// Returns the number of quotations expired.
	ExpireDueQuotations(ctx context.Context, now time.Time) (int, error)
}

// JobSweepService applies the forced job transitions.
type JobSweepService interface {
	// MarkMissedJobs forces overdue CONFIRMED jobs into MISSED.
	MarkMissedJobs(ctx context.Context, now time.Time) (int, error)

	// AutoEndOverdueJobs forces overrun IN_PROGRESS jobs into AUTO_ENDED.
	AutoEndOverdueJobs(ctx context.Context, now time.Time, grace time.Duration) (int, error)
}

// SweepJob is the periodic auto-resolution pass: it expires stale
// quotations, marks never-started jobs as missed and ends jobs that
// ran far past their schedule. Each phase is isolated, a failure in
// one never blocks the others.
type SweepJob struct {
	quotations QuotationSweepService
	jobs       JobSweepService
	logger     *zap.Logger
	timeout    time.Duration
	grace      time.Duration
	now        func() time.Time
}

// NewSweepJob creates a new lifecycle sweep job. The timeout bounds one
// full pass; grace is how long an in-progress job may run past its
// scheduled end before being auto-ended.
func NewSweepJob(quotations QuotationSweepService, jobService JobSweepService, logger *zap.Logger, timeout, grace time.Duration, now func() time.Time) *SweepJob {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &SweepJob{
		quotations: quotations,
		jobs:       jobService,
		logger:     logger,
		timeout:    timeout,
		grace:      grace,
		now:        now,
	}
}

// Run executes one sweep pass. Called by the scheduler.
func (j *SweepJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	now := j.now()

	expired, err := j.quotations.ExpireDueQuotations(ctx, now)
	if err != nil {
		j.logger.Error("quotation expiry sweep failed", zap.Error(err))
	}

	missed, err := j.jobs.MarkMissedJobs(ctx, now)
	if err != nil {
		j.logger.Error("missed job sweep failed", zap.Error(err))
	}

	autoEnded, err := j.jobs.AutoEndOverdueJobs(ctx, now, j.grace)
	if err != nil {
		j.logger.Error("auto-end sweep failed", zap.Error(err))
	}

	if expired > 0 || missed > 0 || autoEnded > 0 {
		j.logger.Info("lifecycle sweep completed",
			zap.Int("quotations_expired", expired),
			zap.Int("jobs_missed", missed),
			zap.Int("jobs_auto_ended", autoEnded),
			zap.Duration("duration", time.Since(start)))
	}
}

// RegisterSweepJob registers the lifecycle sweep with the scheduler.
// When runOnStartup is true one pass runs immediately in a background
// goroutine so entities that went overdue while the process was down
// are resolved without waiting for the first tick.
func RegisterSweepJob(scheduler *Scheduler, quotations QuotationSweepService, jobService JobSweepService, logger *zap.Logger, cronExpr string, timeout, grace time.Duration, runOnStartup bool) error {
	job := NewSweepJob(quotations, jobService, logger, timeout, grace, nil)

	if runOnStartup {
		go job.Run()
	}

	return scheduler.AddJob(SweepJobName, cronExpr, job.Run)
}
