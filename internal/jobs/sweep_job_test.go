package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/jobs"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeQuotationSweep struct {
	expired int
	err     error
	calls   int
	lastNow time.Time
}

func (f *fakeQuotationSweep) ExpireDueQuotations(ctx context.Context, now time.Time) (int, error) {
	f.calls++
	f.lastNow = now
	return f.expired, f.err
}

type fakeJobSweep struct {
	missed      int
	autoEnded   int
	missedErr   error
	autoEndErr  error
	missedCalls int
	autoCalls   int
	lastGrace   time.Duration
}

func (f *fakeJobSweep) MarkMissedJobs(ctx context.Context, now time.Time) (int, error) {
	f.missedCalls++
	return f.missed, f.missedErr
}

func (f *fakeJobSweep) AutoEndOverdueJobs(ctx context.Context, now time.Time, grace time.Duration) (int, error) {
	f.autoCalls++
	f.lastGrace = grace
	return f.autoEnded, f.autoEndErr
}

func TestSweepJob_RunsAllPhases(t *testing.T) {
	quotations := &fakeQuotationSweep{expired: 2}
	jobSweep := &fakeJobSweep{missed: 1, autoEnded: 3}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	sweep := jobs.NewSweepJob(quotations, jobSweep, zap.NewNop(), 30*time.Second, 30*time.Minute,
		func() time.Time { return now })
	sweep.Run()

	assert.Equal(t, 1, quotations.calls)
	assert.Equal(t, 1, jobSweep.missedCalls)
	assert.Equal(t, 1, jobSweep.autoCalls)
	assert.Equal(t, now, quotations.lastNow)
	assert.Equal(t, 30*time.Minute, jobSweep.lastGrace)
}

func TestSweepJob_PhaseFailureDoesNotBlockOthers(t *testing.T) {
	quotations := &fakeQuotationSweep{err: errors.New("db down")}
	jobSweep := &fakeJobSweep{missedErr: errors.New("db down")}

	sweep := jobs.NewSweepJob(quotations, jobSweep, zap.NewNop(), 30*time.Second, 30*time.Minute, nil)
	sweep.Run()

	// All three phases still ran despite the first two failing
	assert.Equal(t, 1, quotations.calls)
	assert.Equal(t, 1, jobSweep.missedCalls)
	assert.Equal(t, 1, jobSweep.autoCalls)
}

func TestRegisterSweepJob(t *testing.T) {
	scheduler := jobs.NewScheduler(zap.NewNop())
	quotations := &fakeQuotationSweep{}
	jobSweep := &fakeJobSweep{}

	err := jobs.RegisterSweepJob(scheduler, quotations, jobSweep, zap.NewNop(),
		"0 * * * * *", 30*time.Second, 30*time.Minute, false)
	assert.NoError(t, err)
	assert.Contains(t, scheduler.JobNames(), jobs.SweepJobName)
}

func TestRegisterSweepJob_InvalidCron(t *testing.T) {
	scheduler := jobs.NewScheduler(zap.NewNop())

	err := jobs.RegisterSweepJob(scheduler, &fakeQuotationSweep{}, &fakeJobSweep{}, zap.NewNop(),
		"not a cron spec", 30*time.Second, 30*time.Minute, false)
	assert.Error(t, err)
}
