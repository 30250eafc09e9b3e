package domain

import "time"

// StartDecision is the outcome of the start-window gate
type StartDecision string

const (
	StartAllowed  StartDecision = "ALLOWED"
	StartTooEarly StartDecision = "TOO_EARLY"
	StartTooLate  StartDecision = "TOO_LATE"
)

// Default start-window bounds: a crew may start up to 15 minutes before
// the scheduled instant and up to 60 minutes after it.
const (
	DefaultEarlyWindow = 15 * time.Minute
	DefaultLateWindow  = 60 * time.Minute
)

// StartWindowResult carries the gate decision plus the context a client
// needs to explain it without re-deriving the rule.
type StartWindowResult struct {
	Decision       StartDecision `json:"decision"`
	Now            time.Time     `json:"now"`
	ScheduledStart time.Time     `json:"scheduledStart"`
	WindowOpens    time.Time     `json:"windowOpens"`
	WindowCloses   time.Time     `json:"windowCloses"`
}

// CanStart decides whether a job may be started at now given its scheduled
// start. Pure function, no locks, no side effects. Both window boundaries
// are inclusive.
func CanStart(now, scheduledStart time.Time, earlyWindow, lateWindow time.Duration) StartWindowResult {
	opens := scheduledStart.Add(-earlyWindow)
	closes := scheduledStart.Add(lateWindow)

	decision := StartAllowed
	switch {
	case now.Before(opens):
		decision = StartTooEarly
	case now.After(closes):
		decision = StartTooLate
	}

	return StartWindowResult{
		Decision:       decision,
		Now:            now,
		ScheduledStart: scheduledStart,
		WindowOpens:    opens,
		WindowCloses:   closes,
	}
}
