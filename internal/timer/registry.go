// Package timer tracks elapsed and remaining time for jobs in progress.
// Sessions are anchored to the job's actual start, so every reading is
// recomputed from the clock rather than counted down in memory. A
// process restart loses nothing: reattaching with the same anchor
// yields identical readings.
package timer

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Reading is one observation of a running timer. RemainingSeconds is
// signed, negative means the job has overrun its allotted time.
type Reading struct {
	JobID            uuid.UUID
	StartedAt        time.Time
	ElapsedSeconds   int64
	RemainingSeconds int64
	TotalSeconds     int64
	Overrun          bool
}

// Session is a registered timer for a single job
type Session struct {
	jobID        uuid.UUID
	startedAt    time.Time
	totalSeconds int64
}

// Reading computes the session's elapsed and remaining time at the
// given instant. Pure recomputation, no accumulated state.
func (s *Session) Reading(now time.Time) Reading {
	elapsed := int64(now.Sub(s.startedAt) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	remaining := s.totalSeconds - elapsed

	return Reading{
		JobID:            s.jobID,
		StartedAt:        s.startedAt,
		ElapsedSeconds:   elapsed,
		RemainingSeconds: remaining,
		TotalSeconds:     s.totalSeconds,
		Overrun:          remaining < 0,
	}
}

// StartedAt returns the session anchor
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

// Registry holds the active timer sessions, one per job
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Attach registers a timer session for a job. Attaching a job that is
// already registered keeps the existing session when its anchor matches,
// otherwise the session is replaced with the new anchor.
func (r *Registry) Attach(jobID uuid.UUID, startedAt time.Time, totalSeconds int64) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sessions[jobID]; ok && existing.startedAt.Equal(startedAt) {
		return existing
	}

	session := &Session{
		jobID:        jobID,
		startedAt:    startedAt,
		totalSeconds: totalSeconds,
	}
	r.sessions[jobID] = session
	return session
}

// Get returns the session for a job, if one is registered
func (r *Registry) Get(jobID uuid.UUID) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[jobID]
	return session, ok
}

// Detach removes a job's session. Detaching an unknown job is a no-op.
func (r *Registry) Detach(jobID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, jobID)
}

// Len returns the number of registered sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
