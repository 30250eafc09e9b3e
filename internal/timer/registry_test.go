package timer_test

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/timer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Reading(t *testing.T) {
	registry := timer.NewRegistry()
	jobID := uuid.New()
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	// 4 hour job
	session := registry.Attach(jobID, start, 14400)

	t.Run("mid job", func(t *testing.T) {
		reading := session.Reading(start.Add(3 * time.Hour))
		assert.Equal(t, int64(10800), reading.ElapsedSeconds)
		assert.Equal(t, int64(3600), reading.RemainingSeconds)
		assert.Equal(t, int64(14400), reading.TotalSeconds)
		assert.False(t, reading.Overrun)
	})

	t.Run("exactly at allotted end", func(t *testing.T) {
		reading := session.Reading(start.Add(4 * time.Hour))
		assert.Equal(t, int64(0), reading.RemainingSeconds)
		assert.False(t, reading.Overrun)
	})

	t.Run("overrun", func(t *testing.T) {
		reading := session.Reading(start.Add(4*time.Hour + 30*time.Minute))
		assert.Equal(t, int64(16200), reading.ElapsedSeconds)
		assert.Equal(t, int64(-1800), reading.RemainingSeconds)
		assert.True(t, reading.Overrun)
	})

	t.Run("clock before anchor clamps to zero", func(t *testing.T) {
		reading := session.Reading(start.Add(-time.Minute))
		assert.Equal(t, int64(0), reading.ElapsedSeconds)
		assert.Equal(t, int64(14400), reading.RemainingSeconds)
	})
}

func TestRegistry_AttachReattach(t *testing.T) {
	registry := timer.NewRegistry()
	jobID := uuid.New()
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	first := registry.Attach(jobID, start, 14400)

	// Same anchor: the existing session survives, readings are identical
	second := registry.Attach(jobID, start, 14400)
	assert.Same(t, first, second)
	assert.Equal(t, first.Reading(start.Add(time.Hour)), second.Reading(start.Add(time.Hour)))

	// Different anchor replaces the session
	third := registry.Attach(jobID, start.Add(time.Minute), 14400)
	assert.NotSame(t, first, third)
	assert.Equal(t, 1, registry.Len())
}

func TestRegistry_GetDetach(t *testing.T) {
	registry := timer.NewRegistry()
	jobID := uuid.New()

	_, ok := registry.Get(jobID)
	assert.False(t, ok)

	registry.Attach(jobID, time.Now().UTC(), 3600)
	session, ok := registry.Get(jobID)
	require.True(t, ok)
	assert.NotNil(t, session)

	registry.Detach(jobID)
	_, ok = registry.Get(jobID)
	assert.False(t, ok)

	// Detaching again is a no-op
	registry.Detach(jobID)
	assert.Equal(t, 0, registry.Len())
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	registry := timer.NewRegistry()
	start := time.Now().UTC()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			jobID := uuid.New()
			registry.Attach(jobID, start, 3600)
			if session, ok := registry.Get(jobID); ok {
				_ = session.Reading(start.Add(time.Minute))
			}
			registry.Detach(jobID)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, registry.Len())
}
