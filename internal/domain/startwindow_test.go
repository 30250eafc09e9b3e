package domain_test

import (
	"testing"
	"time"

	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestCanStart(t *testing.T) {
	scheduled := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		now      time.Time
		expected domain.StartDecision
	}{
		{
			name:     "well before the window",
			now:      scheduled.Add(-2 * time.Hour),
			expected: domain.StartTooEarly,
		},
		{
			name:     "one second before the window opens",
			now:      scheduled.Add(-15*time.Minute - time.Second),
			expected: domain.StartTooEarly,
		},
		{
			name:     "exactly at window open",
			now:      scheduled.Add(-15 * time.Minute),
			expected: domain.StartAllowed,
		},
		{
			name:     "at the scheduled instant",
			now:      scheduled,
			expected: domain.StartAllowed,
		},
		{
			name:     "exactly at window close",
			now:      scheduled.Add(60 * time.Minute),
			expected: domain.StartAllowed,
		},
		{
			name:     "one second after the window closes",
			now:      scheduled.Add(60*time.Minute + time.Second),
			expected: domain.StartTooLate,
		},
		{
			name:     "hours after the window",
			now:      scheduled.Add(5 * time.Hour),
			expected: domain.StartTooLate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := domain.CanStart(tt.now, scheduled, domain.DefaultEarlyWindow, domain.DefaultLateWindow)
			assert.Equal(t, tt.expected, result.Decision)
			assert.Equal(t, scheduled.Add(-15*time.Minute), result.WindowOpens)
			assert.Equal(t, scheduled.Add(60*time.Minute), result.WindowCloses)
			assert.Equal(t, tt.now, result.Now)
		})
	}
}

func TestCanStart_CustomWindows(t *testing.T) {
	scheduled := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	result := domain.CanStart(scheduled.Add(-25*time.Minute), scheduled, 30*time.Minute, 10*time.Minute)
	assert.Equal(t, domain.StartAllowed, result.Decision)

	result = domain.CanStart(scheduled.Add(11*time.Minute), scheduled, 30*time.Minute, 10*time.Minute)
	assert.Equal(t, domain.StartTooLate, result.Decision)
}
