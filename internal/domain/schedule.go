package domain

import (
	"fmt"
	"time"
)

// DeriveSchedule computes the scheduled start and end instants from a
// quotation's moving date, start time ("HH:MM") and estimated hours.
// Returns (nil, nil, nil) when any input is missing: the derived instants
// stay unset rather than being defaulted. An unparsable start time is an
// error, not a silent skip.
func DeriveSchedule(movingDate *time.Time, startTime string, estimatedHours *float64) (*time.Time, *time.Time, error) {
	if movingDate == nil || startTime == "" || estimatedHours == nil {
		return nil, nil, nil
	}

	parsed, err := time.Parse("15:04", startTime)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid start time %q: %w", startTime, err)
	}

	start := time.Date(
		movingDate.Year(), movingDate.Month(), movingDate.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, time.UTC,
	)
	end := start.Add(time.Duration(*estimatedHours * float64(time.Hour)))

	return &start, &end, nil
}
