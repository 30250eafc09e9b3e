// Package clock provides the single wall-clock source used for all
// duration and window math. Services never call time.Now directly so
// tests can control time.
package clock

import "time"

// Clock reads the current instant
type Clock interface {
	Now() time.Time
}

// Real reads the system clock in UTC
type Real struct{}

// New returns the system clock
func New() Real {
	return Real{}
}

// Now returns the current UTC instant
func (Real) Now() time.Time {
	return time.Now().UTC()
}
