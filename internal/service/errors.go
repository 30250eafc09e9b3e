package service

import "errors"

// Common service errors
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrValidation is returned when a transition is missing required input
	ErrValidation = errors.New("invalid input")

	// ErrInvalidState is returned when a transition is attempted from a state
	// that does not permit it
	ErrInvalidState = errors.New("invalid state for this operation")

	// ErrMissingSchedule is returned when send() is attempted without
	// validity days or derived schedule instants
	ErrMissingSchedule = errors.New("missing schedule")

	// ErrExpired is returned when a quotation's signing window has passed
	ErrExpired = errors.New("quotation expired")

	// ErrAlreadyResolved is returned when a sign/reject races a prior
	// terminal action on the same token
	ErrAlreadyResolved = errors.New("quotation already resolved")

	// ErrConflict is returned when a concurrent writer won the status race;
	// callers should refetch and re-evaluate
	ErrConflict = errors.New("resource was modified concurrently")

	// ErrNotYetStartable is returned when start() is attempted before the
	// start window opens
	ErrNotYetStartable = errors.New("job cannot be started yet")

	// ErrWindowLapsed is returned when start() is attempted after the start
	// window has closed
	ErrWindowLapsed = errors.New("start window has lapsed")

	// ErrEmployeeUnavailable is returned when assigning an unavailable
	// employee to a crew
	ErrEmployeeUnavailable = errors.New("employee is not available")

	// ErrDuplicateCrewMember is returned when a crew assignment lists the
	// same employee twice
	ErrDuplicateCrewMember = errors.New("employee already assigned to this job")

	// ErrUnauthorized is returned when user is not authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredentials is returned on a failed login
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrPermissionDenied is returned when a user doesn't have permission for an action
	ErrPermissionDenied = errors.New("permission denied")
)
