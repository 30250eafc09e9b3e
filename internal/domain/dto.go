package domain

import (
	"time"

	"github.com/google/uuid"
)

// DTOs for API responses. Timestamps are ISO 8601 strings.

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

type CustomerDTO struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	Address    string    `json:"address,omitempty"`
	City       string    `json:"city,omitempty"`
	PostalCode string    `json:"postalCode,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  string    `json:"createdAt"`
	UpdatedAt  string    `json:"updatedAt"`
}

type UserDTO struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"firstName,omitempty"`
	LastName    string    `json:"lastName,omitempty"`
	FullName    string    `json:"fullName"`
	Phone       string    `json:"phone,omitempty"`
	Role        UserRole  `json:"role"`
	IsAvailable bool      `json:"isAvailable"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   string    `json:"createdAt"`
}

type QuotationDTO struct {
	ID                 uuid.UUID       `json:"id"`
	QuoteNumber        int             `json:"quoteNumber"`
	CustomerID         uuid.UUID       `json:"customerId"`
	CustomerName       string          `json:"customerName,omitempty"`
	Status             QuotationStatus `json:"status"`
	MovingDate         *string         `json:"movingDate,omitempty"` // YYYY-MM-DD
	StartTime          string          `json:"startTime,omitempty"`  // HH:MM
	EstimatedHours     *float64        `json:"estimatedHours,omitempty"`
	ScheduledStart     *string         `json:"scheduledStart,omitempty"`
	ScheduledEnd       *string         `json:"scheduledEnd,omitempty"`
	OriginAddress      string          `json:"originAddress,omitempty"`
	DestinationAddress string          `json:"destinationAddress,omitempty"`
	BasePrice          float64         `json:"basePrice"`
	ExtraServicesPrice float64         `json:"extraServicesPrice"`
	TotalPrice         float64         `json:"totalPrice"`
	ValidityDays       *int            `json:"validityDays,omitempty"`
	ExpiresAt          *string         `json:"expiresAt,omitempty"`
	SignedBy           string          `json:"signedBy,omitempty"`
	SignedAt           *string         `json:"signedAt,omitempty"`
	HasSignature       bool            `json:"hasSignature"`
	JobID              *uuid.UUID      `json:"jobId,omitempty"`
	CreatedAt          string          `json:"createdAt"`
	UpdatedAt          string          `json:"updatedAt"`
}

// PublicQuotationDTO is the customer-facing projection served to the
// signing page. No internal ids beyond the token the caller already holds.
type PublicQuotationDTO struct {
	QuoteNumber        int             `json:"quoteNumber"`
	CompanyName        string          `json:"companyName"`
	CustomerName       string          `json:"customerName"`
	Status             QuotationStatus `json:"status"`
	MovingDate         *string         `json:"movingDate,omitempty"`
	StartTime          string          `json:"startTime,omitempty"`
	OriginAddress      string          `json:"originAddress,omitempty"`
	DestinationAddress string          `json:"destinationAddress,omitempty"`
	TotalPrice         float64         `json:"totalPrice"`
	ExpiresAt          *string         `json:"expiresAt,omitempty"`
}

type JobDTO struct {
	ID             uuid.UUID    `json:"id"`
	JobNumber      int          `json:"jobNumber"`
	QuotationID    uuid.UUID    `json:"quotationId"`
	QuoteNumber    int          `json:"quoteNumber,omitempty"`
	CustomerName   string       `json:"customerName,omitempty"`
	Status         JobStatus    `json:"status"`
	ScheduledStart string       `json:"scheduledStart"`
	ScheduledEnd   string       `json:"scheduledEnd"`
	ActualStart    *string      `json:"actualStart,omitempty"`
	ActualEnd      *string      `json:"actualEnd,omitempty"`
	TotalSeconds   int64        `json:"totalSeconds"`
	Crew           []JobCrewDTO `json:"crew"`
	CreatedAt      string       `json:"createdAt"`
	UpdatedAt      string       `json:"updatedAt"`
}

type JobCrewDTO struct {
	UserID   uuid.UUID `json:"userId"`
	FullName string    `json:"fullName,omitempty"`
	Role     CrewRole  `json:"role"`
}

type NotificationDTO struct {
	ID          uuid.UUID        `json:"id"`
	Type        NotificationType `json:"type"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	Read        bool             `json:"read"`
	JobID       *uuid.UUID       `json:"jobId,omitempty"`
	QuotationID *uuid.UUID       `json:"quotationId,omitempty"`
	CreatedAt   string           `json:"createdAt"`
}

// PaginatedResponse wraps list payloads with paging metadata
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// UnreadCountDTO carries the unread notification count
type UnreadCountDTO struct {
	Count int `json:"count"`
}

// TimerReadingDTO is one observation of a running job timer
type TimerReadingDTO struct {
	JobID            uuid.UUID `json:"jobId"`
	Status           JobStatus `json:"status"`
	StartedAt        string    `json:"startedAt"`
	ElapsedSeconds   int64     `json:"elapsedSeconds"`
	RemainingSeconds int64     `json:"remainingSeconds"` // signed, negative = overrun
	TotalSeconds     int64     `json:"totalSeconds"`
	Overrun          bool      `json:"overrun"`
}

// ============================================================================
// Request types
// ============================================================================

type CreateCustomerRequest struct {
	Name       string `json:"name" validate:"required,max=200"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"max=50"`
	Address    string `json:"address" validate:"max=500"`
	City       string `json:"city" validate:"max=100"`
	PostalCode string `json:"postalCode" validate:"max=20"`
	Notes      string `json:"notes"`
}

type UpdateCustomerRequest struct {
	Name       *string `json:"name" validate:"omitempty,max=200"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Phone      *string `json:"phone" validate:"omitempty,max=50"`
	Address    *string `json:"address" validate:"omitempty,max=500"`
	City       *string `json:"city" validate:"omitempty,max=100"`
	PostalCode *string `json:"postalCode" validate:"omitempty,max=20"`
	Notes      *string `json:"notes"`
}

type CreateQuotationRequest struct {
	CustomerID         uuid.UUID `json:"customerId" validate:"required"`
	MovingDate         *string   `json:"movingDate" validate:"omitempty,datetime=2006-01-02"`
	StartTime          string    `json:"startTime" validate:"omitempty,datetime=15:04"`
	EstimatedHours     *float64  `json:"estimatedHours" validate:"omitempty,gt=0,lte=24"`
	OriginAddress      string    `json:"originAddress" validate:"max=500"`
	DestinationAddress string    `json:"destinationAddress" validate:"max=500"`
	BasePrice          float64   `json:"basePrice" validate:"gte=0"`
	ExtraServicesPrice float64   `json:"extraServicesPrice" validate:"gte=0"`
	ValidityDays       *int      `json:"validityDays" validate:"omitempty,gt=0,lte=90"`
}

type UpdateQuotationRequest struct {
	MovingDate         *string  `json:"movingDate" validate:"omitempty,datetime=2006-01-02"`
	StartTime          *string  `json:"startTime" validate:"omitempty,datetime=15:04"`
	EstimatedHours     *float64 `json:"estimatedHours" validate:"omitempty,gt=0,lte=24"`
	OriginAddress      *string  `json:"originAddress" validate:"omitempty,max=500"`
	DestinationAddress *string  `json:"destinationAddress" validate:"omitempty,max=500"`
	BasePrice          *float64 `json:"basePrice" validate:"omitempty,gte=0"`
	ExtraServicesPrice *float64 `json:"extraServicesPrice" validate:"omitempty,gte=0"`
	ValidityDays       *int     `json:"validityDays" validate:"omitempty,gt=0,lte=90"`
}

type SignQuotationRequest struct {
	SignedBy string `json:"signedBy" validate:"required,max=200"`
	// Signature is the base64-encoded signature image
	Signature string `json:"signature" validate:"required"`
}

type AssignCrewRequest struct {
	Crew []CrewAssignment `json:"crew" validate:"required,min=1,dive"`
}

type CrewAssignment struct {
	UserID uuid.UUID `json:"userId" validate:"required"`
	Role   CrewRole  `json:"role" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string  `json:"token"`
	ExpiresAt string  `json:"expiresAt"`
	User      UserDTO `json:"user"`
}

// FormatInstant renders a timestamp as ISO 8601 UTC for DTOs
func FormatInstant(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// FormatInstantPtr renders an optional timestamp, nil stays nil
func FormatInstantPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatInstant(*t)
	return &s
}

// FormatDatePtr renders an optional date as YYYY-MM-DD
func FormatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
