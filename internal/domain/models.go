package domain

import (
	"time"

	"github.com/google/uuid"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// Company represents a moving company (tenant). Quote and job numbers
// are sequential per company.
type Company struct {
	BaseModel
	Name  string `gorm:"type:varchar(200);not null"`
	Email string `gorm:"type:varchar(255)"`
	Phone string `gorm:"type:varchar(50)"`
}

// UserRole represents the role of a user within a company
type UserRole string

const (
	UserRoleOwner    UserRole = "OWNER"
	UserRoleEmployee UserRole = "EMPLOYEE"
)

// IsValid checks if the UserRole is a valid enum value
func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleOwner, UserRoleEmployee:
		return true
	}
	return false
}

// User represents an owner or field employee
type User struct {
	BaseModel
	CompanyID    uuid.UUID `gorm:"type:uuid;not null;index;column:company_id"`
	Company      *Company  `gorm:"foreignKey:CompanyID"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string    `gorm:"type:varchar(255);not null;column:password_hash"`
	FirstName    string    `gorm:"type:varchar(100);column:first_name"`
	LastName     string    `gorm:"type:varchar(100);column:last_name"`
	Phone        string    `gorm:"type:varchar(50)"`
	Role         UserRole  `gorm:"type:varchar(50);not null;default:'EMPLOYEE';index"`
	// IsAvailable is the roster availability flag consumed by crew assignment
	IsAvailable bool `gorm:"not null;default:true;column:is_available"`
	IsActive    bool `gorm:"not null;default:true;column:is_active"`
}

// FullName returns the user's full name
func (u *User) FullName() string {
	if u.FirstName != "" && u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.Email
}

// Customer represents a moving customer
type Customer struct {
	BaseModel
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;index;column:company_id"`
	Company    *Company  `gorm:"foreignKey:CompanyID"`
	Name       string    `gorm:"type:varchar(200);not null;index"`
	Email      string    `gorm:"type:varchar(255);not null"`
	Phone      string    `gorm:"type:varchar(50)"`
	Address    string    `gorm:"type:varchar(500)"`
	City       string    `gorm:"type:varchar(100)"`
	PostalCode string    `gorm:"type:varchar(20);column:postal_code"`
	Notes      string    `gorm:"type:text"`
}

// QuotationStatus represents the status of a quotation
type QuotationStatus string

const (
	QuotationStatusDraft    QuotationStatus = "DRAFT"
	QuotationStatusSent     QuotationStatus = "SENT"
	QuotationStatusSigned   QuotationStatus = "SIGNED"
	QuotationStatusRejected QuotationStatus = "REJECTED"
	QuotationStatusExpired  QuotationStatus = "EXPIRED"
)

// IsValid checks if the QuotationStatus is a valid enum value
func (s QuotationStatus) IsValid() bool {
	switch s {
	case QuotationStatusDraft, QuotationStatusSent, QuotationStatusSigned,
		QuotationStatusRejected, QuotationStatusExpired:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed
func (s QuotationStatus) IsTerminal() bool {
	switch s {
	case QuotationStatusSigned, QuotationStatusRejected, QuotationStatusExpired:
		return true
	}
	return false
}

// Quotation represents a priced move proposal sent to a customer for signature
type Quotation struct {
	BaseModel
	CompanyID uuid.UUID `gorm:"type:uuid;not null;column:company_id;uniqueIndex:uq_quotations_company_number"`
	Company   *Company  `gorm:"foreignKey:CompanyID"`
	// QuoteNumber is sequential per company, first issued value is 1001
	QuoteNumber int             `gorm:"not null;column:quote_number;uniqueIndex:uq_quotations_company_number"`
	CustomerID  uuid.UUID       `gorm:"type:uuid;not null;index;column:customer_id"`
	Customer    *Customer       `gorm:"foreignKey:CustomerID"`
	Status      QuotationStatus `gorm:"type:varchar(50);not null;default:'DRAFT';index"`

	// Schedule inputs. ScheduledStart/End are derived from these while the
	// quotation is DRAFT and frozen from send() onward.
	MovingDate     *time.Time `gorm:"type:date;column:moving_date"`
	StartTime      string     `gorm:"type:varchar(5);column:start_time"` // "HH:MM"
	EstimatedHours *float64   `gorm:"type:decimal(5,2);column:estimated_hours"`
	ScheduledStart *time.Time `gorm:"column:scheduled_start"`
	ScheduledEnd   *time.Time `gorm:"column:scheduled_end"`

	OriginAddress      string  `gorm:"type:varchar(500);column:origin_address"`
	DestinationAddress string  `gorm:"type:varchar(500);column:destination_address"`
	BasePrice          float64 `gorm:"type:decimal(15,2);not null;default:0;column:base_price"`
	ExtraServicesPrice float64 `gorm:"type:decimal(15,2);not null;default:0;column:extra_services_price"`
	TotalPrice         float64 `gorm:"type:decimal(15,2);not null;default:0;column:total_price"`

	// Validity window; ExpiresAt is set at send()
	ValidityDays *int       `gorm:"column:validity_days"`
	ExpiresAt    *time.Time `gorm:"column:expires_at;index"`

	// PublicToken is the opaque single-use signing token minted at send()
	PublicToken   *string    `gorm:"type:varchar(100);uniqueIndex;column:public_token"`
	SignedBy      string     `gorm:"type:varchar(200);column:signed_by"`
	SignedAt      *time.Time `gorm:"column:signed_at"`
	SignaturePath string     `gorm:"type:varchar(500);column:signature_path"`
	RejectedAt    *time.Time `gorm:"column:rejected_at"`

	Job *Job `gorm:"foreignKey:QuotationID"`
}

// JobStatus represents the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusConfirmed  JobStatus = "CONFIRMED"
	JobStatusInProgress JobStatus = "IN_PROGRESS"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusCancelled  JobStatus = "CANCELLED"
	JobStatusAutoEnded  JobStatus = "AUTO_ENDED"
	JobStatusMissed     JobStatus = "MISSED"
)

// IsValid checks if the JobStatus is a valid enum value
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusPending, JobStatusConfirmed, JobStatusInProgress,
		JobStatusCompleted, JobStatusCancelled, JobStatusAutoEnded, JobStatusMissed:
		return true
	}
	return false
}

// IsTerminal reports whether the job can no longer change status
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusCancelled, JobStatusAutoEnded, JobStatusMissed:
		return true
	}
	return false
}

// Job is the schedulable unit of field work created when a quotation is sent
type Job struct {
	BaseModel
	CompanyID uuid.UUID `gorm:"type:uuid;not null;column:company_id;uniqueIndex:uq_jobs_company_number"`
	Company   *Company  `gorm:"foreignKey:CompanyID"`
	// JobNumber is sequential per company, first issued value is 1001
	JobNumber   int        `gorm:"not null;column:job_number;uniqueIndex:uq_jobs_company_number"`
	QuotationID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex;column:quotation_id"`
	Quotation   *Quotation `gorm:"foreignKey:QuotationID"`
	Status      JobStatus  `gorm:"type:varchar(50);not null;default:'PENDING';index"`

	// ScheduledStart/End are copied from the quotation when the job is
	// created and never re-derived afterwards.
	ScheduledStart time.Time `gorm:"not null;column:scheduled_start;index"`
	ScheduledEnd   time.Time `gorm:"not null;column:scheduled_end;index"`

	// ActualStart is set exactly once when the crew starts the job
	ActualStart *time.Time `gorm:"column:actual_start"`
	ActualEnd   *time.Time `gorm:"column:actual_end"`

	Crew []JobCrew `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`
}

// TotalSeconds returns the allotted working time for the job
func (j *Job) TotalSeconds() int64 {
	return int64(j.ScheduledEnd.Sub(j.ScheduledStart) / time.Second)
}

// CrewRole represents the role of an employee on a job
type CrewRole string

const (
	CrewRoleLead   CrewRole = "LEAD"
	CrewRoleDriver CrewRole = "DRIVER"
	CrewRoleMover  CrewRole = "MOVER"
)

// IsValid checks if the CrewRole is a valid enum value
func (r CrewRole) IsValid() bool {
	switch r {
	case CrewRoleLead, CrewRoleDriver, CrewRoleMover:
		return true
	}
	return false
}

// JobCrew assigns an employee to a job with a role.
// A job has at most one assignment per employee.
type JobCrew struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	JobID     uuid.UUID `gorm:"type:uuid;not null;column:job_id;uniqueIndex:uq_job_crew_job_user"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;column:user_id;uniqueIndex:uq_job_crew_job_user"`
	User      *User     `gorm:"foreignKey:UserID"`
	Role      CrewRole  `gorm:"type:varchar(50);not null"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName overrides the default table name
func (JobCrew) TableName() string {
	return "job_crew"
}

// NotificationType represents the type of notification
type NotificationType string

const (
	NotificationTypeQuoteSigned   NotificationType = "QUOTE_SIGNED"
	NotificationTypeQuoteRejected NotificationType = "QUOTE_REJECTED"
	NotificationTypeQuoteExpired  NotificationType = "QUOTE_EXPIRED"
	NotificationTypeJobConfirmed  NotificationType = "JOB_CONFIRMED"
	NotificationTypeJobStarted    NotificationType = "JOB_STARTED"
	NotificationTypeJobCompleted  NotificationType = "JOB_COMPLETED"
	NotificationTypeJobMissed     NotificationType = "JOB_MISSED"
	NotificationTypeJobAutoEnded  NotificationType = "JOB_AUTO_ENDED"
)

// Notification represents a user notification
type Notification struct {
	BaseModel
	UserID      uuid.UUID        `gorm:"type:uuid;not null;index;column:user_id"`
	Type        NotificationType `gorm:"type:varchar(50);not null"`
	Title       string           `gorm:"type:varchar(200);not null"`
	Message     string           `gorm:"type:varchar(500);not null"`
	Read        bool             `gorm:"column:read;not null;default:false;index"`
	ReadAt      *time.Time
	JobID       *uuid.UUID `gorm:"type:uuid;column:job_id"`
	QuotationID *uuid.UUID `gorm:"type:uuid;column:quotation_id"`
}

// SequenceKind identifies which per-company counter a sequence row tracks
type SequenceKind string

const (
	SequenceKindQuote SequenceKind = "quote"
	SequenceKindJob   SequenceKind = "job"
)

// NumberSequence tracks the last issued quote/job number per company.
// Rows are advanced under SELECT FOR UPDATE, see repository.
type NumberSequence struct {
	ID         uuid.UUID    `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CompanyID  uuid.UUID    `gorm:"type:uuid;not null;column:company_id;uniqueIndex:uq_number_sequences_company_kind"`
	Kind       SequenceKind `gorm:"type:varchar(20);not null;uniqueIndex:uq_number_sequences_company_kind"`
	LastNumber int          `gorm:"not null;column:last_number"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}
