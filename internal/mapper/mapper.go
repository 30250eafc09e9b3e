package mapper

import (
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/domain"
)

// ToCustomerDTO converts Customer to CustomerDTO
func ToCustomerDTO(customer *domain.Customer) domain.CustomerDTO {
	return domain.CustomerDTO{
		ID:         customer.ID,
		Name:       customer.Name,
		Email:      customer.Email,
		Phone:      customer.Phone,
		Address:    customer.Address,
		City:       customer.City,
		PostalCode: customer.PostalCode,
		Notes:      customer.Notes,
		CreatedAt:  domain.FormatInstant(customer.CreatedAt),
		UpdatedAt:  domain.FormatInstant(customer.UpdatedAt),
	}
}

// ToUserDTO converts User to UserDTO
func ToUserDTO(user *domain.User) domain.UserDTO {
	return domain.UserDTO{
		ID:          user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		FullName:    user.FullName(),
		Phone:       user.Phone,
		Role:        user.Role,
		IsAvailable: user.IsAvailable,
		IsActive:    user.IsActive,
		CreatedAt:   domain.FormatInstant(user.CreatedAt),
	}
}

// ToQuotationDTO converts Quotation to QuotationDTO
func ToQuotationDTO(q *domain.Quotation) domain.QuotationDTO {
	dto := domain.QuotationDTO{
		ID:                 q.ID,
		QuoteNumber:        q.QuoteNumber,
		CustomerID:         q.CustomerID,
		Status:             q.Status,
		MovingDate:         domain.FormatDatePtr(q.MovingDate),
		StartTime:          q.StartTime,
		EstimatedHours:     q.EstimatedHours,
		ScheduledStart:     domain.FormatInstantPtr(q.ScheduledStart),
		ScheduledEnd:       domain.FormatInstantPtr(q.ScheduledEnd),
		OriginAddress:      q.OriginAddress,
		DestinationAddress: q.DestinationAddress,
		BasePrice:          q.BasePrice,
		ExtraServicesPrice: q.ExtraServicesPrice,
		TotalPrice:         q.TotalPrice,
		ValidityDays:       q.ValidityDays,
		ExpiresAt:          domain.FormatInstantPtr(q.ExpiresAt),
		SignedBy:           q.SignedBy,
		SignedAt:           domain.FormatInstantPtr(q.SignedAt),
		HasSignature:       q.SignaturePath != "",
		CreatedAt:          domain.FormatInstant(q.CreatedAt),
		UpdatedAt:          domain.FormatInstant(q.UpdatedAt),
	}

	if q.Customer != nil {
		dto.CustomerName = q.Customer.Name
	}
	if q.Job != nil {
		dto.JobID = &q.Job.ID
	}

	return dto
}

// ToPublicQuotationDTO converts Quotation to the customer-facing projection
func ToPublicQuotationDTO(q *domain.Quotation) domain.PublicQuotationDTO {
	dto := domain.PublicQuotationDTO{
		QuoteNumber:        q.QuoteNumber,
		Status:             q.Status,
		MovingDate:         domain.FormatDatePtr(q.MovingDate),
		StartTime:          q.StartTime,
		OriginAddress:      q.OriginAddress,
		DestinationAddress: q.DestinationAddress,
		TotalPrice:         q.TotalPrice,
		ExpiresAt:          domain.FormatInstantPtr(q.ExpiresAt),
	}

	if q.Customer != nil {
		dto.CustomerName = q.Customer.Name
	}
	if q.Company != nil {
		dto.CompanyName = q.Company.Name
	}

	return dto
}

// ToJobDTO converts Job to JobDTO
func ToJobDTO(job *domain.Job) domain.JobDTO {
	crew := make([]domain.JobCrewDTO, len(job.Crew))
	for i, c := range job.Crew {
		crew[i] = ToJobCrewDTO(&c)
	}

	dto := domain.JobDTO{
		ID:             job.ID,
		JobNumber:      job.JobNumber,
		QuotationID:    job.QuotationID,
		Status:         job.Status,
		ScheduledStart: domain.FormatInstant(job.ScheduledStart),
		ScheduledEnd:   domain.FormatInstant(job.ScheduledEnd),
		ActualStart:    domain.FormatInstantPtr(job.ActualStart),
		ActualEnd:      domain.FormatInstantPtr(job.ActualEnd),
		TotalSeconds:   job.TotalSeconds(),
		Crew:           crew,
		CreatedAt:      domain.FormatInstant(job.CreatedAt),
		UpdatedAt:      domain.FormatInstant(job.UpdatedAt),
	}

	if job.Quotation != nil {
		dto.QuoteNumber = job.Quotation.QuoteNumber
		if job.Quotation.Customer != nil {
			dto.CustomerName = job.Quotation.Customer.Name
		}
	}

	return dto
}

// ToJobCrewDTO converts JobCrew to JobCrewDTO
func ToJobCrewDTO(c *domain.JobCrew) domain.JobCrewDTO {
	dto := domain.JobCrewDTO{
		UserID: c.UserID,
		Role:   c.Role,
	}
	if c.User != nil {
		dto.FullName = c.User.FullName()
	}
	return dto
}

// ToNotificationDTO converts Notification to NotificationDTO
func ToNotificationDTO(n *domain.Notification) domain.NotificationDTO {
	return domain.NotificationDTO{
		ID:          n.ID,
		Type:        n.Type,
		Title:       n.Title,
		Message:     n.Message,
		Read:        n.Read,
		JobID:       n.JobID,
		QuotationID: n.QuotationID,
		CreatedAt:   domain.FormatInstant(n.CreatedAt),
	}
}
