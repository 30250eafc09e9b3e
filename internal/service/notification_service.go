package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/auth"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/domain"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/mapper"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNotificationNotOwned is returned when trying to access a notification owned by another user
var ErrNotificationNotOwned = errors.New("notification does not belong to current user")

// NotificationService handles business logic for notifications
type NotificationService struct {
	notificationRepo *repository.NotificationRepository
	userRepo         *repository.UserRepository
	logger           *zap.Logger
}

// NewNotificationService creates a new NotificationService instance
func NewNotificationService(
	notificationRepo *repository.NotificationRepository,
	userRepo *repository.UserRepository,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		logger:           logger,
	}
}

// NotifyUser creates a notification for a specific user. Failures are
// logged and swallowed so a notification write never fails the lifecycle
// transition that triggered it.
func (s *NotificationService) NotifyUser(
	ctx context.Context,
	userID uuid.UUID,
	notificationType domain.NotificationType,
	title string,
	message string,
	jobID *uuid.UUID,
	quotationID *uuid.UUID,
) {
	notification := &domain.Notification{
		UserID:      userID,
		Type:        notificationType,
		Title:       title,
		Message:     message,
		Read:        false,
		JobID:       jobID,
		QuotationID: quotationID,
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Warn("failed to create notification",
			zap.String("userID", userID.String()),
			zap.String("type", string(notificationType)),
			zap.Error(err),
		)
		return
	}

	s.logger.Debug("notification created",
		zap.String("notificationID", notification.ID.String()),
		zap.String("userID", userID.String()),
		zap.String("type", string(notificationType)),
	)
}

// NotifyUsers creates the same notification for multiple users
func (s *NotificationService) NotifyUsers(
	ctx context.Context,
	userIDs []uuid.UUID,
	notificationType domain.NotificationType,
	title string,
	message string,
	jobID *uuid.UUID,
	quotationID *uuid.UUID,
) {
	for _, userID := range userIDs {
		s.NotifyUser(ctx, userID, notificationType, title, message, jobID, quotationID)
	}
}

// GetForCurrentUser returns notifications for the current user with pagination
func (s *NotificationService) GetForCurrentUser(
	ctx context.Context,
	page int,
	pageSize int,
	unreadOnly bool,
	notificationType string,
) (*domain.PaginatedResponse, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	page, pageSize = repository.NormalizePage(page, pageSize)

	notifications, total, err := s.notificationRepo.ListByUser(ctx, userCtx.UserID, page, pageSize, unreadOnly, notificationType)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	dtos := make([]domain.NotificationDTO, len(notifications))
	for i := range notifications {
		dtos[i] = mapper.ToNotificationDTO(&notifications[i])
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// MarkAsRead marks a notification as read, verifying ownership
func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID uuid.UUID) error {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return ErrUnauthorized
	}

	notification, err := s.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get notification: %w", err)
	}

	if notification.UserID != userCtx.UserID {
		return ErrNotificationNotOwned
	}

	// Already read, nothing to do
	if notification.Read {
		return nil
	}

	if err := s.notificationRepo.MarkAsRead(ctx, notificationID); err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}

	return nil
}

// MarkAllAsRead marks all notifications for the current user as read
func (s *NotificationService) MarkAllAsRead(ctx context.Context) error {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return ErrUnauthorized
	}

	if err := s.notificationRepo.MarkAllAsRead(ctx, userCtx.UserID); err != nil {
		return fmt.Errorf("failed to mark all notifications as read: %w", err)
	}

	s.logger.Info("all notifications marked as read",
		zap.String("userID", userCtx.UserID.String()),
	)

	return nil
}

// GetUnreadCount returns the count of unread notifications for the current user
func (s *NotificationService) GetUnreadCount(ctx context.Context) (*domain.UnreadCountDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	count, err := s.notificationRepo.CountUnread(ctx, userCtx.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return &domain.UnreadCountDTO{Count: count}, nil
}

// NotifyOwners sends the same notification to every active owner of a company.
// Used by lifecycle transitions that the office should hear about.
func (s *NotificationService) NotifyOwners(
	ctx context.Context,
	companyID uuid.UUID,
	notificationType domain.NotificationType,
	title string,
	message string,
	jobID *uuid.UUID,
	quotationID *uuid.UUID,
) {
	owners, err := s.userRepo.ListOwnersByCompany(ctx, companyID)
	if err != nil {
		s.logger.Warn("failed to list owners for notification",
			zap.String("companyID", companyID.String()),
			zap.Error(err),
		)
		return
	}
	for _, owner := range owners {
		s.NotifyUser(ctx, owner.ID, notificationType, title, message, jobID, quotationID)
	}
}
