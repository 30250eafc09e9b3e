package service_test

import (
	"context"
	"testing"

	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/auth"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/domain"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/repository"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/service"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newNotificationService(db *gorm.DB) *service.NotificationService {
	return service.NewNotificationService(
		repository.NewNotificationRepository(db),
		repository.NewUserRepository(db),
		zap.NewNop(),
	)
}

func TestNotificationService_NotifyOwners(t *testing.T) {
	db := testutil.SetupTestDB(t)
	company := testutil.CreateTestCompany(t, db, "Flytte AS")
	first := testutil.CreateTestUser(t, db, company.ID, "owner1@example.com", domain.UserRoleOwner)
	second := testutil.CreateTestUser(t, db, company.ID, "owner2@example.com", domain.UserRoleOwner)
	testutil.CreateTestUser(t, db, company.ID, "crew@example.com", domain.UserRoleEmployee)
	svc := newNotificationService(db)

	svc.NotifyOwners(context.Background(), company.ID, domain.NotificationTypeQuoteSigned,
		"Quote signed", "Quote #1001 was signed", nil, nil)

	// Both owners hear about it, the employee does not
	var count int64
	require.NoError(t, db.Model(&domain.Notification{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	for _, owner := range []*domain.User{first, second} {
		var n int64
		require.NoError(t, db.Model(&domain.Notification{}).
			Where("user_id = ?", owner.ID).Count(&n).Error)
		assert.Equal(t, int64(1), n)
	}
}

func TestNotificationService_MarkAsRead_Ownership(t *testing.T) {
	db := testutil.SetupTestDB(t)
	company := testutil.CreateTestCompany(t, db, "Flytte AS")
	owner := testutil.CreateTestUser(t, db, company.ID, "owner@example.com", domain.UserRoleOwner)
	other := testutil.CreateTestUser(t, db, company.ID, "crew@example.com", domain.UserRoleEmployee)
	svc := newNotificationService(db)

	svc.NotifyUser(context.Background(), owner.ID, domain.NotificationTypeJobStarted,
		"Job started", "Job #1001 has started", nil, nil)

	var notification domain.Notification
	require.NoError(t, db.Where("user_id = ?", owner.ID).First(&notification).Error)

	// Someone else's notification cannot be marked
	otherCtx := auth.WithUserContext(context.Background(), testutil.UserContext(other))
	err := svc.MarkAsRead(otherCtx, notification.ID)
	assert.ErrorIs(t, err, service.ErrNotificationNotOwned)

	ownerCtx := auth.WithUserContext(context.Background(), testutil.UserContext(owner))
	require.NoError(t, svc.MarkAsRead(ownerCtx, notification.ID))

	require.NoError(t, db.First(&notification, notification.ID).Error)
	assert.True(t, notification.Read)

	// Marking twice is a no-op
	require.NoError(t, svc.MarkAsRead(ownerCtx, notification.ID))
}

func TestNotificationService_UnreadCountAndMarkAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	company := testutil.CreateTestCompany(t, db, "Flytte AS")
	owner := testutil.CreateTestUser(t, db, company.ID, "owner@example.com", domain.UserRoleOwner)
	svc := newNotificationService(db)
	ctx := auth.WithUserContext(context.Background(), testutil.UserContext(owner))

	for i := 0; i < 3; i++ {
		svc.NotifyUser(context.Background(), owner.ID, domain.NotificationTypeJobCompleted,
			"Job completed", "Job was completed", nil, nil)
	}

	unread, err := svc.GetUnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, unread.Count)

	require.NoError(t, svc.MarkAllAsRead(ctx))

	unread, err = svc.GetUnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, unread.Count)
}

func TestNotificationService_GetForCurrentUser_Filters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	company := testutil.CreateTestCompany(t, db, "Flytte AS")
	owner := testutil.CreateTestUser(t, db, company.ID, "owner@example.com", domain.UserRoleOwner)
	svc := newNotificationService(db)
	ctx := auth.WithUserContext(context.Background(), testutil.UserContext(owner))

	svc.NotifyUser(context.Background(), owner.ID, domain.NotificationTypeQuoteSigned,
		"Quote signed", "Quote #1001 was signed", nil, nil)
	svc.NotifyUser(context.Background(), owner.ID, domain.NotificationTypeJobMissed,
		"Job missed", "Job #1001 was missed", nil, nil)

	page, err := svc.GetForCurrentUser(ctx, 1, 20, false, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	page, err = svc.GetForCurrentUser(ctx, 1, 20, false, string(domain.NotificationTypeJobMissed))
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	_, err = svc.GetForCurrentUser(context.Background(), 1, 20, false, "")
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}
