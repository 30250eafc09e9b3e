package service_test

import (
	"context"
	"testing"

	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/auth"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/clock"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/config"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/domain"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/repository"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/service"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newUserService(db *gorm.DB) (*service.UserService, *auth.TokenIssuer) {
	issuer := auth.NewTokenIssuer(&config.SecurityConfig{
		JWTSecret:      "test-secret-do-not-use-in-production",
		JWTExpiryHours: 24,
	})
	svc := service.NewUserService(repository.NewUserRepository(db), issuer, clock.NewFake(baseTime), zap.NewNop())
	return svc, issuer
}

func TestUserService_Login(t *testing.T) {
	db := testutil.SetupTestDB(t)
	company := testutil.CreateTestCompany(t, db, "Flytte AS")
	user := testutil.CreateTestUser(t, db, company.ID, "owner@example.com", domain.UserRoleOwner)
	svc, issuer := newUserService(db)

	resp, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "owner@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, user.ID, resp.User.ID)

	userCtx, err := issuer.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userCtx.UserID)
	assert.Equal(t, company.ID, userCtx.CompanyID)
}

// Unknown email, wrong password and a deactivated account all fail the
// same way so login cannot be used to probe for registered emails.
func TestUserService_Login_UniformFailure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	company := testutil.CreateTestCompany(t, db, "Flytte AS")
	testutil.CreateTestUser(t, db, company.ID, "owner@example.com", domain.UserRoleOwner)
	svc, _ := newUserService(db)

	_, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "nobody@example.com",
		Password: "password123",
	})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "owner@example.com",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	require.NoError(t, db.Model(&domain.User{}).
		Where("email = ?", "owner@example.com").
		Update("is_active", false).Error)

	_, err = svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "owner@example.com",
		Password: "password123",
	})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestUserService_Me(t *testing.T) {
	db := testutil.SetupTestDB(t)
	company := testutil.CreateTestCompany(t, db, "Flytte AS")
	user := testutil.CreateTestUser(t, db, company.ID, "owner@example.com", domain.UserRoleOwner)
	svc, _ := newUserService(db)

	ctx := auth.WithUserContext(context.Background(), testutil.UserContext(user))
	dto, err := svc.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, user.ID, dto.ID)
	assert.Equal(t, "owner@example.com", dto.Email)

	_, err = svc.Me(context.Background())
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestUserService_ListEmployees(t *testing.T) {
	db := testutil.SetupTestDB(t)
	company := testutil.CreateTestCompany(t, db, "Flytte AS")
	owner := testutil.CreateTestUser(t, db, company.ID, "owner@example.com", domain.UserRoleOwner)
	testutil.CreateTestUser(t, db, company.ID, "crew1@example.com", domain.UserRoleEmployee)
	busy := testutil.CreateTestUser(t, db, company.ID, "crew2@example.com", domain.UserRoleEmployee)
	require.NoError(t, db.Model(busy).Update("is_available", false).Error)
	svc, _ := newUserService(db)

	ctx := auth.WithUserContext(context.Background(), testutil.UserContext(owner))

	all, err := svc.ListEmployees(ctx, nil, false)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	role := domain.UserRoleEmployee
	employees, err := svc.ListEmployees(ctx, &role, false)
	require.NoError(t, err)
	assert.Len(t, employees, 2)

	available, err := svc.ListEmployees(ctx, &role, true)
	require.NoError(t, err)
	assert.Len(t, available, 1)

	bogus := domain.UserRole("MANAGER")
	_, err = svc.ListEmployees(ctx, &bogus, false)
	assert.ErrorIs(t, err, service.ErrValidation)
}
