package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/auth"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/clock"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/domain"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/mapper"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService handles login and the employee roster
type UserService struct {
	userRepo *repository.UserRepository
	issuer   *auth.TokenIssuer
	clock    clock.Clock
	logger   *zap.Logger
}

func NewUserService(
	userRepo *repository.UserRepository,
	issuer *auth.TokenIssuer,
	clk clock.Clock,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo: userRepo,
		issuer:   issuer,
		clock:    clk,
		logger:   logger,
	}
}

// Login verifies credentials and issues an access token. Failed lookups
// and bad passwords return the same error so callers cannot probe for
// registered emails.
func (s *UserService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("failed login attempt", zap.String("email", req.Email))
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.issuer.Issue(user, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("user logged in",
		zap.String("userID", user.ID.String()),
		zap.String("companyID", user.CompanyID.String()),
	)

	return &domain.LoginResponse{
		Token:     token,
		ExpiresAt: domain.FormatInstant(expiresAt),
		User:      mapper.ToUserDTO(user),
	}, nil
}

// Me returns the authenticated user's profile
func (s *UserService) Me(ctx context.Context) (*domain.UserDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	user, err := s.userRepo.GetByID(ctx, userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	dto := mapper.ToUserDTO(user)
	return &dto, nil
}

// ListEmployees returns the company's active users, optionally filtered
// by role or availability. Used by the crew assignment screen.
func (s *UserService) ListEmployees(ctx context.Context, role *domain.UserRole, availableOnly bool) ([]domain.UserDTO, error) {
	if role != nil && !role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, *role)
	}

	users, err := s.userRepo.List(ctx, role, availableOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	dtos := make([]domain.UserDTO, len(users))
	for i := range users {
		dtos[i] = mapper.ToUserDTO(&users[i])
	}
	return dtos, nil
}
