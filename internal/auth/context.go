package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/domain"
)

// UserContext holds authenticated user information
type UserContext struct {
	UserID    uuid.UUID
	CompanyID uuid.UUID
	Email     string
	FullName  string
	Role      domain.UserRole
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// MustFromContext extracts user context or panics
func MustFromContext(ctx context.Context) *UserContext {
	user, ok := FromContext(ctx)
	if !ok {
		panic("user context not found in context")
	}
	return user
}

// IsOwner checks if the user is a company owner
func (u *UserContext) IsOwner() bool {
	return u.Role == domain.UserRoleOwner
}

// CompanyScope returns the company the user's queries are scoped to
func CompanyScope(ctx context.Context) (uuid.UUID, bool) {
	user, ok := FromContext(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return user.CompanyID, true
}
