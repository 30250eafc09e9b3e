package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/domain"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail looks a user up for login, so no company scope applies
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) List(ctx context.Context, role *domain.UserRole, availableOnly bool) ([]domain.User, error) {
	var users []domain.User

	query := r.db.WithContext(ctx).Model(&domain.User{}).Where("is_active = ?", true)
	query = ApplyCompanyScope(ctx, query)

	if role != nil {
		query = query.Where("role = ?", *role)
	}
	if availableOnly {
		query = query.Where("is_available = ?", true)
	}

	err := query.Order("first_name ASC, last_name ASC").Find(&users).Error
	return users, err
}

// ListOwnersByCompany returns a company's active owners. Takes the
// company id explicitly because the sweep calls it without a user context.
func (r *UserRepository) ListOwnersByCompany(ctx context.Context, companyID uuid.UUID) ([]domain.User, error) {
	var users []domain.User
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND role = ? AND is_active = ?", companyID, domain.UserRoleOwner, true).
		Find(&users).Error
	return users, err
}

// GetByIDs returns the users for a set of ids, company scoped
func (r *UserRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.User, error) {
	var users []domain.User
	query := r.db.WithContext(ctx).Where("id IN ?", ids)
	query = ApplyCompanyScope(ctx, query)
	err := query.Find(&users).Error
	return users, err
}
