// Package testutil provides database helpers for integration tests.
// Tests run against a real PostgreSQL instance because the lifecycle
// code depends on row locking and conditional updates that in-memory
// fakes cannot reproduce.
package testutil

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/auth"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/database"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/domain"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB connects to the test PostgreSQL database.
// It uses environment variables or falls back to docker-compose defaults.
func SetupTestDB(t *testing.T) *gorm.DB {
	host := getEnvOrDefault("DATABASE_HOST", "localhost")
	port := getEnvOrDefault("DATABASE_PORT", "5432")
	user := getEnvOrDefault("DATABASE_USER", "boxxpilot_user")
	password := getEnvOrDefault("DATABASE_PASSWORD", "boxxpilot_password")
	dbname := getEnvOrDefault("DATABASE_NAME", "boxxpilot_test")

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		host, port, user, password, dbname)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err, "Failed to connect to test database. Ensure PostgreSQL is running.")

	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		CleanupTestData(t, db)
	})

	return db
}

// CleanupTestData deletes test data from all tables, children first
func CleanupTestData(t *testing.T, db *gorm.DB) {
	tables := []string{
		"notifications",
		"job_crew",
		"jobs",
		"quotations",
		"customers",
		"number_sequences",
		"users",
		"companies",
	}

	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DELETE FROM %s WHERE id IS NOT NULL", table)).Error; err != nil {
			t.Logf("Note: Could not clean table %s: %v", table, err)
		}
	}
}

// CreateTestCompany creates a company for tests
func CreateTestCompany(t *testing.T, db *gorm.DB, name string) *domain.Company {
	company := &domain.Company{
		Name:  name,
		Email: "office@example.com",
		Phone: "12345678",
	}
	require.NoError(t, db.Create(company).Error)
	return company
}

// CreateTestUser creates a user in the given company. The password is
// always "password123".
func CreateTestUser(t *testing.T, db *gorm.DB, companyID uuid.UUID, email string, role domain.UserRole) *domain.User {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &domain.User{
		CompanyID:    companyID,
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
		IsAvailable:  true,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTestCustomer creates a customer in the given company
func CreateTestCustomer(t *testing.T, db *gorm.DB, companyID uuid.UUID, name string) *domain.Customer {
	customer := &domain.Customer{
		CompanyID: companyID,
		Name:      name,
		Email:     "customer@example.com",
		Phone:     "87654321",
	}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

// UserContext builds the auth context an authenticated request carries
func UserContext(user *domain.User) *auth.UserContext {
	return &auth.UserContext{
		UserID:    user.ID,
		CompanyID: user.CompanyID,
		Email:     user.Email,
		FullName:  user.FullName(),
		Role:      user.Role,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
