// Command seed bootstraps a company and its first owner account.
// There is no self-service signup, so new tenants are provisioned
// from the command line.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/config"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/database"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/domain"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Seed error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	companyName := flag.String("company", "", "company name (required)")
	companyEmail := flag.String("company-email", "", "company contact email")
	companyPhone := flag.String("company-phone", "", "company contact phone")
	ownerEmail := flag.String("email", "", "owner login email (required)")
	ownerPassword := flag.String("password", "", "owner password (required)")
	firstName := flag.String("first-name", "", "owner first name")
	lastName := flag.String("last-name", "", "owner last name")
	flag.Parse()

	if *companyName == "" || *ownerEmail == "" || *ownerPassword == "" {
		flag.Usage()
		return fmt.Errorf("company, email and password are required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}

	ctx := context.Background()
	companyRepo := repository.NewCompanyRepository(db)
	userRepo := repository.NewUserRepository(db)

	company := &domain.Company{
		Name:  *companyName,
		Email: *companyEmail,
		Phone: *companyPhone,
	}
	if err := companyRepo.Create(ctx, company); err != nil {
		return fmt.Errorf("failed to create company: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*ownerPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	owner := &domain.User{
		CompanyID:    company.ID,
		Email:        *ownerEmail,
		PasswordHash: string(hash),
		FirstName:    *firstName,
		LastName:     *lastName,
		Role:         domain.UserRoleOwner,
		IsAvailable:  true,
		IsActive:     true,
	}
	if err := userRepo.Create(ctx, owner); err != nil {
		return fmt.Errorf("failed to create owner: %w", err)
	}

	fmt.Printf("Created company %s (%s) with owner %s\n", company.Name, company.ID, owner.Email)
	return nil
}
