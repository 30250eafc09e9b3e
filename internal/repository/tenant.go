package repository

import (
	"context"

	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/auth"
	"gorm.io/gorm"
)

// MaxPageSize is the maximum allowed page size for paginated queries
const MaxPageSize = 200

// NormalizePage clamps page/pageSize to sane bounds
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// ApplyCompanyScope restricts a query to the authenticated user's company.
// Every authenticated request carries exactly one company in its token, so
// the scope is unconditional whenever a user context is present.
func ApplyCompanyScope(ctx context.Context, query *gorm.DB) *gorm.DB {
	if companyID, ok := auth.CompanyScope(ctx); ok {
		return query.Where("company_id = ?", companyID)
	}
	return query
}

// ApplyCompanyScopeWithAlias scopes on a specific table's company_id.
// Use when joins make the bare column ambiguous.
func ApplyCompanyScopeWithAlias(ctx context.Context, query *gorm.DB, tableAlias string) *gorm.DB {
	if companyID, ok := auth.CompanyScope(ctx); ok {
		return query.Where(tableAlias+".company_id = ?", companyID)
	}
	return query
}
