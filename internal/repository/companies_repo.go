package repository

import (
	"context"

	"clientdesk-data/internal/domain"
)

// CompaniesRepository data access for companies.
// Tenant-scoped, soft-delete aware.
type CompaniesRepository interface {
	// GetCompany fetches one company by id. ErrNotFound when missing or deleted.
	GetCompany(ctx context.Context, tenantID, companyID string) (*domain.Company, error)

	// GetOrCreateByName resolves a company name (case-insensitive exact match)
	// to an id, creating the row when no match exists. The create is a
	// conditional insert backed by the partial unique index, so concurrent
	// callers converge on a single row instead of racing into duplicates.
	GetOrCreateByName(ctx context.Context, tenantID, name string) (string, error)

	// ListCompanies returns one page ordered by company_name plus the total.
	ListCompanies(ctx context.Context, tenantID, search string, offset, limit int) ([]*domain.Company, int, error)
}
