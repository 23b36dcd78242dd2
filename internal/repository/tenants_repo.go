package repository

import (
	"context"

	"clientdesk-data/internal/domain"
)

// TenantFilters tenant list filtering.
type TenantFilters struct {
	Status string // optional: active/suspended/deleted
	Search string // optional: tenant_name substring
}

// TenantsRepository platform-level tenant management.
// This data is not tenant-scoped; it is only reachable through the
// admin routes.
type TenantsRepository interface {
	GetTenant(ctx context.Context, tenantID string) (*domain.Tenant, error)
	ListTenants(ctx context.Context, filters TenantFilters, page, size int) ([]*domain.Tenant, int, error)
	CreateTenant(ctx context.Context, tenant *domain.Tenant) (string, error)
	SetTenantStatus(ctx context.Context, tenantID, status string) error
}
