package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"clientdesk-data/internal/domain"

	"github.com/google/uuid"
)

// MemoryTenantsRepository keeps tenants in memory.
type MemoryTenantsRepository struct {
	mu      sync.RWMutex
	tenants map[string]*domain.Tenant
}

// NewMemoryTenantsRepository creates an empty in-memory tenants Repository.
func NewMemoryTenantsRepository() *MemoryTenantsRepository {
	return &MemoryTenantsRepository{tenants: map[string]*domain.Tenant{}}
}

var _ TenantsRepository = (*MemoryTenantsRepository)(nil)

func (r *MemoryTenantsRepository) GetTenant(_ context.Context, tenantID string) (*domain.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tenants[tenantID]
	if !ok {
		return nil, fmt.Errorf("tenant %s: %w", tenantID, ErrNotFound)
	}
	dup := *t
	return &dup, nil
}

func (r *MemoryTenantsRepository) ListTenants(_ context.Context, filters TenantFilters, page, size int) ([]*domain.Tenant, int, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 50
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	all := []*domain.Tenant{}
	for _, t := range r.tenants {
		if filters.Status != "" && t.Status != filters.Status {
			continue
		}
		if filters.Search != "" && !strings.Contains(strings.ToLower(t.TenantName), strings.ToLower(filters.Search)) {
			continue
		}
		all = append(all, t)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].TenantName < all[j].TenantName
	})

	total := len(all)
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	tenants := make([]*domain.Tenant, 0, end-start)
	for _, t := range all[start:end] {
		dup := *t
		tenants = append(tenants, &dup)
	}
	return tenants, total, nil
}

func (r *MemoryTenantsRepository) CreateTenant(_ context.Context, tenant *domain.Tenant) (string, error) {
	if tenant.TenantName == "" {
		return "", fmt.Errorf("tenant_name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t := *tenant
	t.TenantID = uuid.NewString()
	if t.Status == "" {
		t.Status = "active"
	}
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	r.tenants[t.TenantID] = &t
	return t.TenantID, nil
}

func (r *MemoryTenantsRepository) SetTenantStatus(_ context.Context, tenantID, status string) error {
	if tenantID == "" || status == "" {
		return fmt.Errorf("tenant_id and status are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tenants[tenantID]
	if !ok {
		return fmt.Errorf("tenant %s: %w", tenantID, ErrNotFound)
	}
	t.Status = status
	t.UpdatedAt = time.Now()
	return nil
}

// SeedTenant inserts a tenant with a fixed id, for dev mode bootstrap.
func (r *MemoryTenantsRepository) SeedTenant(tenant *domain.Tenant) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := *tenant
	if t.Status == "" {
		t.Status = "active"
	}
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	r.tenants[t.TenantID] = &t
}
