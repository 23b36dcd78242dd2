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

// MemoryCompaniesRepository keeps companies in memory.
// GetOrCreateByName is atomic under the repository mutex, which stands in for
// the partial unique index the Postgres implementation relies on.
type MemoryCompaniesRepository struct {
	mu        sync.RWMutex
	companies map[string]map[string]*domain.Company // tenantID -> companyID -> company
}

// NewMemoryCompaniesRepository creates an empty in-memory companies Repository.
func NewMemoryCompaniesRepository() *MemoryCompaniesRepository {
	return &MemoryCompaniesRepository{
		companies: map[string]map[string]*domain.Company{},
	}
}

var _ CompaniesRepository = (*MemoryCompaniesRepository)(nil)

func (r *MemoryCompaniesRepository) GetCompany(_ context.Context, tenantID, companyID string) (*domain.Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.companies[tenantID][companyID]
	if !ok || c.DeletedAt != nil {
		return nil, fmt.Errorf("company %s: %w", companyID, ErrNotFound)
	}
	dup := *c
	return &dup, nil
}

func (r *MemoryCompaniesRepository) GetOrCreateByName(_ context.Context, tenantID, name string) (string, error) {
	if tenantID == "" || name == "" {
		return "", fmt.Errorf("tenant_id and name are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.companies[tenantID] {
		if c.DeletedAt == nil && strings.EqualFold(c.CompanyName, name) {
			return c.CompanyID, nil
		}
	}

	if r.companies[tenantID] == nil {
		r.companies[tenantID] = map[string]*domain.Company{}
	}
	now := time.Now()
	c := &domain.Company{
		CompanyID:   uuid.NewString(),
		TenantID:    tenantID,
		CompanyName: name,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.companies[tenantID][c.CompanyID] = c
	return c.CompanyID, nil
}

func (r *MemoryCompaniesRepository) ListCompanies(_ context.Context, tenantID, search string, offset, limit int) ([]*domain.Company, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 25
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	all := []*domain.Company{}
	for _, c := range r.companies[tenantID] {
		if c.DeletedAt != nil {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(c.CompanyName), strings.ToLower(search)) {
			continue
		}
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CompanyName < all[j].CompanyName
	})

	total := len(all)
	start := offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	page := make([]*domain.Company, 0, end-start)
	for _, c := range all[start:end] {
		dup := *c
		page = append(page, &dup)
	}
	return page, total, nil
}
