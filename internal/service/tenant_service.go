package service

import (
	"context"

	"clientdesk-data/internal/domain"
	"clientdesk-data/internal/normalize"
	"clientdesk-data/internal/repository"

	"go.uber.org/zap"
)

var tenantStatuses = map[string]bool{
	"active":    true,
	"suspended": true,
	"deleted":   true,
}

// TenantService platform-scoped tenant administration.
type TenantService interface {
	ListTenants(ctx context.Context, req ListTenantsRequest) (*ListTenantsResponse, error)
	CreateTenant(ctx context.Context, req CreateTenantRequest) (*TenantDTO, error)
	SetTenantStatus(ctx context.Context, tenantID, status string) error
}

type tenantService struct {
	tenantsRepo repository.TenantsRepository
	logger      *zap.Logger
}

// NewTenantService creates a TenantService instance.
func NewTenantService(tenantsRepo repository.TenantsRepository, logger *zap.Logger) TenantService {
	return &tenantService{tenantsRepo: tenantsRepo, logger: logger}
}

// ListTenantsRequest tenant list query (page/size, admin surface).
type ListTenantsRequest struct {
	Status string
	Search string
	Page   int
	Size   int
}

// ListTenantsResponse tenant page plus total count.
type ListTenantsResponse struct {
	Items []*TenantDTO
	Total int
}

// CreateTenantRequest new tenant.
type CreateTenantRequest struct {
	TenantName string
}

// TenantDTO API representation of a tenant.
type TenantDTO struct {
	TenantID   string `json:"tenant_id"`
	TenantName string `json:"tenant_name"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func (s *tenantService) ListTenants(ctx context.Context, req ListTenantsRequest) (*ListTenantsResponse, error) {
	filters := repository.TenantFilters{Status: req.Status, Search: req.Search}
	tenants, total, err := s.tenantsRepo.ListTenants(ctx, filters, req.Page, req.Size)
	if err != nil {
		s.logger.Error("Failed to list tenants", zap.Error(err))
		return nil, err
	}

	items := make([]*TenantDTO, 0, len(tenants))
	for _, t := range tenants {
		items = append(items, tenantToDTO(t))
	}
	return &ListTenantsResponse{Items: items, Total: total}, nil
}

func (s *tenantService) CreateTenant(ctx context.Context, req CreateTenantRequest) (*TenantDTO, error) {
	name := normalize.Text(req.TenantName)
	if name == nil {
		return nil, NewValidationError("tenant_name", "is required")
	}

	tenantID, err := s.tenantsRepo.CreateTenant(ctx, &domain.Tenant{TenantName: *name})
	if err != nil {
		s.logger.Error("Failed to create tenant", zap.Error(err))
		return nil, err
	}

	tenant, err := s.tenantsRepo.GetTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Created tenant", zap.String("tenant_id", tenantID), zap.String("tenant_name", *name))
	return tenantToDTO(tenant), nil
}

func (s *tenantService) SetTenantStatus(ctx context.Context, tenantID, status string) error {
	if !tenantStatuses[status] {
		return NewValidationError("status", "must be active, suspended or deleted")
	}
	return s.tenantsRepo.SetTenantStatus(ctx, tenantID, status)
}

func tenantToDTO(t *domain.Tenant) *TenantDTO {
	return &TenantDTO{
		TenantID:   t.TenantID,
		TenantName: t.TenantName,
		Status:     t.Status,
		CreatedAt:  normalize.FormatTimestamp(t.CreatedAt),
		UpdatedAt:  normalize.FormatTimestamp(t.UpdatedAt),
	}
}
