package service

import (
	"context"

	"clientdesk-data/internal/domain"
	"clientdesk-data/internal/normalize"
	"clientdesk-data/internal/repository"

	"go.uber.org/zap"
)

// CompanyService company read operations plus the find-or-create resolver.
type CompanyService interface {
	ListCompanies(ctx context.Context, req ListCompaniesRequest) (*ListCompaniesResponse, error)

	// ResolveCompany finds the tenant's company by case-insensitive name,
	// creating it when absent. Two names differing only in letter case
	// resolve to the same company id.
	ResolveCompany(ctx context.Context, tenantID, name string) (*CompanyDTO, error)
}

type companyService struct {
	companiesRepo repository.CompaniesRepository
	logger        *zap.Logger
}

// NewCompanyService creates a CompanyService instance.
func NewCompanyService(companiesRepo repository.CompaniesRepository, logger *zap.Logger) CompanyService {
	return &companyService{companiesRepo: companiesRepo, logger: logger}
}

// ListCompaniesRequest company list query.
type ListCompaniesRequest struct {
	TenantID string
	Search   string
	Offset   int
	Limit    int
}

// ListCompaniesResponse ordered page plus total match count.
type ListCompaniesResponse struct {
	Items []*CompanyDTO
	Total int
}

// CompanyDTO API representation of a company.
type CompanyDTO struct {
	CompanyID   string `json:"company_id"`
	CompanyName string `json:"company_name"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func (s *companyService) ListCompanies(ctx context.Context, req ListCompaniesRequest) (*ListCompaniesResponse, error) {
	companies, total, err := s.companiesRepo.ListCompanies(ctx, req.TenantID, req.Search, req.Offset, req.Limit)
	if err != nil {
		s.logger.Error("Failed to list companies", zap.String("tenant_id", req.TenantID), zap.Error(err))
		return nil, err
	}

	items := make([]*CompanyDTO, 0, len(companies))
	for _, c := range companies {
		items = append(items, companyToDTO(c))
	}
	return &ListCompaniesResponse{Items: items, Total: total}, nil
}

func (s *companyService) ResolveCompany(ctx context.Context, tenantID, name string) (*CompanyDTO, error) {
	normalized := normalize.Text(name)
	if normalized == nil {
		return nil, NewValidationError("company_name", "is required")
	}

	companyID, err := s.companiesRepo.GetOrCreateByName(ctx, tenantID, *normalized)
	if err != nil {
		s.logger.Error("Failed to resolve company",
			zap.String("tenant_id", tenantID),
			zap.String("company_name", *normalized),
			zap.Error(err),
		)
		return nil, err
	}

	company, err := s.companiesRepo.GetCompany(ctx, tenantID, companyID)
	if err != nil {
		return nil, err
	}
	return companyToDTO(company), nil
}

func companyToDTO(c *domain.Company) *CompanyDTO {
	return &CompanyDTO{
		CompanyID:   c.CompanyID,
		CompanyName: c.CompanyName,
		CreatedAt:   normalize.FormatTimestamp(c.CreatedAt),
		UpdatedAt:   normalize.FormatTimestamp(c.UpdatedAt),
	}
}
