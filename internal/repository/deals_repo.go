package repository

import (
	"context"

	"clientdesk-data/internal/domain"
)

// DealFilters deal list filtering.
type DealFilters struct {
	PipelineID string
	StageID    string
	ContactID  string
	Status     string
}

// PipelinesRepository data access for pipeline boards and their stages.
type PipelinesRepository interface {
	// GetPipeline loads a pipeline with its stages ordered by position.
	GetPipeline(ctx context.Context, tenantID, pipelineID string) (*domain.Pipeline, error)

	// ListPipelines returns all non-deleted pipelines with stages loaded.
	ListPipelines(ctx context.Context, tenantID string) ([]*domain.Pipeline, error)

	// CreatePipeline inserts the pipeline and its stages in one transaction.
	CreatePipeline(ctx context.Context, pipeline *domain.Pipeline) (string, error)
}

// DealsRepository data access for deals.
type DealsRepository interface {
	GetDeal(ctx context.Context, tenantID, dealID string) (*domain.Deal, error)
	ListDeals(ctx context.Context, tenantID string, filters DealFilters, offset, limit int) ([]*domain.Deal, int, error)
	CreateDeal(ctx context.Context, tenantID string, deal *domain.Deal) (string, error)

	// UpdateDeal replaces the mutable fields (stage moves included).
	UpdateDeal(ctx context.Context, tenantID, dealID string, deal *domain.Deal) error
	SoftDeleteDeal(ctx context.Context, tenantID, dealID string) error
}
