package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"clientdesk-data/internal/domain"

	"github.com/google/uuid"
)

// MemoryPipelinesRepository keeps pipelines and their stages in memory.
type MemoryPipelinesRepository struct {
	mu        sync.RWMutex
	pipelines map[string]map[string]*domain.Pipeline // tenantID -> pipelineID -> pipeline
}

// NewMemoryPipelinesRepository creates an empty in-memory pipelines Repository.
func NewMemoryPipelinesRepository() *MemoryPipelinesRepository {
	return &MemoryPipelinesRepository{
		pipelines: map[string]map[string]*domain.Pipeline{},
	}
}

var _ PipelinesRepository = (*MemoryPipelinesRepository)(nil)

func copyPipeline(p *domain.Pipeline) *domain.Pipeline {
	dup := *p
	dup.Stages = make([]domain.Stage, len(p.Stages))
	copy(dup.Stages, p.Stages)
	return &dup
}

func (r *MemoryPipelinesRepository) GetPipeline(_ context.Context, tenantID, pipelineID string) (*domain.Pipeline, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.pipelines[tenantID][pipelineID]
	if !ok || p.DeletedAt != nil {
		return nil, fmt.Errorf("pipeline %s: %w", pipelineID, ErrNotFound)
	}
	return copyPipeline(p), nil
}

func (r *MemoryPipelinesRepository) ListPipelines(_ context.Context, tenantID string) ([]*domain.Pipeline, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pipelines := []*domain.Pipeline{}
	for _, p := range r.pipelines[tenantID] {
		if p.DeletedAt != nil {
			continue
		}
		pipelines = append(pipelines, copyPipeline(p))
	}
	sort.Slice(pipelines, func(i, j int) bool {
		return pipelines[i].PipelineName < pipelines[j].PipelineName
	})
	return pipelines, nil
}

func (r *MemoryPipelinesRepository) CreatePipeline(_ context.Context, pipeline *domain.Pipeline) (string, error) {
	tenantID := pipeline.TenantID
	if tenantID == "" || pipeline.PipelineName == "" {
		return "", fmt.Errorf("tenant_id and pipeline_name are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pipelines[tenantID] == nil {
		r.pipelines[tenantID] = map[string]*domain.Pipeline{}
	}

	p := copyPipeline(pipeline)
	p.PipelineID = uuid.NewString()
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	for i := range p.Stages {
		p.Stages[i].StageID = uuid.NewString()
		p.Stages[i].TenantID = tenantID
		p.Stages[i].PipelineID = p.PipelineID
		p.Stages[i].Position = i
	}
	r.pipelines[tenantID][p.PipelineID] = p
	return p.PipelineID, nil
}

// MemoryDealsRepository keeps deals in memory.
type MemoryDealsRepository struct {
	mu    sync.RWMutex
	deals map[string]map[string]*domain.Deal // tenantID -> dealID -> deal
}

// NewMemoryDealsRepository creates an empty in-memory deals Repository.
func NewMemoryDealsRepository() *MemoryDealsRepository {
	return &MemoryDealsRepository{deals: map[string]map[string]*domain.Deal{}}
}

var _ DealsRepository = (*MemoryDealsRepository)(nil)

func (r *MemoryDealsRepository) GetDeal(_ context.Context, tenantID, dealID string) (*domain.Deal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.deals[tenantID][dealID]
	if !ok || d.DeletedAt != nil {
		return nil, fmt.Errorf("deal %s: %w", dealID, ErrNotFound)
	}
	dup := *d
	return &dup, nil
}

func (r *MemoryDealsRepository) ListDeals(_ context.Context, tenantID string, filters DealFilters, offset, limit int) ([]*domain.Deal, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 25
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	all := []*domain.Deal{}
	for _, d := range r.deals[tenantID] {
		if d.DeletedAt != nil {
			continue
		}
		if filters.PipelineID != "" && d.PipelineID != filters.PipelineID {
			continue
		}
		if filters.StageID != "" && d.StageID != filters.StageID {
			continue
		}
		if filters.ContactID != "" && (!d.ContactID.Valid || d.ContactID.String != filters.ContactID) {
			continue
		}
		if filters.Status != "" && d.Status != filters.Status {
			continue
		}
		all = append(all, d)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].DealID > all[j].DealID
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

	deals := make([]*domain.Deal, 0, end-start)
	for _, d := range all[start:end] {
		dup := *d
		deals = append(deals, &dup)
	}
	return deals, total, nil
}

func (r *MemoryDealsRepository) CreateDeal(_ context.Context, tenantID string, deal *domain.Deal) (string, error) {
	if tenantID == "" || deal.Title == "" {
		return "", fmt.Errorf("tenant_id and title are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.deals[tenantID] == nil {
		r.deals[tenantID] = map[string]*domain.Deal{}
	}

	d := *deal
	d.DealID = uuid.NewString()
	d.TenantID = tenantID
	if d.Status == "" {
		d.Status = "open"
	}
	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now
	r.deals[tenantID][d.DealID] = &d
	return d.DealID, nil
}

func (r *MemoryDealsRepository) UpdateDeal(_ context.Context, tenantID, dealID string, deal *domain.Deal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.deals[tenantID][dealID]
	if !ok || existing.DeletedAt != nil {
		return fmt.Errorf("deal %s: %w", dealID, ErrNotFound)
	}

	d := *deal
	d.DealID = dealID
	d.TenantID = tenantID
	d.CreatedAt = existing.CreatedAt
	d.UpdatedAt = time.Now()
	r.deals[tenantID][dealID] = &d
	return nil
}

func (r *MemoryDealsRepository) SoftDeleteDeal(_ context.Context, tenantID, dealID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.deals[tenantID][dealID]
	if !ok || existing.DeletedAt != nil {
		return fmt.Errorf("deal %s: %w", dealID, ErrNotFound)
	}
	now := time.Now()
	existing.DeletedAt = &now
	existing.UpdatedAt = now
	return nil
}
