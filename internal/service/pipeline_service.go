package service

import (
	"context"
	"database/sql"
	"errors"

	"clientdesk-data/internal/domain"
	"clientdesk-data/internal/normalize"
	"clientdesk-data/internal/repository"

	"go.uber.org/zap"
)

// PipelineService pipeline boards and the deals attached to them.
type PipelineService interface {
	ListPipelines(ctx context.Context, tenantID string) ([]*PipelineDTO, error)
	CreatePipeline(ctx context.Context, req CreatePipelineRequest) (*PipelineDTO, error)

	ListDeals(ctx context.Context, req ListDealsRequest) (*ListDealsResponse, error)
	CreateDeal(ctx context.Context, req CreateDealRequest) (*DealDTO, error)

	// PatchDeal applies present fields only. A stage move is validated
	// against the deal's pipeline before anything is written.
	PatchDeal(ctx context.Context, tenantID, dealID string, patch DealPatch) (*DealDTO, error)

	DeleteDeal(ctx context.Context, tenantID, dealID string) error
}

type pipelineService struct {
	pipelinesRepo repository.PipelinesRepository
	dealsRepo     repository.DealsRepository
	logger        *zap.Logger
}

// NewPipelineService creates a PipelineService instance.
func NewPipelineService(
	pipelinesRepo repository.PipelinesRepository,
	dealsRepo repository.DealsRepository,
	logger *zap.Logger,
) PipelineService {
	return &pipelineService{
		pipelinesRepo: pipelinesRepo,
		dealsRepo:     dealsRepo,
		logger:        logger,
	}
}

// ============================================
// Request/Response DTOs
// ============================================

// CreatePipelineRequest new board with its ordered stage names.
type CreatePipelineRequest struct {
	TenantID     string
	PipelineName string
	Stages       []string
}

// PipelineDTO API representation of a pipeline board.
type PipelineDTO struct {
	PipelineID   string      `json:"pipeline_id"`
	PipelineName string      `json:"pipeline_name"`
	Stages       []*StageDTO `json:"stages"`
	CreatedAt    string      `json:"created_at"`
	UpdatedAt    string      `json:"updated_at"`
}

// StageDTO ordered column of a board.
type StageDTO struct {
	StageID   string `json:"stage_id"`
	StageName string `json:"stage_name"`
	Position  int    `json:"position"`
}

// ListDealsRequest deal list query.
type ListDealsRequest struct {
	TenantID string
	Filters  repository.DealFilters
	Offset   int
	Limit    int
}

// ListDealsResponse ordered page plus total match count.
type ListDealsResponse struct {
	Items []*DealDTO
	Total int
}

// CreateDealRequest new deal on a board.
type CreateDealRequest struct {
	TenantID   string
	PipelineID string
	StageID    string
	ContactID  string // optional; invalid UUIDs are dropped
	Title      string
	Amount     float64
	Status     string
}

// DealPatch PATCH payload for a deal.
type DealPatch struct {
	Title     Opt[string]  `json:"title"`
	Amount    Opt[float64] `json:"amount"`
	Status    Opt[string]  `json:"status"`
	StageID   Opt[string]  `json:"stage_id"`
	ContactID Opt[string]  `json:"contact_id"`
}

// DealDTO API representation of a deal.
type DealDTO struct {
	DealID     string  `json:"deal_id"`
	PipelineID string  `json:"pipeline_id"`
	StageID    string  `json:"stage_id"`
	ContactID  *string `json:"contact_id"`
	Title      string  `json:"title"`
	Amount     float64 `json:"amount"`
	Status     string  `json:"status"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

// ============================================
// Pipelines
// ============================================

func (s *pipelineService) ListPipelines(ctx context.Context, tenantID string) ([]*PipelineDTO, error) {
	pipelines, err := s.pipelinesRepo.ListPipelines(ctx, tenantID)
	if err != nil {
		s.logger.Error("Failed to list pipelines", zap.String("tenant_id", tenantID), zap.Error(err))
		return nil, err
	}

	dtos := make([]*PipelineDTO, 0, len(pipelines))
	for _, p := range pipelines {
		dtos = append(dtos, pipelineToDTO(p))
	}
	return dtos, nil
}

func (s *pipelineService) CreatePipeline(ctx context.Context, req CreatePipelineRequest) (*PipelineDTO, error) {
	name := normalize.Text(req.PipelineName)
	if name == nil {
		return nil, NewValidationError("pipeline_name", "is required")
	}
	if len(req.Stages) == 0 {
		return nil, NewValidationError("stages", "at least one stage is required")
	}

	pipeline := &domain.Pipeline{
		TenantID:     req.TenantID,
		PipelineName: *name,
	}
	for i, raw := range req.Stages {
		stageName := normalize.Text(raw)
		if stageName == nil {
			return nil, NewValidationError("stages", "stage name must not be empty")
		}
		pipeline.Stages = append(pipeline.Stages, domain.Stage{
			TenantID:  req.TenantID,
			StageName: *stageName,
			Position:  i,
		})
	}

	pipelineID, err := s.pipelinesRepo.CreatePipeline(ctx, pipeline)
	if err != nil {
		s.logger.Error("Failed to create pipeline", zap.String("tenant_id", req.TenantID), zap.Error(err))
		return nil, err
	}

	created, err := s.pipelinesRepo.GetPipeline(ctx, req.TenantID, pipelineID)
	if err != nil {
		return nil, err
	}
	return pipelineToDTO(created), nil
}

// ============================================
// Deals
// ============================================

func (s *pipelineService) ListDeals(ctx context.Context, req ListDealsRequest) (*ListDealsResponse, error) {
	deals, total, err := s.dealsRepo.ListDeals(ctx, req.TenantID, req.Filters, req.Offset, req.Limit)
	if err != nil {
		s.logger.Error("Failed to list deals", zap.String("tenant_id", req.TenantID), zap.Error(err))
		return nil, err
	}

	items := make([]*DealDTO, 0, len(deals))
	for _, d := range deals {
		items = append(items, dealToDTO(d))
	}
	return &ListDealsResponse{Items: items, Total: total}, nil
}

func (s *pipelineService) CreateDeal(ctx context.Context, req CreateDealRequest) (*DealDTO, error) {
	title := normalize.Text(req.Title)
	if title == nil {
		return nil, NewValidationError("title", "is required")
	}

	pipeline, err := s.pipelinesRepo.GetPipeline(ctx, req.TenantID, req.PipelineID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewValidationError("pipeline_id", "unknown pipeline")
		}
		return nil, err
	}
	if !pipelineHasStage(pipeline, req.StageID) {
		return nil, NewValidationError("stage_id", "stage does not belong to pipeline")
	}

	deal := &domain.Deal{
		PipelineID: pipeline.PipelineID,
		StageID:    req.StageID,
		Title:      *title,
		Amount:     req.Amount,
		Status:     req.Status,
	}
	if contactID := normalize.UUID(req.ContactID); contactID != nil {
		deal.ContactID = sql.NullString{String: *contactID, Valid: true}
	}

	dealID, err := s.dealsRepo.CreateDeal(ctx, req.TenantID, deal)
	if err != nil {
		s.logger.Error("Failed to create deal", zap.String("tenant_id", req.TenantID), zap.Error(err))
		return nil, err
	}

	created, err := s.dealsRepo.GetDeal(ctx, req.TenantID, dealID)
	if err != nil {
		return nil, err
	}
	return dealToDTO(created), nil
}

func (s *pipelineService) PatchDeal(ctx context.Context, tenantID, dealID string, patch DealPatch) (*DealDTO, error) {
	existing, err := s.dealsRepo.GetDeal(ctx, tenantID, dealID)
	if err != nil {
		return nil, err
	}

	updated := *existing
	if patch.Title.Set {
		if !patch.Title.Present() {
			return nil, NewValidationError("title", "is required")
		}
		title := normalize.Text(patch.Title.Value)
		if title == nil {
			return nil, NewValidationError("title", "is required")
		}
		updated.Title = *title
	}
	if patch.Amount.Present() {
		updated.Amount = patch.Amount.Value
	}
	if patch.Status.Present() {
		if st := normalize.Text(patch.Status.Value); st != nil {
			updated.Status = *st
		}
	}
	if patch.ContactID.Set {
		updated.ContactID = sql.NullString{}
		if patch.ContactID.Present() {
			if contactID := normalize.UUID(patch.ContactID.Value); contactID != nil {
				updated.ContactID = sql.NullString{String: *contactID, Valid: true}
			}
		}
	}

	if patch.StageID.Present() {
		pipeline, err := s.pipelinesRepo.GetPipeline(ctx, tenantID, existing.PipelineID)
		if err != nil {
			return nil, err
		}
		if !pipelineHasStage(pipeline, patch.StageID.Value) {
			return nil, NewValidationError("stage_id", "stage does not belong to pipeline")
		}
		updated.StageID = patch.StageID.Value
	}

	if err := s.dealsRepo.UpdateDeal(ctx, tenantID, dealID, &updated); err != nil {
		s.logger.Error("Failed to patch deal",
			zap.String("tenant_id", tenantID),
			zap.String("deal_id", dealID),
			zap.Error(err),
		)
		return nil, err
	}

	stored, err := s.dealsRepo.GetDeal(ctx, tenantID, dealID)
	if err != nil {
		return nil, err
	}
	return dealToDTO(stored), nil
}

func (s *pipelineService) DeleteDeal(ctx context.Context, tenantID, dealID string) error {
	return s.dealsRepo.SoftDeleteDeal(ctx, tenantID, dealID)
}

func pipelineHasStage(p *domain.Pipeline, stageID string) bool {
	for _, stage := range p.Stages {
		if stage.StageID == stageID {
			return true
		}
	}
	return false
}

func pipelineToDTO(p *domain.Pipeline) *PipelineDTO {
	dto := &PipelineDTO{
		PipelineID:   p.PipelineID,
		PipelineName: p.PipelineName,
		Stages:       make([]*StageDTO, 0, len(p.Stages)),
		CreatedAt:    normalize.FormatTimestamp(p.CreatedAt),
		UpdatedAt:    normalize.FormatTimestamp(p.UpdatedAt),
	}
	for _, stage := range p.Stages {
		dto.Stages = append(dto.Stages, &StageDTO{
			StageID:   stage.StageID,
			StageName: stage.StageName,
			Position:  stage.Position,
		})
	}
	return dto
}

func dealToDTO(d *domain.Deal) *DealDTO {
	return &DealDTO{
		DealID:     d.DealID,
		PipelineID: d.PipelineID,
		StageID:    d.StageID,
		ContactID:  nullStringPtr(d.ContactID),
		Title:      d.Title,
		Amount:     d.Amount,
		Status:     d.Status,
		CreatedAt:  normalize.FormatTimestamp(d.CreatedAt),
		UpdatedAt:  normalize.FormatTimestamp(d.UpdatedAt),
	}
}
