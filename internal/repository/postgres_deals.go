package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"clientdesk-data/internal/domain"
)

// PostgresPipelinesRepository pipelines Repository implementation.
type PostgresPipelinesRepository struct {
	db *sql.DB
}

// NewPostgresPipelinesRepository creates the pipelines Repository.
func NewPostgresPipelinesRepository(db *sql.DB) *PostgresPipelinesRepository {
	return &PostgresPipelinesRepository{db: db}
}

var _ PipelinesRepository = (*PostgresPipelinesRepository)(nil)

// GetPipeline loads one pipeline with its stages ordered by position.
func (r *PostgresPipelinesRepository) GetPipeline(ctx context.Context, tenantID, pipelineID string) (*domain.Pipeline, error) {
	if tenantID == "" || pipelineID == "" {
		return nil, fmt.Errorf("tenant_id and pipeline_id are required")
	}

	query := `
		SELECT pipeline_id::text, tenant_id::text, pipeline_name, created_at, updated_at
		FROM pipelines
		WHERE tenant_id = $1::uuid AND pipeline_id = $2::uuid AND deleted_at IS NULL
	`

	var p domain.Pipeline
	err := r.db.QueryRowContext(ctx, query, tenantID, pipelineID).Scan(
		&p.PipelineID,
		&p.TenantID,
		&p.PipelineName,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("pipeline %s: %w", pipelineID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get pipeline: %w", err)
	}

	stages, err := r.loadStages(ctx, tenantID, []string{p.PipelineID})
	if err != nil {
		return nil, err
	}
	p.Stages = stages[p.PipelineID]
	return &p, nil
}

// ListPipelines returns all non-deleted pipelines with stages loaded.
func (r *PostgresPipelinesRepository) ListPipelines(ctx context.Context, tenantID string) ([]*domain.Pipeline, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant_id is required")
	}

	query := `
		SELECT pipeline_id::text, tenant_id::text, pipeline_name, created_at, updated_at
		FROM pipelines
		WHERE tenant_id = $1::uuid AND deleted_at IS NULL
		ORDER BY pipeline_name
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pipelines: %w", err)
	}
	defer rows.Close()

	pipelines := []*domain.Pipeline{}
	ids := []string{}
	for rows.Next() {
		var p domain.Pipeline
		if err := rows.Scan(&p.PipelineID, &p.TenantID, &p.PipelineName, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pipeline: %w", err)
		}
		pipelines = append(pipelines, &p)
		ids = append(ids, p.PipelineID)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pipelines: %w", err)
	}

	if len(ids) == 0 {
		return pipelines, nil
	}
	stages, err := r.loadStages(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range pipelines {
		p.Stages = stages[p.PipelineID]
	}
	return pipelines, nil
}

// loadStages fetches the stages of the given pipelines, ordered by position.
func (r *PostgresPipelinesRepository) loadStages(ctx context.Context, tenantID string, pipelineIDs []string) (map[string][]domain.Stage, error) {
	placeholders := make([]string, 0, len(pipelineIDs))
	args := []any{tenantID}
	for i, id := range pipelineIDs {
		placeholders = append(placeholders, fmt.Sprintf("$%d::uuid", i+2))
		args = append(args, id)
	}

	query := fmt.Sprintf(`
		SELECT stage_id::text, tenant_id::text, pipeline_id::text, stage_name, position
		FROM pipeline_stages
		WHERE tenant_id = $1::uuid AND pipeline_id IN (%s)
		ORDER BY pipeline_id, position
	`, strings.Join(placeholders, ", "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load stages: %w", err)
	}
	defer rows.Close()

	out := map[string][]domain.Stage{}
	for rows.Next() {
		var s domain.Stage
		if err := rows.Scan(&s.StageID, &s.TenantID, &s.PipelineID, &s.StageName, &s.Position); err != nil {
			return nil, fmt.Errorf("failed to scan stage: %w", err)
		}
		out[s.PipelineID] = append(out[s.PipelineID], s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stages: %w", err)
	}
	return out, nil
}

// CreatePipeline inserts the pipeline and its stages in one transaction.
func (r *PostgresPipelinesRepository) CreatePipeline(ctx context.Context, pipeline *domain.Pipeline) (string, error) {
	if pipeline.TenantID == "" || pipeline.PipelineName == "" {
		return "", fmt.Errorf("tenant_id and pipeline_name are required")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	var pipelineID string
	err = tx.QueryRowContext(ctx,
		`INSERT INTO pipelines (tenant_id, pipeline_name) VALUES ($1::uuid, $2) RETURNING pipeline_id::text`,
		pipeline.TenantID, pipeline.PipelineName,
	).Scan(&pipelineID)
	if err != nil {
		return "", fmt.Errorf("failed to create pipeline: %w", err)
	}

	for _, stage := range pipeline.Stages {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO pipeline_stages (tenant_id, pipeline_id, stage_name, position)
			 VALUES ($1::uuid, $2::uuid, $3, $4)`,
			pipeline.TenantID, pipelineID, stage.StageName, stage.Position,
		)
		if err != nil {
			return "", fmt.Errorf("failed to create stage %q: %w", stage.StageName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit pipeline: %w", err)
	}
	return pipelineID, nil
}

// PostgresDealsRepository deals Repository implementation.
type PostgresDealsRepository struct {
	db *sql.DB
}

// NewPostgresDealsRepository creates the deals Repository.
func NewPostgresDealsRepository(db *sql.DB) *PostgresDealsRepository {
	return &PostgresDealsRepository{db: db}
}

var _ DealsRepository = (*PostgresDealsRepository)(nil)

const dealColumns = `
	deal_id::text,
	tenant_id::text,
	pipeline_id::text,
	stage_id::text,
	contact_id::text,
	title,
	amount,
	status,
	created_at,
	updated_at
`

func scanDeal(scan func(dest ...any) error) (*domain.Deal, error) {
	var d domain.Deal
	err := scan(
		&d.DealID,
		&d.TenantID,
		&d.PipelineID,
		&d.StageID,
		&d.ContactID,
		&d.Title,
		&d.Amount,
		&d.Status,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetDeal fetches one deal by deal_id.
func (r *PostgresDealsRepository) GetDeal(ctx context.Context, tenantID, dealID string) (*domain.Deal, error) {
	if tenantID == "" || dealID == "" {
		return nil, fmt.Errorf("tenant_id and deal_id are required")
	}

	query := `
		SELECT ` + dealColumns + `
		FROM deals
		WHERE tenant_id = $1::uuid AND deal_id = $2::uuid AND deleted_at IS NULL
	`
	row := r.db.QueryRowContext(ctx, query, tenantID, dealID)
	deal, err := scanDeal(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("deal %s: %w", dealID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}
	return deal, nil
}

// ListDeals returns one page (created_at DESC) plus the total count.
func (r *PostgresDealsRepository) ListDeals(ctx context.Context, tenantID string, filters DealFilters, offset, limit int) ([]*domain.Deal, int, error) {
	if tenantID == "" {
		return nil, 0, fmt.Errorf("tenant_id is required")
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 25
	}

	where := []string{"tenant_id = $1::uuid", "deleted_at IS NULL"}
	args := []any{tenantID}
	argIdx := 2

	if filters.PipelineID != "" {
		where = append(where, fmt.Sprintf("pipeline_id = $%d::uuid", argIdx))
		args = append(args, filters.PipelineID)
		argIdx++
	}
	if filters.StageID != "" {
		where = append(where, fmt.Sprintf("stage_id = $%d::uuid", argIdx))
		args = append(args, filters.StageID)
		argIdx++
	}
	if filters.ContactID != "" {
		where = append(where, fmt.Sprintf("contact_id = $%d::uuid", argIdx))
		args = append(args, filters.ContactID)
		argIdx++
	}
	if filters.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, filters.Status)
		argIdx++
	}

	whereClause := "WHERE " + strings.Join(where, " AND ")

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM deals %s`, whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count deals: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM deals
		%s
		ORDER BY created_at DESC, deal_id DESC
		LIMIT $%d OFFSET $%d
	`, dealColumns, whereClause, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list deals: %w", err)
	}
	defer rows.Close()

	deals := []*domain.Deal{}
	for rows.Next() {
		deal, err := scanDeal(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan deal: %w", err)
		}
		deals = append(deals, deal)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate deals: %w", err)
	}

	return deals, total, nil
}

// CreateDeal inserts a new deal and returns the generated id.
func (r *PostgresDealsRepository) CreateDeal(ctx context.Context, tenantID string, deal *domain.Deal) (string, error) {
	if tenantID == "" {
		return "", fmt.Errorf("tenant_id is required")
	}

	status := deal.Status
	if status == "" {
		status = "open"
	}

	query := `
		INSERT INTO deals (tenant_id, pipeline_id, stage_id, contact_id, title, amount, status)
		VALUES ($1::uuid, $2::uuid, $3::uuid, $4::uuid, $5, $6, $7)
		RETURNING deal_id::text
	`
	var dealID string
	err := r.db.QueryRowContext(ctx, query,
		tenantID,
		deal.PipelineID,
		deal.StageID,
		deal.ContactID,
		deal.Title,
		deal.Amount,
		status,
	).Scan(&dealID)
	if err != nil {
		return "", fmt.Errorf("failed to create deal: %w", err)
	}
	return dealID, nil
}

// UpdateDeal replaces the mutable fields (stage moves included).
func (r *PostgresDealsRepository) UpdateDeal(ctx context.Context, tenantID, dealID string, deal *domain.Deal) error {
	if tenantID == "" || dealID == "" {
		return fmt.Errorf("tenant_id and deal_id are required")
	}

	query := `
		UPDATE deals SET
			stage_id = $3::uuid,
			contact_id = $4::uuid,
			title = $5,
			amount = $6,
			status = $7,
			updated_at = NOW()
		WHERE tenant_id = $1::uuid AND deal_id = $2::uuid AND deleted_at IS NULL
	`
	res, err := r.db.ExecContext(ctx, query,
		tenantID,
		dealID,
		deal.StageID,
		deal.ContactID,
		deal.Title,
		deal.Amount,
		deal.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to update deal: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update deal: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("deal %s: %w", dealID, ErrNotFound)
	}
	return nil
}

// SoftDeleteDeal sets the deletion marker.
func (r *PostgresDealsRepository) SoftDeleteDeal(ctx context.Context, tenantID, dealID string) error {
	if tenantID == "" || dealID == "" {
		return fmt.Errorf("tenant_id and deal_id are required")
	}

	query := `
		UPDATE deals
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE tenant_id = $1::uuid AND deal_id = $2::uuid AND deleted_at IS NULL
	`
	res, err := r.db.ExecContext(ctx, query, tenantID, dealID)
	if err != nil {
		return fmt.Errorf("failed to delete deal: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete deal: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("deal %s: %w", dealID, ErrNotFound)
	}
	return nil
}
