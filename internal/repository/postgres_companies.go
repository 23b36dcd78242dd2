package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"clientdesk-data/internal/domain"
)

// PostgresCompaniesRepository companies Repository implementation.
type PostgresCompaniesRepository struct {
	db *sql.DB
}

// NewPostgresCompaniesRepository creates the companies Repository.
func NewPostgresCompaniesRepository(db *sql.DB) *PostgresCompaniesRepository {
	return &PostgresCompaniesRepository{db: db}
}

var _ CompaniesRepository = (*PostgresCompaniesRepository)(nil)

// GetCompany fetches one company by company_id.
func (r *PostgresCompaniesRepository) GetCompany(ctx context.Context, tenantID, companyID string) (*domain.Company, error) {
	if tenantID == "" || companyID == "" {
		return nil, fmt.Errorf("tenant_id and company_id are required")
	}

	query := `
		SELECT company_id::text, tenant_id::text, company_name, created_at, updated_at
		FROM companies
		WHERE tenant_id = $1::uuid AND company_id = $2::uuid AND deleted_at IS NULL
	`

	var company domain.Company
	err := r.db.QueryRowContext(ctx, query, tenantID, companyID).Scan(
		&company.CompanyID,
		&company.TenantID,
		&company.CompanyName,
		&company.CreatedAt,
		&company.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("company %s: %w", companyID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return &company, nil
}

// GetOrCreateByName resolves a name to an id, creating the row if absent.
// The conditional insert targets the partial unique index on
// (tenant_id, lower(company_name)) WHERE deleted_at IS NULL, so two
// concurrent resolvers for the same name converge on one row: the loser's
// insert hits the conflict and falls through to the select.
func (r *PostgresCompaniesRepository) GetOrCreateByName(ctx context.Context, tenantID, name string) (string, error) {
	if tenantID == "" || name == "" {
		return "", fmt.Errorf("tenant_id and name are required")
	}

	insertQuery := `
		INSERT INTO companies (tenant_id, company_name)
		VALUES ($1::uuid, $2)
		ON CONFLICT (tenant_id, lower(company_name)) WHERE deleted_at IS NULL
		DO NOTHING
		RETURNING company_id::text
	`

	var companyID string
	err := r.db.QueryRowContext(ctx, insertQuery, tenantID, name).Scan(&companyID)
	if err == nil {
		return companyID, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("failed to create company: %w", err)
	}

	// Insert conflicted: a non-deleted row with this name already exists.
	selectQuery := `
		SELECT company_id::text
		FROM companies
		WHERE tenant_id = $1::uuid AND lower(company_name) = lower($2) AND deleted_at IS NULL
	`
	err = r.db.QueryRowContext(ctx, selectQuery, tenantID, name).Scan(&companyID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("company %q vanished between insert and select: %w", name, ErrNotFound)
		}
		return "", fmt.Errorf("failed to resolve company by name: %w", err)
	}
	return companyID, nil
}

// ListCompanies returns one page ordered by company_name plus the total.
func (r *PostgresCompaniesRepository) ListCompanies(ctx context.Context, tenantID, search string, offset, limit int) ([]*domain.Company, int, error) {
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

	if search != "" {
		where = append(where, fmt.Sprintf("company_name ILIKE $%d", argIdx))
		args = append(args, "%"+search+"%")
		argIdx++
	}

	whereClause := "WHERE " + strings.Join(where, " AND ")

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM companies %s`, whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count companies: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT company_id::text, tenant_id::text, company_name, created_at, updated_at
		FROM companies
		%s
		ORDER BY company_name
		LIMIT $%d OFFSET $%d
	`, whereClause, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	companies := []*domain.Company{}
	for rows.Next() {
		var company domain.Company
		err := rows.Scan(
			&company.CompanyID,
			&company.TenantID,
			&company.CompanyName,
			&company.CreatedAt,
			&company.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, &company)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate companies: %w", err)
	}

	return companies, total, nil
}
