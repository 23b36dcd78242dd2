package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"clientdesk-data/internal/domain"
)

// PostgresTenantsRepository tenants Repository implementation.
type PostgresTenantsRepository struct {
	db *sql.DB
}

// NewPostgresTenantsRepository creates the tenants Repository.
func NewPostgresTenantsRepository(db *sql.DB) *PostgresTenantsRepository {
	return &PostgresTenantsRepository{db: db}
}

var _ TenantsRepository = (*PostgresTenantsRepository)(nil)

// GetTenant fetches one tenant by tenant_id.
func (r *PostgresTenantsRepository) GetTenant(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant_id is required")
	}

	query := `
		SELECT tenant_id::text, tenant_name, COALESCE(status, 'active'), created_at, updated_at
		FROM tenants
		WHERE tenant_id = $1::uuid
	`

	var tenant domain.Tenant
	err := r.db.QueryRowContext(ctx, query, tenantID).Scan(
		&tenant.TenantID,
		&tenant.TenantName,
		&tenant.Status,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("tenant %s: %w", tenantID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return &tenant, nil
}

// ListTenants queries tenants with pagination, status filter and name search.
func (r *PostgresTenantsRepository) ListTenants(ctx context.Context, filters TenantFilters, page, size int) ([]*domain.Tenant, int, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 50
	}
	offset := (page - 1) * size

	where := []string{}
	args := []any{}
	argIdx := 1

	if filters.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, filters.Status)
		argIdx++
	}
	if filters.Search != "" {
		where = append(where, fmt.Sprintf("tenant_name ILIKE $%d", argIdx))
		args = append(args, "%"+filters.Search+"%")
		argIdx++
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM tenants %s`, whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tenants: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT tenant_id::text, tenant_name, COALESCE(status, 'active'), created_at, updated_at
		FROM tenants
		%s
		ORDER BY tenant_name
		LIMIT $%d OFFSET $%d
	`, whereClause, argIdx, argIdx+1)
	args = append(args, size, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	tenants := []*domain.Tenant{}
	for rows.Next() {
		var tenant domain.Tenant
		err := rows.Scan(
			&tenant.TenantID,
			&tenant.TenantName,
			&tenant.Status,
			&tenant.CreatedAt,
			&tenant.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, &tenant)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate tenants: %w", err)
	}

	return tenants, total, nil
}

// CreateTenant creates a new tenant.
func (r *PostgresTenantsRepository) CreateTenant(ctx context.Context, tenant *domain.Tenant) (string, error) {
	if tenant.TenantName == "" {
		return "", fmt.Errorf("tenant_name is required")
	}

	status := tenant.Status
	if status == "" {
		status = "active"
	}

	query := `
		INSERT INTO tenants (tenant_name, status)
		VALUES ($1, $2)
		RETURNING tenant_id::text
	`
	var tenantID string
	if err := r.db.QueryRowContext(ctx, query, tenant.TenantName, status).Scan(&tenantID); err != nil {
		return "", fmt.Errorf("failed to create tenant: %w", err)
	}
	return tenantID, nil
}

// SetTenantStatus updates the tenant status (active/suspended/deleted).
func (r *PostgresTenantsRepository) SetTenantStatus(ctx context.Context, tenantID, status string) error {
	if tenantID == "" || status == "" {
		return fmt.Errorf("tenant_id and status are required")
	}

	query := `
		UPDATE tenants
		SET status = $2, updated_at = NOW()
		WHERE tenant_id = $1::uuid
	`
	res, err := r.db.ExecContext(ctx, query, tenantID, status)
	if err != nil {
		return fmt.Errorf("failed to set tenant status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to set tenant status: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("tenant %s: %w", tenantID, ErrNotFound)
	}
	return nil
}
