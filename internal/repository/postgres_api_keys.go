package repository

import (
	"context"
	"database/sql"
	"fmt"

	"clientdesk-data/internal/domain"
)

// PostgresAPIKeysRepository API key Repository implementation.
type PostgresAPIKeysRepository struct {
	db *sql.DB
}

// NewPostgresAPIKeysRepository creates the API keys Repository.
func NewPostgresAPIKeysRepository(db *sql.DB) *PostgresAPIKeysRepository {
	return &PostgresAPIKeysRepository{db: db}
}

var _ APIKeysRepository = (*PostgresAPIKeysRepository)(nil)

// GetByHash fetches an active key by secret hash. Revoked and unknown keys
// are indistinguishable to the caller.
func (r *PostgresAPIKeysRepository) GetByHash(ctx context.Context, keyHash []byte) (*domain.APIKey, error) {
	if len(keyHash) == 0 {
		return nil, fmt.Errorf("key_hash is required")
	}

	query := `
		SELECT key_id::text, tenant_id::text, key_hash, COALESCE(label, ''), status, created_at
		FROM api_keys
		WHERE key_hash = $1 AND status = 'active'
	`

	var key domain.APIKey
	err := r.db.QueryRowContext(ctx, query, keyHash).Scan(
		&key.KeyID,
		&key.TenantID,
		&key.KeyHash,
		&key.Label,
		&key.Status,
		&key.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get api key: %w", err)
	}
	return &key, nil
}

// CreateAPIKey stores a new key hash.
func (r *PostgresAPIKeysRepository) CreateAPIKey(ctx context.Context, key *domain.APIKey) (string, error) {
	if key.TenantID == "" || len(key.KeyHash) == 0 {
		return "", fmt.Errorf("tenant_id and key_hash are required")
	}

	query := `
		INSERT INTO api_keys (tenant_id, key_hash, label, status)
		VALUES ($1::uuid, $2, $3, 'active')
		RETURNING key_id::text
	`
	var keyID string
	if err := r.db.QueryRowContext(ctx, query, key.TenantID, key.KeyHash, key.Label).Scan(&keyID); err != nil {
		return "", fmt.Errorf("failed to create api key: %w", err)
	}
	return keyID, nil
}

// RevokeAPIKey marks a key revoked.
func (r *PostgresAPIKeysRepository) RevokeAPIKey(ctx context.Context, tenantID, keyID string) error {
	if tenantID == "" || keyID == "" {
		return fmt.Errorf("tenant_id and key_id are required")
	}

	query := `
		UPDATE api_keys
		SET status = 'revoked', revoked_at = NOW()
		WHERE tenant_id = $1::uuid AND key_id = $2::uuid AND status = 'active'
	`
	res, err := r.db.ExecContext(ctx, query, tenantID, keyID)
	if err != nil {
		return fmt.Errorf("failed to revoke api key: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to revoke api key: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("api key %s: %w", keyID, ErrNotFound)
	}
	return nil
}
