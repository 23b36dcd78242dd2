package repository

import (
	"context"

	"clientdesk-data/internal/domain"
)

// APIKeysRepository credential storage for the public API.
// Keys are looked up by the SHA-256 of the presented secret.
type APIKeysRepository interface {
	// GetByHash fetches an active key by secret hash. ErrNotFound covers both
	// unknown and revoked keys so callers cannot distinguish them.
	GetByHash(ctx context.Context, keyHash []byte) (*domain.APIKey, error)

	// CreateAPIKey stores a new key and returns its generated id.
	CreateAPIKey(ctx context.Context, key *domain.APIKey) (string, error)

	// RevokeAPIKey marks a key revoked; it stops resolving immediately
	// (subject to the resolver cache TTL).
	RevokeAPIKey(ctx context.Context, tenantID, keyID string) error
}
