package repository

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"clientdesk-data/internal/domain"

	"github.com/google/uuid"
)

// MemoryAPIKeysRepository keeps API keys in memory.
type MemoryAPIKeysRepository struct {
	mu   sync.RWMutex
	keys map[string]*domain.APIKey
}

// NewMemoryAPIKeysRepository creates an empty in-memory API keys Repository.
func NewMemoryAPIKeysRepository() *MemoryAPIKeysRepository {
	return &MemoryAPIKeysRepository{keys: map[string]*domain.APIKey{}}
}

var _ APIKeysRepository = (*MemoryAPIKeysRepository)(nil)

func (r *MemoryAPIKeysRepository) GetByHash(_ context.Context, keyHash []byte) (*domain.APIKey, error) {
	if len(keyHash) == 0 {
		return nil, fmt.Errorf("key_hash is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, k := range r.keys {
		if k.Status == "active" && bytes.Equal(k.KeyHash, keyHash) {
			dup := *k
			return &dup, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryAPIKeysRepository) CreateAPIKey(_ context.Context, key *domain.APIKey) (string, error) {
	if key.TenantID == "" || len(key.KeyHash) == 0 {
		return "", fmt.Errorf("tenant_id and key_hash are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	k := *key
	k.KeyID = uuid.NewString()
	k.Status = "active"
	k.CreatedAt = time.Now()
	r.keys[k.KeyID] = &k
	return k.KeyID, nil
}

func (r *MemoryAPIKeysRepository) RevokeAPIKey(_ context.Context, tenantID, keyID string) error {
	if tenantID == "" || keyID == "" {
		return fmt.Errorf("tenant_id and key_id are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	k, ok := r.keys[keyID]
	if !ok || k.TenantID != tenantID || k.Status != "active" {
		return fmt.Errorf("api key %s: %w", keyID, ErrNotFound)
	}
	now := time.Now()
	k.Status = "revoked"
	k.RevokedAt = &now
	return nil
}
