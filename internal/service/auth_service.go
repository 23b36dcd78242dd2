package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"clientdesk-data/internal/domain"
	"clientdesk-data/internal/repository"
	"clientdesk-data/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	apiKeyPrefix   = "ck_"
	apiKeyCacheTTL = 5 * time.Minute
)

// AuthService resolves API keys to tenant scope and manages key issuance.
type AuthService interface {
	// ResolveKey maps a bearer secret to exactly one active tenant.
	// Unknown, revoked and suspended-tenant keys all return ErrUnauthorized.
	ResolveKey(ctx context.Context, secret string) (*TenantIdentity, error)

	// IssueKey creates a key for a tenant. The plaintext secret is returned
	// once and never stored.
	IssueKey(ctx context.Context, req IssueKeyRequest) (*IssueKeyResponse, error)

	RevokeKey(ctx context.Context, tenantID, keyID string) error
}

type authService struct {
	apiKeysRepo repository.APIKeysRepository
	tenantsRepo repository.TenantsRepository
	kv          store.KV
	logger      *zap.Logger
}

// NewAuthService creates an AuthService instance.
func NewAuthService(
	apiKeysRepo repository.APIKeysRepository,
	tenantsRepo repository.TenantsRepository,
	kv store.KV,
	logger *zap.Logger,
) AuthService {
	return &authService{
		apiKeysRepo: apiKeysRepo,
		tenantsRepo: tenantsRepo,
		kv:          kv,
		logger:      logger,
	}
}

// TenantIdentity resolved request scope.
type TenantIdentity struct {
	TenantID   string
	TenantName string
}

// IssueKeyRequest new API key for a tenant.
type IssueKeyRequest struct {
	TenantID string
	Label    string
}

// IssueKeyResponse key id plus the one-time plaintext secret.
type IssueKeyResponse struct {
	KeyID  string `json:"key_id"`
	Secret string `json:"secret"`
}

func (s *authService) ResolveKey(ctx context.Context, secret string) (*TenantIdentity, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrUnauthorized
	}

	sum := sha256.Sum256([]byte(secret))
	cacheKey := "apikey:" + hex.EncodeToString(sum[:])

	// Cache hit: resolution of an active key. Revocation and tenant
	// suspension take effect within the TTL window.
	if cached, err := s.kv.Get(ctx, cacheKey); err == nil {
		tenantID, tenantName, ok := strings.Cut(cached, "|")
		if ok {
			return &TenantIdentity{TenantID: tenantID, TenantName: tenantName}, nil
		}
	} else if !errors.Is(err, store.ErrMiss) {
		s.logger.Warn("API key cache lookup failed", zap.Error(err))
	}

	key, err := s.apiKeysRepo.GetByHash(ctx, sum[:])
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		s.logger.Error("API key lookup failed", zap.Error(err))
		return nil, err
	}

	tenant, err := s.tenantsRepo.GetTenant(ctx, key.TenantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if tenant.Status != "active" {
		return nil, ErrUnauthorized
	}

	if err := s.kv.Set(ctx, cacheKey, tenant.TenantID+"|"+tenant.TenantName, apiKeyCacheTTL); err != nil {
		s.logger.Warn("API key cache store failed", zap.Error(err))
	}

	return &TenantIdentity{TenantID: tenant.TenantID, TenantName: tenant.TenantName}, nil
}

func (s *authService) IssueKey(ctx context.Context, req IssueKeyRequest) (*IssueKeyResponse, error) {
	if req.TenantID == "" {
		return nil, NewValidationError("tenant_id", "is required")
	}
	if _, err := s.tenantsRepo.GetTenant(ctx, req.TenantID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewValidationError("tenant_id", "unknown tenant")
		}
		return nil, err
	}

	secret := apiKeyPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
	sum := sha256.Sum256([]byte(secret))

	keyID, err := s.apiKeysRepo.CreateAPIKey(ctx, &domain.APIKey{
		TenantID: req.TenantID,
		KeyHash:  sum[:],
		Label:    req.Label,
	})
	if err != nil {
		s.logger.Error("Failed to issue api key", zap.String("tenant_id", req.TenantID), zap.Error(err))
		return nil, fmt.Errorf("failed to issue api key: %w", err)
	}

	s.logger.Info("Issued api key",
		zap.String("tenant_id", req.TenantID),
		zap.String("key_id", keyID),
		zap.String("label", req.Label),
	)
	return &IssueKeyResponse{KeyID: keyID, Secret: secret}, nil
}

func (s *authService) RevokeKey(ctx context.Context, tenantID, keyID string) error {
	if err := s.apiKeysRepo.RevokeAPIKey(ctx, tenantID, keyID); err != nil {
		return err
	}
	// The cached resolution cannot be addressed without the plaintext
	// secret; it expires with the cache TTL.
	s.logger.Info("Revoked api key",
		zap.String("tenant_id", tenantID),
		zap.String("key_id", keyID),
	)
	return nil
}
