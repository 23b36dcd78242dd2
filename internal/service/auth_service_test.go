package service

import (
	"context"
	"testing"

	"clientdesk-data/internal/domain"
	"clientdesk-data/internal/repository"
	"clientdesk-data/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestAuthService(t *testing.T) (AuthService, string) {
	tenantsRepo := repository.NewMemoryTenantsRepository()
	apiKeysRepo := repository.NewMemoryAPIKeysRepository()
	svc := NewAuthService(apiKeysRepo, tenantsRepo, store.NewMemoryKV(), zap.NewNop())

	tenantID, err := tenantsRepo.CreateTenant(context.Background(), &domain.Tenant{TenantName: "Acme"})
	require.NoError(t, err)
	return svc, tenantID
}

func TestResolveKey_IssuedKeyResolvesTenant(t *testing.T) {
	svc, tenantID := newTestAuthService(t)
	ctx := context.Background()

	issued, err := svc.IssueKey(ctx, IssueKeyRequest{TenantID: tenantID, Label: "test"})
	require.NoError(t, err)
	assert.NotEmpty(t, issued.KeyID)
	assert.Contains(t, issued.Secret, "ck_")

	identity, err := svc.ResolveKey(ctx, issued.Secret)
	require.NoError(t, err)
	assert.Equal(t, tenantID, identity.TenantID)
	assert.Equal(t, "Acme", identity.TenantName)

	// Second resolution is served from the cache.
	identity, err = svc.ResolveKey(ctx, issued.Secret)
	require.NoError(t, err)
	assert.Equal(t, tenantID, identity.TenantID)
}

func TestResolveKey_UnknownOrEmpty(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.ResolveKey(ctx, "ck_nonexistent")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.ResolveKey(ctx, "   ")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestResolveKey_RevokedKey(t *testing.T) {
	svc, tenantID := newTestAuthService(t)
	ctx := context.Background()

	issued, err := svc.IssueKey(ctx, IssueKeyRequest{TenantID: tenantID})
	require.NoError(t, err)
	require.NoError(t, svc.RevokeKey(ctx, tenantID, issued.KeyID))

	_, err = svc.ResolveKey(ctx, issued.Secret)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestResolveKey_SuspendedTenant(t *testing.T) {
	tenantsRepo := repository.NewMemoryTenantsRepository()
	apiKeysRepo := repository.NewMemoryAPIKeysRepository()
	svc := NewAuthService(apiKeysRepo, tenantsRepo, store.NewMemoryKV(), zap.NewNop())
	ctx := context.Background()

	tenantID, err := tenantsRepo.CreateTenant(ctx, &domain.Tenant{TenantName: "Frozen"})
	require.NoError(t, err)
	issued, err := svc.IssueKey(ctx, IssueKeyRequest{TenantID: tenantID})
	require.NoError(t, err)

	require.NoError(t, tenantsRepo.SetTenantStatus(ctx, tenantID, "suspended"))

	_, err = svc.ResolveKey(ctx, issued.Secret)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestIssueKey_UnknownTenant(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.IssueKey(context.Background(), IssueKeyRequest{
		TenantID: "00000000-0000-0000-0000-00000000dead",
	})
	require.Error(t, err)
	_, ok := AsValidationError(err)
	assert.True(t, ok)
}
