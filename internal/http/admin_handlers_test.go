package httpapi

import (
	"net/http"
	"testing"

	"clientdesk-data/internal/repository"
	"clientdesk-data/internal/service"
	"clientdesk-data/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testRootToken = "root-secret"

func newTestAdminAPI(t *testing.T) *Router {
	logger := zap.NewNop()

	tenantsRepo := repository.NewMemoryTenantsRepository()
	apiKeysRepo := repository.NewMemoryAPIKeysRepository()

	authSvc := service.NewAuthService(apiKeysRepo, tenantsRepo, store.NewMemoryKV(), logger)
	tenantSvc := service.NewTenantService(tenantsRepo, logger)

	router := NewRouter(logger)
	router.RegisterAdminRoutes(NewAdminHandler(tenantSvc, authSvc, testRootToken, logger))
	return router
}

func TestAdmin_RequiresRootToken(t *testing.T) {
	router := newTestAdminAPI(t)

	rec := doRequest(t, router, "", http.MethodGet, "/admin/api/v1/tenants", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, router, "wrong-token", http.MethodGet, "/admin/api/v1/tenants", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdmin_TenantLifecycleAndKeyIssue(t *testing.T) {
	router := newTestAdminAPI(t)

	rec := doRequest(t, router, testRootToken, http.MethodPost, "/admin/api/v1/tenants", map[string]any{
		"tenant_name": "Northwind",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	tenant := decodeBody(t, rec)["data"].(map[string]any)
	tenantID := tenant["tenant_id"].(string)
	assert.Equal(t, "active", tenant["status"])

	rec = doRequest(t, router, testRootToken, http.MethodPost, "/admin/api/v1/api-keys", map[string]any{
		"tenant_id": tenantID,
		"label":     "production",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	key := decodeBody(t, rec)["data"].(map[string]any)
	assert.Contains(t, key["secret"], "ck_")
	keyID := key["key_id"].(string)

	rec = doRequest(t, router, testRootToken, http.MethodDelete,
		"/admin/api/v1/api-keys/"+keyID+"?tenant_id="+tenantID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, router, testRootToken, http.MethodPatch, "/admin/api/v1/tenants/"+tenantID, map[string]any{
		"status": "suspended",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, testRootToken, http.MethodGet, "/admin/api/v1/tenants?status=suspended", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["total"])
}
