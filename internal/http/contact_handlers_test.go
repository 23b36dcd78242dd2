package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"clientdesk-data/internal/domain"
	"clientdesk-data/internal/repository"
	"clientdesk-data/internal/service"
	"clientdesk-data/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testTenantID = "00000000-0000-0000-0000-000000000111"

// newTestAPI wires the full public surface against memory repositories and
// returns the router plus a valid API key.
func newTestAPI(t *testing.T) (*Router, string) {
	logger := zap.NewNop()

	contactsRepo := repository.NewMemoryContactsRepository()
	companiesRepo := repository.NewMemoryCompaniesRepository()
	tenantsRepo := repository.NewMemoryTenantsRepository()
	apiKeysRepo := repository.NewMemoryAPIKeysRepository()
	pipelinesRepo := repository.NewMemoryPipelinesRepository()
	dealsRepo := repository.NewMemoryDealsRepository()

	tenantsRepo.SeedTenant(&domain.Tenant{TenantID: testTenantID, TenantName: "Test"})

	authSvc := service.NewAuthService(apiKeysRepo, tenantsRepo, store.NewMemoryKV(), logger)
	issued, err := authSvc.IssueKey(context.Background(), service.IssueKeyRequest{TenantID: testTenantID, Label: "test"})
	require.NoError(t, err)

	contactSvc := service.NewContactService(contactsRepo, companiesRepo, nil, logger)
	companySvc := service.NewCompanyService(companiesRepo, logger)
	pipelineSvc := service.NewPipelineService(pipelinesRepo, dealsRepo, logger)

	router := NewRouter(logger)
	router.RegisterCRMRoutes(
		NewAuthMiddleware(authSvc, logger),
		NewContactsHandler(contactSvc, logger),
		NewContactsExportHandler(contactSvc, 100, logger),
		NewCompaniesHandler(companySvc, logger),
		NewPipelinesHandler(pipelineSvc, logger),
		NewDealsHandler(pipelineSvc, logger),
	)
	return router, issued.Secret
}

func doRequest(t *testing.T, router *Router, apiKey, method, target string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestContacts_RequireAPIKey(t *testing.T) {
	router, _ := newTestAPI(t)

	rec := doRequest(t, router, "", http.MethodGet, "/crm/api/v1/contacts", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, CodeUnauthorized, body["code"])

	rec = doRequest(t, router, "ck_wrong", http.MethodGet, "/crm/api/v1/contacts", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestContacts_UpsertCreateThenUpdate(t *testing.T) {
	router, key := newTestAPI(t)

	rec := doRequest(t, router, key, http.MethodPost, "/crm/api/v1/contacts", map[string]any{
		"name":  "Ana",
		"email": "ANA@EX.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "created", body["action"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "ana@ex.com", data["email"])
	firstID := data["contact_id"].(string)

	rec = doRequest(t, router, key, http.MethodPost, "/crm/api/v1/contacts", map[string]any{
		"name":  "Ana Silva",
		"email": "ana@ex.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	assert.Equal(t, "updated", body["action"])
	data = body["data"].(map[string]any)
	assert.Equal(t, firstID, data["contact_id"])
	assert.Equal(t, "Ana Silva", data["name"])
}

func TestContacts_ValidationErrors(t *testing.T) {
	router, key := newTestAPI(t)

	// Neither email nor phone.
	rec := doRequest(t, router, key, http.MethodPost, "/crm/api/v1/contacts", map[string]any{
		"name": "Nobody",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, CodeValidationError, body["code"])

	// Invalid date names the field.
	rec = doRequest(t, router, key, http.MethodPost, "/crm/api/v1/contacts", map[string]any{
		"name":       "Ana",
		"email":      "ana@ex.com",
		"birth_date": "not-a-date",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body = decodeBody(t, rec)
	assert.Contains(t, body["error"], "birth_date")
}

func TestContacts_GetByID_FormatVsMissing(t *testing.T) {
	router, key := newTestAPI(t)

	// Malformed id: validation error, not 404.
	rec := doRequest(t, router, key, http.MethodGet, "/crm/api/v1/contacts/not-a-uuid", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, CodeValidationError, body["code"])

	// Well-formed but unknown id: 404.
	rec = doRequest(t, router, key, http.MethodGet, "/crm/api/v1/contacts/00000000-0000-0000-0000-00000000dead", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	body = decodeBody(t, rec)
	assert.Equal(t, CodeNotFound, body["code"])
}

func TestContacts_PatchNullClears(t *testing.T) {
	router, key := newTestAPI(t)

	rec := doRequest(t, router, key, http.MethodPost, "/crm/api/v1/contacts", map[string]any{
		"name":  "Ana",
		"email": "ana@ex.com",
		"notes": "call back",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeBody(t, rec)["data"].(map[string]any)["contact_id"].(string)

	rec = doRequest(t, router, key, http.MethodPatch, "/crm/api/v1/contacts/"+id, map[string]any{
		"notes": nil,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.Nil(t, data["notes"])
	assert.Equal(t, "ana@ex.com", data["email"])
}

func TestContacts_CursorWalkVisitsEveryRecordOnce(t *testing.T) {
	router, key := newTestAPI(t)

	for i := 0; i < 5; i++ {
		rec := doRequest(t, router, key, http.MethodPost, "/crm/api/v1/contacts", map[string]any{
			"name":  fmt.Sprintf("Contact %d", i),
			"email": fmt.Sprintf("c%d@ex.com", i),
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	seen := map[string]bool{}
	cursorToken := ""
	pages := 0
	for {
		target := "/crm/api/v1/contacts?limit=2"
		if cursorToken != "" {
			target += "&cursor=" + cursorToken
		}
		rec := doRequest(t, router, key, http.MethodGet, target, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)

		for _, item := range body["data"].([]any) {
			id := item.(map[string]any)["contact_id"].(string)
			assert.False(t, seen[id], "record visited twice")
			seen[id] = true
		}

		pages++
		require.Less(t, pages, 10, "cursor walk did not terminate")
		next, ok := body["nextCursor"].(string)
		if !ok {
			assert.Nil(t, body["nextCursor"])
			break
		}
		cursorToken = next
	}

	assert.Len(t, seen, 5)
	assert.Equal(t, 3, pages)
}

func TestContacts_ListFilterByClientCompanyID(t *testing.T) {
	router, key := newTestAPI(t)

	rec := doRequest(t, router, key, http.MethodPost, "/crm/api/v1/contacts", map[string]any{
		"name":         "Ana",
		"email":        "ana@ex.com",
		"company_name": "Acme Corp",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	companyID := decodeBody(t, rec)["data"].(map[string]any)["company_id"].(string)

	rec = doRequest(t, router, key, http.MethodPost, "/crm/api/v1/contacts", map[string]any{
		"name":  "Ben",
		"email": "ben@ex.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, router, key, http.MethodGet,
		"/crm/api/v1/contacts?client_company_id="+companyID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, "Ana", data[0].(map[string]any)["name"])

	// The shorthand param filters the same way.
	rec = doRequest(t, router, key, http.MethodGet,
		"/crm/api/v1/contacts?company_id="+companyID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["data"].([]any), 1)
}

func TestContacts_DeleteSoft(t *testing.T) {
	router, key := newTestAPI(t)

	rec := doRequest(t, router, key, http.MethodPost, "/crm/api/v1/contacts", map[string]any{
		"name":  "Ana",
		"email": "ana@ex.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeBody(t, rec)["data"].(map[string]any)["contact_id"].(string)

	rec = doRequest(t, router, key, http.MethodDelete, "/crm/api/v1/contacts/"+id, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, router, key, http.MethodGet, "/crm/api/v1/contacts/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCompanies_ResolveAndList(t *testing.T) {
	router, key := newTestAPI(t)

	rec := doRequest(t, router, key, http.MethodPost, "/crm/api/v1/companies", map[string]any{
		"company_name": "Acme Corp",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	first := decodeBody(t, rec)["data"].(map[string]any)["company_id"].(string)

	rec = doRequest(t, router, key, http.MethodPost, "/crm/api/v1/companies", map[string]any{
		"company_name": "acme corp",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	second := decodeBody(t, rec)["data"].(map[string]any)["company_id"].(string)
	assert.Equal(t, first, second)

	rec = doRequest(t, router, key, http.MethodGet, "/crm/api/v1/companies", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["data"].([]any), 1)
}

func TestContacts_Export(t *testing.T) {
	router, key := newTestAPI(t)

	rec := doRequest(t, router, key, http.MethodPost, "/crm/api/v1/contacts", map[string]any{
		"name":  "Ana",
		"email": "ana@ex.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, router, key, http.MethodGet, "/crm/api/v1/contacts/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"),
	)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.NotZero(t, rec.Body.Len())
}
