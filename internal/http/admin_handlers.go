package httpapi

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"clientdesk-data/internal/service"

	"go.uber.org/zap"
)

const (
	adminTenantsPath = "/admin/api/v1/tenants"
	adminAPIKeysPath = "/admin/api/v1/api-keys"
)

// AdminHandler platform administration: tenant CRUD and API key issuance.
// Guarded by the configured root token, not by tenant API keys.
type AdminHandler struct {
	tenants   service.TenantService
	auth      service.AuthService
	rootToken string
	logger    *zap.Logger
}

func NewAdminHandler(tenants service.TenantService, auth service.AuthService, rootToken string, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		tenants:   tenants,
		auth:      auth,
		rootToken: rootToken,
		logger:    logger,
	}
}

func (h *AdminHandler) authorized(r *http.Request) bool {
	if h.rootToken == "" {
		return false
	}
	token := bearerToken(r)
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.rootToken)) == 1
}

func (h *AdminHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		writeError(w, http.StatusUnauthorized, CodeUnauthorized, "invalid admin token")
		return
	}

	switch {
	case r.URL.Path == adminTenantsPath:
		switch r.Method {
		case http.MethodGet:
			h.listTenants(w, r)
		case http.MethodPost:
			h.createTenant(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}

	case strings.HasPrefix(r.URL.Path, adminTenantsPath+"/"):
		h.tenantByID(w, r)

	case r.URL.Path == adminAPIKeysPath:
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.issueKey(w, r)

	case strings.HasPrefix(r.URL.Path, adminAPIKeysPath+"/"):
		if r.Method != http.MethodDelete {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.revokeKey(w, r)

	default:
		writeError(w, http.StatusNotFound, CodeNotFound, "not found")
	}
}

func (h *AdminHandler) listTenants(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := h.tenants.ListTenants(r.Context(), service.ListTenantsRequest{
		Status: q.Get("status"),
		Search: strings.TrimSpace(q.Get("q")),
		Page:   parseInt(q.Get("page"), 1),
		Size:   parseInt(q.Get("size"), 50),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":  resp.Items,
		"total": resp.Total,
	})
}

func (h *AdminHandler) createTenant(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TenantName string `json:"tenant_name"`
	}
	if err := readBodyJSON(r, maxBodyBytes, &body); err != nil {
		writeError(w, http.StatusUnprocessableEntity, CodeValidationError, "body: invalid json")
		return
	}

	tenant, err := h.tenants.CreateTenant(r.Context(), service.CreateTenantRequest{TenantName: body.TenantName})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, DataResponse{Data: tenant})
}

// tenantByID handles PATCH /admin/api/v1/tenants/{id} (status changes).
func (h *AdminHandler) tenantByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, adminTenantsPath+"/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, CodeNotFound, "not found")
		return
	}
	if r.Method != http.MethodPatch {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := readBodyJSON(r, maxBodyBytes, &body); err != nil {
		writeError(w, http.StatusUnprocessableEntity, CodeValidationError, "body: invalid json")
		return
	}

	if err := h.tenants.SetTenantStatus(r.Context(), id, body.Status); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DataResponse{Data: map[string]string{
		"tenant_id": id,
		"status":    body.Status,
	}})
}

func (h *AdminHandler) issueKey(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TenantID string `json:"tenant_id"`
		Label    string `json:"label"`
	}
	if err := readBodyJSON(r, maxBodyBytes, &body); err != nil {
		writeError(w, http.StatusUnprocessableEntity, CodeValidationError, "body: invalid json")
		return
	}

	resp, err := h.auth.IssueKey(r.Context(), service.IssueKeyRequest{
		TenantID: body.TenantID,
		Label:    body.Label,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, DataResponse{Data: resp})
}

func (h *AdminHandler) revokeKey(w http.ResponseWriter, r *http.Request) {
	keyID := strings.TrimPrefix(r.URL.Path, adminAPIKeysPath+"/")
	if keyID == "" || strings.Contains(keyID, "/") {
		writeError(w, http.StatusNotFound, CodeNotFound, "not found")
		return
	}
	tenantID := r.URL.Query().Get("tenant_id")
	if tenantID == "" {
		writeError(w, http.StatusUnprocessableEntity, CodeValidationError, "tenant_id: is required")
		return
	}

	if err := h.auth.RevokeKey(r.Context(), tenantID, keyID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
