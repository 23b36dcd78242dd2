package httpapi

import (
	"net/http"
	"strings"

	"clientdesk-data/internal/cursor"
	"clientdesk-data/internal/service"

	"go.uber.org/zap"
)

// CompaniesHandler public company routes.
type CompaniesHandler struct {
	svc    service.CompanyService
	logger *zap.Logger
}

func NewCompaniesHandler(svc service.CompanyService, logger *zap.Logger) *CompaniesHandler {
	return &CompaniesHandler{svc: svc, logger: logger}
}

func (h *CompaniesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tenant, ok := TenantFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.list(w, r, tenant.TenantID)
	case http.MethodPost:
		h.resolve(w, r, tenant.TenantID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *CompaniesHandler) list(w http.ResponseWriter, r *http.Request, tenantID string) {
	q := r.URL.Query()
	offset := cursor.Decode(q.Get("cursor"))
	limit := cursor.ParseLimit(q.Get("limit"))

	resp, err := h.svc.ListCompanies(r.Context(), service.ListCompaniesRequest{
		TenantID: tenantID,
		Search:   strings.TrimSpace(q.Get("q")),
		Offset:   offset,
		Limit:    limit,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ListResponse{
		Data:       resp.Items,
		NextCursor: cursor.Next(offset, limit, resp.Total),
	})
}

func (h *CompaniesHandler) resolve(w http.ResponseWriter, r *http.Request, tenantID string) {
	var body struct {
		CompanyName string `json:"company_name"`
	}
	if err := readBodyJSON(r, maxBodyBytes, &body); err != nil {
		writeError(w, http.StatusUnprocessableEntity, CodeValidationError, "body: invalid json")
		return
	}

	company, err := h.svc.ResolveCompany(r.Context(), tenantID, body.CompanyName)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DataResponse{Data: company})
}
