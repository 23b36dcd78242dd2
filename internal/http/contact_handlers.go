package httpapi

import (
	"net/http"
	"strings"

	"clientdesk-data/internal/cursor"
	"clientdesk-data/internal/normalize"
	"clientdesk-data/internal/repository"
	"clientdesk-data/internal/service"

	"go.uber.org/zap"
)

const contactsBasePath = "/crm/api/v1/contacts"

const maxBodyBytes = 1 << 20

// ContactsHandler public contact routes.
type ContactsHandler struct {
	svc    service.ContactService
	logger *zap.Logger
}

func NewContactsHandler(svc service.ContactService, logger *zap.Logger) *ContactsHandler {
	return &ContactsHandler{svc: svc, logger: logger}
}

func (h *ContactsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tenant, ok := TenantFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
		return
	}

	if r.URL.Path == contactsBasePath {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r, tenant.TenantID)
		case http.MethodPost:
			h.upsert(w, r, tenant.TenantID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	id := strings.TrimPrefix(r.URL.Path, contactsBasePath+"/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, CodeNotFound, "not found")
		return
	}
	// Path param format failures are validation errors, not 404s.
	contactID, valid := normalize.UUIDParam(id)
	if !valid {
		writeError(w, http.StatusUnprocessableEntity, CodeValidationError, "id: must be a valid uuid")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, tenant.TenantID, contactID)
	case http.MethodPatch:
		h.patch(w, r, tenant.TenantID, contactID)
	case http.MethodDelete:
		h.delete(w, r, tenant.TenantID, contactID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// contactFilters builds the repository filters from query params. Identity
// filters go through the same canonicalization as writes.
func contactFilters(r *http.Request) repository.ContactFilters {
	q := r.URL.Query()
	filters := repository.ContactFilters{Search: strings.TrimSpace(q.Get("q"))}
	if email := normalize.Email(q.Get("email")); email != nil {
		filters.Email = *email
	}
	if phone := normalize.Phone(q.Get("phone")); phone != nil {
		filters.Phone = *phone
	}
	// client_company_id is the documented name; company_id stays as an alias.
	companyParam := q.Get("client_company_id")
	if companyParam == "" {
		companyParam = q.Get("company_id")
	}
	if companyID := normalize.UUID(companyParam); companyID != nil {
		filters.CompanyID = *companyID
	}
	return filters
}

func (h *ContactsHandler) list(w http.ResponseWriter, r *http.Request, tenantID string) {
	q := r.URL.Query()
	offset := cursor.Decode(q.Get("cursor"))
	limit := cursor.ParseLimit(q.Get("limit"))

	resp, err := h.svc.ListContacts(r.Context(), service.ListContactsRequest{
		TenantID: tenantID,
		Filters:  contactFilters(r),
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

func (h *ContactsHandler) get(w http.ResponseWriter, r *http.Request, tenantID, contactID string) {
	contact, err := h.svc.GetContact(r.Context(), tenantID, contactID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DataResponse{Data: contact})
}

func (h *ContactsHandler) upsert(w http.ResponseWriter, r *http.Request, tenantID string) {
	var patch service.ContactPatch
	if err := readBodyJSON(r, maxBodyBytes, &patch); err != nil {
		writeError(w, http.StatusUnprocessableEntity, CodeValidationError, "body: invalid json")
		return
	}

	resp, err := h.svc.UpsertContact(r.Context(), tenantID, patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	status := http.StatusOK
	if resp.Action == service.ActionCreated {
		status = http.StatusCreated
	}
	writeJSON(w, status, UpsertResponse{Data: resp.Contact, Action: resp.Action})
}

func (h *ContactsHandler) patch(w http.ResponseWriter, r *http.Request, tenantID, contactID string) {
	var patch service.ContactPatch
	if err := readBodyJSON(r, maxBodyBytes, &patch); err != nil {
		writeError(w, http.StatusUnprocessableEntity, CodeValidationError, "body: invalid json")
		return
	}

	contact, err := h.svc.PatchContact(r.Context(), tenantID, contactID, patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DataResponse{Data: contact})
}

func (h *ContactsHandler) delete(w http.ResponseWriter, r *http.Request, tenantID, contactID string) {
	if err := h.svc.DeleteContact(r.Context(), tenantID, contactID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
