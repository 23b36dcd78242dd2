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

const dealsBasePath = "/crm/api/v1/deals"

// PipelinesHandler public pipeline board routes.
type PipelinesHandler struct {
	svc    service.PipelineService
	logger *zap.Logger
}

func NewPipelinesHandler(svc service.PipelineService, logger *zap.Logger) *PipelinesHandler {
	return &PipelinesHandler{svc: svc, logger: logger}
}

func (h *PipelinesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tenant, ok := TenantFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
		return
	}

	switch r.Method {
	case http.MethodGet:
		pipelines, err := h.svc.ListPipelines(r.Context(), tenant.TenantID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, DataResponse{Data: pipelines})

	case http.MethodPost:
		var body struct {
			PipelineName string   `json:"pipeline_name"`
			Stages       []string `json:"stages"`
		}
		if err := readBodyJSON(r, maxBodyBytes, &body); err != nil {
			writeError(w, http.StatusUnprocessableEntity, CodeValidationError, "body: invalid json")
			return
		}

		pipeline, err := h.svc.CreatePipeline(r.Context(), service.CreatePipelineRequest{
			TenantID:     tenant.TenantID,
			PipelineName: body.PipelineName,
			Stages:       body.Stages,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, DataResponse{Data: pipeline})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// DealsHandler public deal routes.
type DealsHandler struct {
	svc    service.PipelineService
	logger *zap.Logger
}

func NewDealsHandler(svc service.PipelineService, logger *zap.Logger) *DealsHandler {
	return &DealsHandler{svc: svc, logger: logger}
}

func (h *DealsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tenant, ok := TenantFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
		return
	}

	if r.URL.Path == dealsBasePath {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r, tenant.TenantID)
		case http.MethodPost:
			h.create(w, r, tenant.TenantID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	id := strings.TrimPrefix(r.URL.Path, dealsBasePath+"/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, CodeNotFound, "not found")
		return
	}
	dealID, valid := normalize.UUIDParam(id)
	if !valid {
		writeError(w, http.StatusUnprocessableEntity, CodeValidationError, "id: must be a valid uuid")
		return
	}

	switch r.Method {
	case http.MethodPatch:
		h.patch(w, r, tenant.TenantID, dealID)
	case http.MethodDelete:
		h.delete(w, r, tenant.TenantID, dealID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *DealsHandler) list(w http.ResponseWriter, r *http.Request, tenantID string) {
	q := r.URL.Query()
	offset := cursor.Decode(q.Get("cursor"))
	limit := cursor.ParseLimit(q.Get("limit"))

	filters := repository.DealFilters{Status: strings.TrimSpace(q.Get("status"))}
	if pipelineID := normalize.UUID(q.Get("pipeline_id")); pipelineID != nil {
		filters.PipelineID = *pipelineID
	}
	if stageID := normalize.UUID(q.Get("stage_id")); stageID != nil {
		filters.StageID = *stageID
	}
	if contactID := normalize.UUID(q.Get("contact_id")); contactID != nil {
		filters.ContactID = *contactID
	}

	resp, err := h.svc.ListDeals(r.Context(), service.ListDealsRequest{
		TenantID: tenantID,
		Filters:  filters,
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

func (h *DealsHandler) create(w http.ResponseWriter, r *http.Request, tenantID string) {
	var body struct {
		PipelineID string  `json:"pipeline_id"`
		StageID    string  `json:"stage_id"`
		ContactID  string  `json:"contact_id"`
		Title      string  `json:"title"`
		Amount     float64 `json:"amount"`
		Status     string  `json:"status"`
	}
	if err := readBodyJSON(r, maxBodyBytes, &body); err != nil {
		writeError(w, http.StatusUnprocessableEntity, CodeValidationError, "body: invalid json")
		return
	}

	deal, err := h.svc.CreateDeal(r.Context(), service.CreateDealRequest{
		TenantID:   tenantID,
		PipelineID: body.PipelineID,
		StageID:    body.StageID,
		ContactID:  body.ContactID,
		Title:      body.Title,
		Amount:     body.Amount,
		Status:     body.Status,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, DataResponse{Data: deal})
}

func (h *DealsHandler) patch(w http.ResponseWriter, r *http.Request, tenantID, dealID string) {
	var patch service.DealPatch
	if err := readBodyJSON(r, maxBodyBytes, &patch); err != nil {
		writeError(w, http.StatusUnprocessableEntity, CodeValidationError, "body: invalid json")
		return
	}

	deal, err := h.svc.PatchDeal(r.Context(), tenantID, dealID, patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DataResponse{Data: deal})
}

func (h *DealsHandler) delete(w http.ResponseWriter, r *http.Request, tenantID, dealID string) {
	if err := h.svc.DeleteDeal(r.Context(), tenantID, dealID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
