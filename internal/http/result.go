package httpapi

import (
	"errors"
	"net/http"

	"clientdesk-data/internal/repository"
	"clientdesk-data/internal/service"
)

// Error codes of the public API. Fixed set; clients switch on these.
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeDBError         = "DB_ERROR"
	CodeUnauthorized    = "UNAUTHORIZED"
)

// DataResponse success envelope.
type DataResponse struct {
	Data any `json:"data"`
}

// ListResponse success envelope for paginated lists. NextCursor is null on
// the last page.
type ListResponse struct {
	Data       any     `json:"data"`
	NextCursor *string `json:"nextCursor"`
}

// UpsertResponse success envelope for create-or-update.
type UpsertResponse struct {
	Data   any    `json:"data"`
	Action string `json:"action"`
}

// ErrorResponse failure envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Code: code})
}

// writeServiceError maps service/repository errors onto the fixed code set.
func writeServiceError(w http.ResponseWriter, err error) {
	if verr, ok := service.AsValidationError(err); ok {
		writeError(w, http.StatusUnprocessableEntity, CodeValidationError, verr.Error())
		return
	}
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, CodeNotFound, "not found")
		return
	}
	if errors.Is(err, service.ErrUnauthorized) {
		writeError(w, http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
		return
	}
	writeError(w, http.StatusInternalServerError, CodeDBError, "store operation failed")
}
