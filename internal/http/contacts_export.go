package httpapi

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"clientdesk-data/internal/service"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ContactsExportHeader export column order.
var ContactsExportHeader = []string{
	"Name",
	"Email",
	"Phone",
	"Role",
	"Company",
	"Status",
	"Stage",
	"Source",
	"Birth Date",
	"Last Interaction",
	"Last Purchase",
	"Total Value",
	"Created At",
}

// ContactsExportHandler streams the current filter set as an .xlsx workbook.
type ContactsExportHandler struct {
	svc     service.ContactService
	maxRows int
	logger  *zap.Logger
}

func NewContactsExportHandler(svc service.ContactService, maxRows int, logger *zap.Logger) *ContactsExportHandler {
	if maxRows <= 0 {
		maxRows = 10000
	}
	return &ContactsExportHandler{svc: svc, maxRows: maxRows, logger: logger}
}

func (h *ContactsExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tenant, ok := TenantFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	resp, err := h.svc.ListContacts(r.Context(), service.ListContactsRequest{
		TenantID: tenant.TenantID,
		Filters:  contactFilters(r),
		Offset:   0,
		Limit:    h.maxRows,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	data, err := generateContactsWorkbook(resp.Items)
	if err != nil {
		h.logger.Error("Failed to generate contacts workbook",
			zap.String("tenant_id", tenant.TenantID),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, CodeDBError, "export failed")
		return
	}

	filename := fmt.Sprintf("contacts_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func generateContactsWorkbook(contacts []*service.ContactDTO) ([]byte, error) {
	f := excelize.NewFile()

	sheetName := "Contacts"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, header := range ContactsExportHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, c := range contacts {
		row := []any{
			c.Name,
			derefOr(c.Email, ""),
			derefOr(c.Phone, ""),
			derefOr(c.Role, ""),
			derefOr(c.CompanyName, ""),
			c.Status,
			derefOr(c.Stage, ""),
			derefOr(c.Source, ""),
			derefOr(c.BirthDate, ""),
			derefOr(c.LastInteractionAt, ""),
			derefOr(c.LastPurchaseDate, ""),
			c.TotalValue,
			c.CreatedAt,
		}
		for colIdx, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			_ = f.SetCellValue(sheetName, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func derefOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}
