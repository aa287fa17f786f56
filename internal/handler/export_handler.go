package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unisched/schedule-builder-api/internal/service"
	"github.com/unisched/schedule-builder-api/pkg/response"
)

type exportAPI interface {
	TimetableCSV(ctx context.Context, sessionID string) ([]byte, error)
	TimetablePDF(ctx context.Context, sessionID string) ([]byte, error)
}

// ExportHandler serves timetable downloads.
type ExportHandler struct {
	service exportAPI
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// TimetableCSV godoc
// @Summary Download the session timetable as CSV
// @Tags Export
// @Produce text/csv
// @Param id path string true "Session ID"
// @Success 200 {file} file
// @Router /schedules/{id}/export/csv [get]
func (h *ExportHandler) TimetableCSV(c *gin.Context) {
	sessionID := c.Param("id")
	payload, err := h.service.TimetableCSV(c.Request.Context(), sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="timetable_%s.csv"`, sessionID))
	c.Data(http.StatusOK, "text/csv", payload)
}

// TimetablePDF godoc
// @Summary Download the session timetable as PDF
// @Tags Export
// @Produce application/pdf
// @Param id path string true "Session ID"
// @Success 200 {file} file
// @Router /schedules/{id}/export/pdf [get]
func (h *ExportHandler) TimetablePDF(c *gin.Context) {
	sessionID := c.Param("id")
	payload, err := h.service.TimetablePDF(c.Request.Context(), sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="timetable_%s.pdf"`, sessionID))
	c.Data(http.StatusOK, "application/pdf", payload)
}
