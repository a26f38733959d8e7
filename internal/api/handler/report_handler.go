package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pcp-logistica/tracking-portal/internal/core/ports"
)

type ReportHandler struct {
	service ports.ReportService
}

func NewReportHandler(service ports.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// Build handles GET /v1/reports.
//
// @Summary      BI report over both record sheets
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.Report
// @Failure      403  {object}  map[string]string
// @Router       /v1/reports [get]
func (h *ReportHandler) Build(c echo.Context) error {
	report, err := h.service.Build(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}
