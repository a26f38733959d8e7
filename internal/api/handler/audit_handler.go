package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/pcp-logistica/tracking-portal/internal/core/domain"
	"github.com/pcp-logistica/tracking-portal/internal/core/ports"
)

const defaultAuditLimit = 100

type AuditHandler struct {
	repo ports.AuditRepository
}

func NewAuditHandler(repo ports.AuditRepository) *AuditHandler {
	return &AuditHandler{repo: repo}
}

type auditListResponse struct {
	Events []domain.AuditEvent `json:"events"`
}

// List handles GET /v1/audit.
//
// @Summary      Latest audit events
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Maximum events (default 100)"
// @Success      200    {object}  auditListResponse
// @Failure      403    {object}  map[string]string
// @Router       /v1/audit [get]
func (h *AuditHandler) List(c echo.Context) error {
	limit := defaultAuditLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = n
	}

	events, err := h.repo.ListRecent(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	if events == nil {
		events = []domain.AuditEvent{}
	}
	return c.JSON(http.StatusOK, auditListResponse{Events: events})
}
