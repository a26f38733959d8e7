package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pcp-logistica/tracking-portal/internal/core/domain"
	"github.com/pcp-logistica/tracking-portal/internal/core/ports"
)

// RecordHandler serves the dashboard, follow-up and history views.
type RecordHandler struct {
	service ports.RecordService
}

func NewRecordHandler(service ports.RecordService) *RecordHandler {
	return &RecordHandler{service: service}
}

// List handles GET /v1/records/:kind.
//
// @Summary      List records
// @Description  Case-insensitive search over supplier, invoices and AWB number; scope=dashboard also covers brand, material and tracking. Repeat status (or comma-separate it) to filter.
// @Tags         records
// @Produce      json
// @Security     BearerAuth
// @Param        kind    path      string  true   "awb or pre"
// @Param        q       query     string  false  "Search term"
// @Param        status  query     string  false  "Status filter"
// @Param        scope   query     string  false  "follow-up (default) or dashboard"
// @Success      200     {object}  recordListResponse
// @Failure      404     {object}  map[string]string
// @Router       /v1/records/{kind} [get]
func (h *RecordHandler) List(c echo.Context) error {
	kind, err := pathKind(c)
	if err != nil {
		return err
	}

	scope := ports.ScopeFollowUp
	if strings.EqualFold(c.QueryParam("scope"), string(ports.ScopeDashboard)) {
		scope = ports.ScopeDashboard
	}

	records := h.service.List(c.Request().Context(), ports.ListRecordsInput{
		Kind:     kind,
		Search:   c.QueryParam("q"),
		Statuses: statusFilter(c.QueryParams()["status"]),
		Scope:    scope,
	})
	return c.JSON(http.StatusOK, recordListResponse{Total: len(records), Records: toRecordViews(records)})
}

// History handles GET /v1/records/:kind/history.
//
// @Summary      Finished records
// @Tags         records
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path      string  true   "awb or pre"
// @Param        q     query     string  false  "Search term"
// @Success      200   {object}  recordListResponse
// @Router       /v1/records/{kind}/history [get]
func (h *RecordHandler) History(c echo.Context) error {
	kind, err := pathKind(c)
	if err != nil {
		return err
	}
	records := h.service.History(c.Request().Context(), kind, c.QueryParam("q"))
	return c.JSON(http.StatusOK, recordListResponse{Total: len(records), Records: toRecordViews(records)})
}

// Get handles GET /v1/records/:kind/:id.
//
// @Summary      Get a record
// @Tags         records
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path      string  true  "awb or pre"
// @Param        id    path      string  true  "Record ID"
// @Success      200   {object}  map[string]interface{}
// @Failure      404   {object}  map[string]string
// @Router       /v1/records/{kind}/{id} [get]
func (h *RecordHandler) Get(c echo.Context) error {
	kind, err := pathKind(c)
	if err != nil {
		return err
	}
	rec, err := h.service.Get(c.Request().Context(), kind, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRecordView(*rec))
}

// Attachments handles GET /v1/records/:kind/:id/attachments.
//
// @Summary      Attachment links of a record
// @Tags         records
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path      string  true  "awb or pre"
// @Param        id    path      string  true  "Record ID"
// @Success      200   {object}  attachmentsResponse
// @Failure      404   {object}  map[string]string
// @Router       /v1/records/{kind}/{id}/attachments [get]
func (h *RecordHandler) Attachments(c echo.Context) error {
	kind, err := pathKind(c)
	if err != nil {
		return err
	}
	rec, err := h.service.Get(c.Request().Context(), kind, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, attachmentsResponse{ID: rec.ID, Links: nonNil(rec.AttachmentLinks())})
}

// Create handles POST /v1/records/:kind.
//
// @Summary      Create a record
// @Tags         records
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path      string         true  "awb or pre"
// @Param        body  body      recordRequest  true  "Record form"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /v1/records/{kind} [post]
func (h *RecordHandler) Create(c echo.Context) error {
	return h.save(c, "", http.StatusCreated, h.service.Create)
}

// Update handles PUT /v1/records/:kind/:id.
//
// @Summary      Update a record
// @Tags         records
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path      string         true  "awb or pre"
// @Param        id    path      string         true  "Record ID"
// @Param        body  body      recordRequest  true  "Record form"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/records/{kind}/{id} [put]
func (h *RecordHandler) Update(c echo.Context) error {
	return h.save(c, c.Param("id"), http.StatusOK, h.service.Update)
}

type saveFunc func(ctx context.Context, in ports.SaveRecordInput) (*domain.ShipmentRecord, error)

func (h *RecordHandler) save(c echo.Context, id string, status int, fn saveFunc) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	kind, err := pathKind(c)
	if err != nil {
		return err
	}
	var req recordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	rec, err := fn(c.Request().Context(), req.toInput(kind, id, user.Name))
	if err != nil {
		return err
	}
	return c.JSON(status, toRecordView(*rec))
}

// Delete handles DELETE /v1/records/:kind/:id.
//
// @Summary      Delete a record
// @Tags         records
// @Security     BearerAuth
// @Param        kind  path  string  true  "awb or pre"
// @Param        id    path  string  true  "Record ID"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /v1/records/{kind}/{id} [delete]
func (h *RecordHandler) Delete(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	kind, err := pathKind(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), kind, c.Param("id"), user.Name); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// statusFilter accepts repeated and comma-separated status values.
func statusFilter(values []string) []domain.RecordStatus {
	var out []domain.RecordStatus
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.ToUpper(strings.TrimSpace(part)); part != "" {
				out = append(out, domain.RecordStatus(part))
			}
		}
	}
	return out
}
