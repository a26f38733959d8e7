package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pcp-logistica/tracking-portal/internal/core/domain"
	"github.com/pcp-logistica/tracking-portal/internal/core/ports"
)

const themeToggle = "toggle"

// SessionHandler exposes the cached identity and UI preferences.
type SessionHandler struct {
	sessions ports.SessionService
}

func NewSessionHandler(sessions ports.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type themeRequest struct {
	Theme string `json:"theme" validate:"required,oneof=dark light toggle"`
}

type themeResponse struct {
	Theme ports.Theme `json:"theme"`
}

type viewModeRequest struct {
	Mode string `json:"mode" validate:"required,oneof=table grid"`
}

type sessionResponse struct {
	SessionID string         `json:"sessionId"`
	User      *domain.User   `json:"user"`
	Views     domain.ViewSet `json:"views"`
}

// Current returns the cached user of the session as loaded by Auth.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  map[string]string
// @Router       /v1/session [get]
func (h *SessionHandler) Current(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	sid, err := ctxSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionResponse{SessionID: sid, User: user, Views: user.Views()})
}

// Restore refreshes the cached user from the registry and returns the full
// session state.
//
// @Summary      Restore session
// @Tags         session
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.SessionState
// @Failure      401  {object}  map[string]string
// @Router       /v1/session/restore [post]
func (h *SessionHandler) Restore(c echo.Context) error {
	sid, err := ctxSession(c)
	if err != nil {
		return err
	}
	state, err := h.sessions.Restore(c.Request().Context(), sid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, state)
}

// SetTheme stores the theme, or flips it when theme is "toggle".
//
// @Summary      Set UI theme
// @Tags         session
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      themeRequest  true  "dark, light or toggle"
// @Success      200   {object}  themeResponse
// @Failure      400   {object}  map[string]string
// @Router       /v1/session/theme [put]
func (h *SessionHandler) SetTheme(c echo.Context) error {
	sid, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req themeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if req.Theme == themeToggle {
		theme, err := h.sessions.ToggleTheme(ctx, sid)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, themeResponse{Theme: theme})
	}

	theme := ports.Theme(req.Theme)
	if err := h.sessions.SetTheme(ctx, sid, theme); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, themeResponse{Theme: theme})
}

// SetViewMode stores the dashboard layout.
//
// @Summary      Set dashboard view mode
// @Tags         session
// @Accept       json
// @Security     BearerAuth
// @Param        body  body  viewModeRequest  true  "table or grid"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Router       /v1/session/view-mode [put]
func (h *SessionHandler) SetViewMode(c echo.Context) error {
	sid, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req viewModeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.sessions.SetViewMode(c.Request().Context(), sid, ports.DashboardViewMode(req.Mode)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
