package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pcp-logistica/tracking-portal/internal/api/middleware"
	"github.com/pcp-logistica/tracking-portal/internal/core/domain"
)

// ctxUser returns the user loaded by the Auth middleware. A missing user means
// the route was registered without Auth, which is rejected with 401.
func ctxUser(c echo.Context) (*domain.User, error) {
	u := middleware.CurrentUser(c)
	if u == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return u, nil
}

func ctxSession(c echo.Context) (string, error) {
	sid := middleware.SessionID(c)
	if sid == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	return sid, nil
}

// pathKind parses the :kind segment of the record routes.
func pathKind(c echo.Context) (domain.RecordKind, error) {
	kind, ok := domain.ParseRecordKind(c.Param("kind"))
	if !ok {
		return "", echo.NewHTTPError(http.StatusNotFound, "unknown record kind")
	}
	return kind, nil
}

// pathParam returns an unescaped path parameter. Sheet and group names may
// carry spaces or accents.
func pathParam(c echo.Context, name string) string {
	raw := c.Param(name)
	if v, err := url.PathUnescape(raw); err == nil {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(raw)
}

// bindAndValidate binds the request body into req and runs the validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
