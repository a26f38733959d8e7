package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pcp-logistica/tracking-portal/internal/core/domain"
)

// Require rejects the request with 403 unless allow accepts the current user.
// It must run after Auth.
func Require(allow func(domain.User) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
			}
			if !allow(*user) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// RequireView allows users who may open any of views. Admins hold every view.
func RequireView(views ...domain.View) echo.MiddlewareFunc {
	return Require(func(u domain.User) bool {
		for _, v := range views {
			if u.CanView(v) {
				return true
			}
		}
		return false
	})
}

// RequireMutation allows users who may create, edit or delete records.
func RequireMutation() echo.MiddlewareFunc {
	return Require(domain.User.CanMutateRecords)
}

// RequireMutationOrView allows record editors and users of any of views.
func RequireMutationOrView(views ...domain.View) echo.MiddlewareFunc {
	return Require(func(u domain.User) bool {
		if u.CanMutateRecords() {
			return true
		}
		for _, v := range views {
			if u.CanView(v) {
				return true
			}
		}
		return false
	})
}

// RequireAdmin allows admins only.
func RequireAdmin() echo.MiddlewareFunc {
	return Require(domain.User.IsAdmin)
}
