package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/pcp-logistica/tracking-portal/internal/core/domain"
	"github.com/pcp-logistica/tracking-portal/internal/core/ports"
)

// Context keys set by Auth.
const (
	SessionIDKey = "session_id"
	UserKey      = "user"
)

// tokenQueryParam carries the token on websocket upgrades, where browsers
// cannot set headers.
const tokenQueryParam = "token"

// Auth validates the JWT, loads the cached user of its session and injects
// both into the echo context.
func Auth(jwtSecret string, sessions ports.SessionService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := bearerToken(c)
			if err != nil {
				return err
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			sid, _ := claims["sid"].(string)
			if sid == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token missing session")
			}

			user, err := sessions.User(c.Request().Context(), sid)
			if err != nil {
				if errors.Is(err, domain.ErrNoSession) {
					return echo.NewHTTPError(http.StatusUnauthorized, "session expired")
				}
				return err
			}

			c.Set(SessionIDKey, sid)
			c.Set(UserKey, user)
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		if q := c.QueryParam(tokenQueryParam); q != "" {
			return q, nil
		}
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}
	return parts[1], nil
}

// CurrentUser returns the user injected by Auth, or nil.
func CurrentUser(c echo.Context) *domain.User {
	u, _ := c.Get(UserKey).(*domain.User)
	return u
}

// SessionID returns the session id injected by Auth.
func SessionID(c echo.Context) string {
	sid, _ := c.Get(SessionIDKey).(string)
	return sid
}
