package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/pcp-logistica/tracking-portal/internal/core/domain"
	"github.com/pcp-logistica/tracking-portal/internal/core/ports"
)

type stubSessions struct {
	users map[string]*domain.User
}

func (s *stubSessions) Save(context.Context, string, domain.User) error { return nil }
func (s *stubSessions) User(_ context.Context, sid string) (*domain.User, error) {
	if u, ok := s.users[sid]; ok {
		return u, nil
	}
	return nil, domain.ErrNoSession
}
func (s *stubSessions) Restore(context.Context, string) (*ports.SessionState, error) { return nil, nil }
func (s *stubSessions) Clear(context.Context, string) error                         { return nil }
func (s *stubSessions) SetTheme(context.Context, string, ports.Theme) error          { return nil }
func (s *stubSessions) ToggleTheme(context.Context, string) (ports.Theme, error) {
	return ports.ThemeDark, nil
}
func (s *stubSessions) SetViewMode(context.Context, string, ports.DashboardViewMode) error {
	return nil
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func sessionsWith(sid string, u *domain.User) *stubSessions {
	return &stubSessions{users: map[string]*domain.User{sid: u}}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	signed := signToken(t, jwt.MapClaims{"sid": "s1", "user_id": "u1", "exp": time.Now().Add(time.Hour).Unix()})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	mw := Auth("secret", sessionsWith("s1", &domain.User{ID: "u1", Name: "ANA"}))
	handler := mw(func(c echo.Context) error {
		called = true
		if SessionID(c) != "s1" {
			t.Fatalf("session id not set")
		}
		if u := CurrentUser(c); u == nil || u.ID != "u1" {
			t.Fatalf("user not set: %+v", u)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestAuthMiddleware_TokenFromQuery(t *testing.T) {
	e := echo.New()
	signed := signToken(t, jwt.MapClaims{"sid": "s1"})

	req := httptest.NewRequest(http.MethodGet, "/v1/chat/stream?token="+signed, nil)
	c := e.NewContext(req, httptest.NewRecorder())

	handler := Auth("secret", sessionsWith("s1", &domain.User{ID: "u1"}))(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func assertUnauthorized(t *testing.T, err error) {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	expired := jwt.MapClaims{"sid": "s1", "exp": time.Now().Add(-time.Hour).Unix()}
	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"invalid format", "Token abc"},
		{"garbage token", "Bearer not-a-jwt"},
		{"expired token", "Bearer " + signToken(t, expired)},
		{"no sid", "Bearer " + signToken(t, jwt.MapClaims{"user_id": "u1"})},
		{"unknown session", "Bearer " + signToken(t, jwt.MapClaims{"sid": "gone"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			c := e.NewContext(req, httptest.NewRecorder())

			handler := Auth("secret", sessionsWith("s1", &domain.User{ID: "u1"}))(func(c echo.Context) error {
				t.Fatalf("should not reach next handler")
				return nil
			})
			assertUnauthorized(t, handler(c))
		})
	}
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	e := echo.New()
	signed, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sid": "s1"}).SignedString([]byte("other"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	c := e.NewContext(req, httptest.NewRecorder())

	handler := Auth("secret", sessionsWith("s1", &domain.User{ID: "u1"}))(func(c echo.Context) error {
		return nil
	})
	assertUnauthorized(t, handler(c))
}
