package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/pcp-logistica/tracking-portal/internal/core/domain"
	"github.com/pcp-logistica/tracking-portal/internal/infrastructure/sheets"
)

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest, "invalid payload"},
		{"credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{"inactive", domain.ErrInactiveUser, http.StatusForbidden, "user is inactive"},
		{"wrapped not found", fmt.Errorf("get: %w", domain.ErrRecordNotFound), http.StatusNotFound, "record not found"},
		{"channel member", domain.ErrNotChannelMember, http.StatusForbidden, "not a member of this channel"},
		{"conflict", domain.ErrUserExists, http.StatusConflict, "user already exists"},
		{"empty message", domain.ErrEmptyMessage, http.StatusBadRequest, domain.ErrEmptyMessage.Error()},
		{"store down", fmt.Errorf("save: %w", sheets.ErrUnavailable), http.StatusBadGateway, "remote store unavailable"},
		{"store status", &sheets.StatusError{Action: sheets.ActionSave, Code: 500}, http.StatusBadGateway, "remote store unavailable"},
		{"registry read on access check", fmt.Errorf("authorize COMPRAS: load groups: %w", &sheets.StatusError{Action: "LIST", Code: 503}), http.StatusBadGateway, "remote store unavailable"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}

	handler := NewHTTPErrorHandler(zerolog.Nop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			handler(tt.err, c)

			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error != tt.msg {
				t.Errorf("expected %q, got %q", tt.msg, body.Error)
			}
		})
	}
}
