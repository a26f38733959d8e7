package ports

import (
	"context"

	"github.com/pcp-logistica/tracking-portal/internal/core/domain"
)

// Theme is the UI colour scheme preference.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// DashboardViewMode is the last layout chosen on the dashboard.
type DashboardViewMode string

const (
	ViewModeTable DashboardViewMode = "table"
	ViewModeGrid  DashboardViewMode = "grid"
)

// SessionState is everything cached for one client.
type SessionState struct {
	User     *domain.User      `json:"user"`
	Theme    Theme             `json:"theme"`
	ViewMode DashboardViewMode `json:"viewMode"`
}

// SessionService owns the cached identity and UI preferences of each client.
type SessionService interface {
	Save(ctx context.Context, sessionID string, user domain.User) error
	User(ctx context.Context, sessionID string) (*domain.User, error)
	Restore(ctx context.Context, sessionID string) (*SessionState, error)
	Clear(ctx context.Context, sessionID string) error
	SetTheme(ctx context.Context, sessionID string, theme Theme) error
	ToggleTheme(ctx context.Context, sessionID string) (Theme, error)
	SetViewMode(ctx context.Context, sessionID string, mode DashboardViewMode) error
}
