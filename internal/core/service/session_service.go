package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pcp-logistica/tracking-portal/internal/core/domain"
	"github.com/pcp-logistica/tracking-portal/internal/core/ports"
)

// Per-session keys in the session store.
const (
	keyAuthUser = "auth_user"
	keyTheme    = "app_theme"
	keyViewMode = "dashboard_view_mode"
)

// SessionService owns the cached identity and UI preferences of each client.
// A session is the last known user record, re-validated against the registry
// on restore; there is no server-side credential check beyond login.
type SessionService struct {
	store  ports.SessionStore
	users  ports.UserRepository
	logger zerolog.Logger
}

func NewSessionService(store ports.SessionStore, users ports.UserRepository, logger zerolog.Logger) *SessionService {
	return &SessionService{store: store, users: users, logger: logger}
}

func sessionKey(sessionID, name string) string {
	return "session:" + sessionID + ":" + name
}

func (s *SessionService) Save(ctx context.Context, sessionID string, user domain.User) error {
	b, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if err := s.store.Set(ctx, sessionKey(sessionID, keyAuthUser), string(b)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// User returns the cached user. A payload that no longer decodes is dropped
// and reported as ErrNoSession.
func (s *SessionService) User(ctx context.Context, sessionID string) (*domain.User, error) {
	if sessionID == "" {
		return nil, domain.ErrNoSession
	}
	key := sessionKey(sessionID, keyAuthUser)
	raw, found, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !found {
		return nil, domain.ErrNoSession
	}

	var u domain.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil || u.ID == "" {
		s.logger.Warn().Str("session_id", sessionID).Msg("corrupted session payload, clearing")
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.logger.Warn().Err(delErr).Str("session_id", sessionID).Msg("failed to clear corrupted session")
		}
		return nil, domain.ErrNoSession
	}
	return &u, nil
}

// Restore loads the cached session and refreshes the user from the registry
// when the registry still lists the same ID.
func (s *SessionService) Restore(ctx context.Context, sessionID string) (*ports.SessionState, error) {
	user, err := s.User(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	for _, u := range s.users.List(ctx) {
		if u.ID != user.ID {
			continue
		}
		fresh := u
		if err := s.Save(ctx, sessionID, fresh); err != nil {
			s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("failed to refresh cached user")
		}
		user = &fresh
		break
	}

	theme, err := s.theme(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	mode, err := s.viewMode(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &ports.SessionState{User: user, Theme: theme, ViewMode: mode}, nil
}

func (s *SessionService) Clear(ctx context.Context, sessionID string) error {
	err := s.store.Delete(ctx,
		sessionKey(sessionID, keyAuthUser),
		sessionKey(sessionID, keyTheme),
		sessionKey(sessionID, keyViewMode),
	)
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *SessionService) SetTheme(ctx context.Context, sessionID string, theme ports.Theme) error {
	if theme != ports.ThemeDark && theme != ports.ThemeLight {
		return fmt.Errorf("set theme: %w: %q", domain.ErrInvalidInput, theme)
	}
	if err := s.store.Set(ctx, sessionKey(sessionID, keyTheme), string(theme)); err != nil {
		return fmt.Errorf("set theme: %w", err)
	}
	return nil
}

func (s *SessionService) ToggleTheme(ctx context.Context, sessionID string) (ports.Theme, error) {
	current, err := s.theme(ctx, sessionID)
	if err != nil {
		return "", err
	}
	next := ports.ThemeLight
	if current == ports.ThemeLight {
		next = ports.ThemeDark
	}
	if err := s.SetTheme(ctx, sessionID, next); err != nil {
		return "", err
	}
	return next, nil
}

func (s *SessionService) SetViewMode(ctx context.Context, sessionID string, mode ports.DashboardViewMode) error {
	if mode != ports.ViewModeTable && mode != ports.ViewModeGrid {
		return fmt.Errorf("set view mode: %w: %q", domain.ErrInvalidInput, mode)
	}
	if err := s.store.Set(ctx, sessionKey(sessionID, keyViewMode), string(mode)); err != nil {
		return fmt.Errorf("set view mode: %w", err)
	}
	return nil
}

func (s *SessionService) theme(ctx context.Context, sessionID string) (ports.Theme, error) {
	raw, found, err := s.store.Get(ctx, sessionKey(sessionID, keyTheme))
	if err != nil {
		return "", fmt.Errorf("load theme: %w", err)
	}
	if !found || ports.Theme(raw) != ports.ThemeLight {
		return ports.ThemeDark, nil
	}
	return ports.ThemeLight, nil
}

func (s *SessionService) viewMode(ctx context.Context, sessionID string) (ports.DashboardViewMode, error) {
	raw, found, err := s.store.Get(ctx, sessionKey(sessionID, keyViewMode))
	if err != nil {
		return "", fmt.Errorf("load view mode: %w", err)
	}
	if !found || ports.DashboardViewMode(raw) != ports.ViewModeGrid {
		return ports.ViewModeTable, nil
	}
	return ports.ViewModeGrid, nil
}
