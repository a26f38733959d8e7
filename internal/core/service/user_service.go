package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pcp-logistica/tracking-portal/internal/core/domain"
	"github.com/pcp-logistica/tracking-portal/internal/core/ports"
)

type UserService struct {
	users    ports.UserRepository
	sessions ports.SessionService
	audit    ports.Auditor
	logger   zerolog.Logger
}

func NewUserService(users ports.UserRepository, sessions ports.SessionService, audit ports.Auditor, logger zerolog.Logger) *UserService {
	return &UserService{users: users, sessions: sessions, audit: auditorOrNoop(audit), logger: logger}
}

// List returns the users whose name or e-mail contains search.
func (s *UserService) List(ctx context.Context, search string) []domain.User {
	users := s.users.List(ctx)
	term := strings.ToLower(strings.TrimSpace(search))
	if term == "" {
		return users
	}
	out := make([]domain.User, 0, len(users))
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.Name), term) || strings.Contains(strings.ToLower(u.Email), term) {
			out = append(out, u)
		}
	}
	return out
}

// Save creates a user when in.ID is empty and updates it otherwise. An empty
// password on update keeps the stored one.
func (s *UserService) Save(ctx context.Context, in ports.SaveUserInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if strings.TrimSpace(in.Name) == "" || email == "" {
		return nil, fmt.Errorf("save user: %w: name and email are required", domain.ErrInvalidInput)
	}

	users := s.users.List(ctx)
	var existing *domain.User
	for _, u := range users {
		if in.ID != "" && u.ID == in.ID {
			existing = &u
			continue
		}
		if strings.EqualFold(strings.TrimSpace(u.Email), email) {
			return nil, domain.ErrUserExists
		}
	}

	user := domain.User{
		ID:           in.ID,
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		Password:     in.Password,
		Role:         domain.NormalizeRole(in.Role),
		Status:       domain.NormalizeUserStatus(defaultString(in.Status, domain.UserStatusActive)),
		Cargo:        in.Cargo,
		Bio:          in.Bio,
		Location:     in.Location,
		Birthday:     in.Birthday,
		ProfileImage: in.ProfileImage,
		AllowedViews: domain.SortedViews(in.AllowedViews),
	}
	if len(user.AllowedViews) == 0 {
		user.AllowedViews = domain.ViewSet{domain.ViewDashboard}
	}

	switch {
	case in.ID == "":
		if strings.TrimSpace(in.Password) == "" {
			return nil, fmt.Errorf("save user: %w: password is required", domain.ErrInvalidInput)
		}
		user.ID = generateID()
	case existing == nil:
		return nil, domain.ErrUserNotFound
	case user.Password == "":
		user.Password = existing.Password
	}

	if err := s.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	s.audit.Record(domain.AuditEvent{
		Action:    domain.AuditUserSaved,
		Sheet:     "users",
		Subject:   user.ID,
		Actor:     in.Actor,
		Detail:    domain.EncodePermissions(user.AllowedViews),
		Timestamp: time.Now().UTC(),
	})
	s.logger.Info().Str("user_id", user.ID).Str("actor", in.Actor).Msg("user saved")
	return &user, nil
}

// Delete removes a user. Users cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, id string, current domain.User) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("delete user: %w: missing id", domain.ErrInvalidInput)
	}
	if id == current.ID {
		return domain.ErrSelfDelete
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.audit.Record(domain.AuditEvent{
		Action:    domain.AuditUserDeleted,
		Sheet:     "users",
		Subject:   id,
		Actor:     current.Email,
		Timestamp: time.Now().UTC(),
	})
	s.logger.Info().Str("user_id", id).Str("actor", current.Email).Msg("user deleted")
	return nil
}

// UpdateProfile lets the logged-in user edit their own descriptive fields.
// Role, status and permissions are kept from the registry. The cached session
// is refreshed afterwards.
func (s *UserService) UpdateProfile(ctx context.Context, sessionID string, in ports.SaveUserInput) (*domain.User, error) {
	current, err := s.sessions.User(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var stored *domain.User
	for _, u := range s.users.List(ctx) {
		if u.ID == current.ID {
			stored = &u
			break
		}
	}
	if stored == nil {
		return nil, domain.ErrUserNotFound
	}

	updated := *stored
	updated.Name = defaultString(strings.TrimSpace(in.Name), stored.Name)
	updated.Cargo = in.Cargo
	updated.Bio = in.Bio
	updated.Location = in.Location
	updated.Birthday = in.Birthday
	updated.ProfileImage = defaultString(in.ProfileImage, stored.ProfileImage)
	if in.Password != "" {
		updated.Password = in.Password
	}

	if err := s.users.Save(ctx, updated); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if err := s.sessions.Save(ctx, sessionID, updated); err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("failed to refresh cached user")
	}
	s.audit.Record(domain.AuditEvent{
		Action:    domain.AuditUserSaved,
		Sheet:     "users",
		Subject:   updated.ID,
		Actor:     updated.Email,
		Detail:    "profile",
		Timestamp: time.Now().UTC(),
	})
	return &updated, nil
}

func defaultString(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
