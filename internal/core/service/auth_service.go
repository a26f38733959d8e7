package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/pcp-logistica/tracking-portal/internal/api/metrics"
	"github.com/pcp-logistica/tracking-portal/internal/core/domain"
	"github.com/pcp-logistica/tracking-portal/internal/core/ports"
)

// Registration defaults for self-service sign-up.
const (
	registerBio      = "Novo operador cadastrado via portal."
	registerLocation = "N/A"
)

// AuthConfig carries token settings and the bootstrap credential.
type AuthConfig struct {
	JWTSecret         string
	TokenTTL          time.Duration
	BootstrapEmail    string
	BootstrapPassword string
}

// AuthService implements login, registration and logout.
//
// Credentials are matched in plain text against the user registry, which is
// how the registry stores them. The bootstrap admin never touches the
// registry; its password is only held as a bcrypt hash.
type AuthService struct {
	users          ports.UserRepository
	sessions       ports.SessionService
	audit          ports.Auditor
	jwtSecret      string
	tokenTTL       time.Duration
	bootstrapEmail string
	bootstrapHash  []byte
	logger         zerolog.Logger
}

func NewAuthService(users ports.UserRepository, sessions ports.SessionService, audit ports.Auditor, cfg AuthConfig, logger zerolog.Logger) (*AuthService, error) {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	s := &AuthService{
		users:          users,
		sessions:       sessions,
		audit:          auditorOrNoop(audit),
		jwtSecret:      cfg.JWTSecret,
		tokenTTL:       cfg.TokenTTL,
		bootstrapEmail: strings.ToLower(strings.TrimSpace(cfg.BootstrapEmail)),
		logger:         logger,
	}
	if s.bootstrapEmail != "" && cfg.BootstrapPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.BootstrapPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash bootstrap password: %w", err)
		}
		s.bootstrapHash = hash
	}
	return s, nil
}

// Login matches the credentials against the registry. A matching row that is
// not "ativo" is rejected even with the right password. Only when no row
// matches is the bootstrap credential considered.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil, domain.ErrInvalidCredentials
	}

	var user *domain.User
	result := "success"
	for _, u := range s.users.List(ctx) {
		if !u.MatchesCredentials(email, password) {
			continue
		}
		if !u.IsActive() {
			s.deny(email, "inactive")
			return nil, domain.ErrInactiveUser
		}
		user = &u
		break
	}
	if user == nil {
		if !s.isBootstrap(email, password) {
			s.deny(email, "invalid")
			return nil, domain.ErrInvalidCredentials
		}
		user = s.bootstrapUser()
		result = "bootstrap"
	}

	sessionID := uuid.NewString()
	if err := s.sessions.Save(ctx, sessionID, *user); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	token, err := s.generateToken(sessionID, user)
	if err != nil {
		return nil, fmt.Errorf("login: sign token: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues(result).Inc()
	s.audit.Record(domain.AuditEvent{
		Action:    domain.AuditLoginSuccess,
		Sheet:     "users",
		Subject:   user.ID,
		Actor:     user.Email,
		Timestamp: time.Now().UTC(),
	})
	s.logger.Info().Str("user_id", user.ID).Str("session_id", sessionID).Msg("user logged in")

	return &ports.LoginResult{Token: token, SessionID: sessionID, User: user}, nil
}

// Register appends a new active operator with the default permission set.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if strings.TrimSpace(in.Name) == "" || email == "" || strings.TrimSpace(in.Password) == "" {
		return nil, fmt.Errorf("register: %w", domain.ErrInvalidInput)
	}
	for _, u := range s.users.List(ctx) {
		if strings.EqualFold(strings.TrimSpace(u.Email), email) {
			return nil, domain.ErrUserExists
		}
	}

	user := domain.User{
		ID:           generateID(),
		Name:         strings.ToUpper(strings.TrimSpace(in.Name)),
		Email:        email,
		Password:     in.Password,
		Role:         domain.RoleUser,
		Status:       domain.UserStatusActive,
		Cargo:        strings.ToUpper(strings.TrimSpace(in.Cargo)),
		Bio:          registerBio,
		Location:     registerLocation,
		AllowedViews: domain.ViewSet{domain.ViewDashboard, domain.ViewChat},
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.audit.Record(domain.AuditEvent{
		Action:    domain.AuditUserSaved,
		Sheet:     "users",
		Subject:   user.ID,
		Actor:     user.Email,
		Detail:    "self-registration",
		Timestamp: time.Now().UTC(),
	})
	s.logger.Info().Str("user_id", user.ID).Msg("user registered")
	return &user, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.logger.Info().Str("session_id", sessionID).Msg("user logged out")
	return nil
}

func (s *AuthService) deny(email, reason string) {
	metrics.LoginsTotal.WithLabelValues(reason).Inc()
	s.audit.Record(domain.AuditEvent{
		Action:    domain.AuditLoginDenied,
		Sheet:     "users",
		Subject:   strings.ToLower(strings.TrimSpace(email)),
		Detail:    reason,
		Timestamp: time.Now().UTC(),
	})
	s.logger.Info().Str("reason", reason).Msg("login denied")
}

func (s *AuthService) isBootstrap(email, password string) bool {
	if s.bootstrapHash == nil || strings.ToLower(strings.TrimSpace(email)) != s.bootstrapEmail {
		return false
	}
	return bcrypt.CompareHashAndPassword(s.bootstrapHash, []byte(password)) == nil
}

func (s *AuthService) bootstrapUser() *domain.User {
	return &domain.User{
		ID:     "1",
		Name:   "Admin Master",
		Email:  s.bootstrapEmail,
		Role:   domain.RoleAdmin,
		Status: domain.UserStatusActive,
		Cargo:  "Administrador Master",
		AllowedViews: domain.ViewSet{
			domain.ViewDashboard, domain.ViewReports, domain.ViewHistory, domain.ViewSettings,
			domain.ViewFollowUp, domain.ViewUsers, domain.ViewFollowUpPre,
		},
	}
}

func (s *AuthService) generateToken(sessionID string, user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"sid":     sessionID,
		"user_id": user.ID,
		"role":    user.Role,
		"exp":     time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
