package ports

import (
	"context"

	"github.com/pcp-logistica/tracking-portal/internal/core/domain"
)

// RegisterInput carries the self-service sign-up form.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Cargo    string
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string
	SessionID string
	User      *domain.User
}

// AuthService implements login, registration and logout.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Logout(ctx context.Context, sessionID string) error
}
