package ports

import (
	"context"

	"github.com/pcp-logistica/tracking-portal/internal/core/domain"
)

// SaveUserInput carries the admin user form and the profile form.
type SaveUserInput struct {
	ID           string // empty on create
	Name         string
	Email        string
	Password     string
	Role         string
	Status       string
	Cargo        string
	Bio          string
	Location     string
	Birthday     string
	ProfileImage string
	AllowedViews domain.ViewSet
	Actor        string
}

// UserService implements user management.
type UserService interface {
	List(ctx context.Context, search string) []domain.User
	Save(ctx context.Context, in SaveUserInput) (*domain.User, error)
	Delete(ctx context.Context, id string, current domain.User) error
	UpdateProfile(ctx context.Context, sessionID string, in SaveUserInput) (*domain.User, error)
}
