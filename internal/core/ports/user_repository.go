package ports

import (
	"context"

	"github.com/pcp-logistica/tracking-portal/internal/core/domain"
)

// UserRepository persists operator accounts in the user registry sheet.
type UserRepository interface {
	// List returns every user, or an empty slice when the fetch fails.
	List(ctx context.Context) []domain.User
	// Load returns every user or the read error. Access checks use it so an
	// outage is not mistaken for an unknown user.
	Load(ctx context.Context) ([]domain.User, error)
	Save(ctx context.Context, u domain.User) error
	Delete(ctx context.Context, id string) error
}
