package ports

import (
	"context"

	"github.com/pcp-logistica/tracking-portal/internal/core/domain"
)

// ChatRepository reads and appends channel messages and manages the group
// registry.
type ChatRepository interface {
	// Messages returns the channel in store order, or an empty slice on failure.
	Messages(ctx context.Context, sheet string) []domain.ChatMessage
	Append(ctx context.Context, sheet string, msg domain.ChatMessage) error
	// Groups returns the dynamic groups, or an empty slice on failure.
	Groups(ctx context.Context) []domain.ChatGroup
	// LoadGroups returns the dynamic groups or the read error.
	LoadGroups(ctx context.Context) ([]domain.ChatGroup, error)
	CreateGroup(ctx context.Context, name string, members []string) error
}
