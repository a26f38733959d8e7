package ports

import (
	"context"

	"github.com/pcp-logistica/tracking-portal/internal/core/domain"
)

// SendMessageInput carries one outgoing chat message.
type SendMessageInput struct {
	Sheet string
	Text  string
	Img   string
	Image *UploadInput // uploaded first when set; its URL replaces Img
}

// CreateGroupInput carries the group creation form.
type CreateGroupInput struct {
	Name    string
	Members []string
}

// ChannelTotal is a channel with the number of messages it currently holds.
type ChannelTotal struct {
	Channel  domain.ChatGroup
	Messages int
}

// ChatService implements the chat view.
type ChatService interface {
	Channels(ctx context.Context, user domain.User) []domain.ChatGroup
	ChannelTotals(ctx context.Context, user domain.User) []ChannelTotal
	Messages(ctx context.Context, user domain.User, sheet string) ([]domain.ChatMessage, error)
	Send(ctx context.Context, user domain.User, in SendMessageInput) (*domain.ChatMessage, error)
	CreateGroup(ctx context.Context, user domain.User, in CreateGroupInput) (*domain.ChatGroup, error)
	DirectChannel(ctx context.Context, user domain.User, otherID string) (*domain.ChatGroup, error)
	Authorize(ctx context.Context, user domain.User, sheet string) error
}
