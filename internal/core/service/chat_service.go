package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pcp-logistica/tracking-portal/internal/api/metrics"
	"github.com/pcp-logistica/tracking-portal/internal/core/domain"
	"github.com/pcp-logistica/tracking-portal/internal/core/ports"
)

const (
	// timestampLayout matches the millisecond ISO form the channel sheets hold.
	timestampLayout  = "2006-01-02T15:04:05.000Z07:00"
	totalsFetchLimit = 4
)

type ChatService struct {
	chats    ports.ChatRepository
	users    ports.UserRepository
	uploader ports.FileUploader
	audit    ports.Auditor
	logger   zerolog.Logger
	now      func() time.Time
}

func NewChatService(chats ports.ChatRepository, users ports.UserRepository, uploader ports.FileUploader, audit ports.Auditor, logger zerolog.Logger) *ChatService {
	return &ChatService{
		chats:    chats,
		users:    users,
		uploader: uploader,
		audit:    auditorOrNoop(audit),
		logger:   logger,
		now:      time.Now,
	}
}

// Channels lists the fixed channels, the groups the user belongs to and one
// direct-message channel per other registered user.
func (s *ChatService) Channels(ctx context.Context, user domain.User) []domain.ChatGroup {
	out := domain.FixedChannels()
	seen := make(map[string]struct{}, len(out))
	for _, c := range out {
		seen[c.SheetName] = struct{}{}
	}

	for _, g := range s.chats.Groups(ctx) {
		if _, dup := seen[g.SheetName]; dup || !g.HasMember(user.ID) {
			continue
		}
		seen[g.SheetName] = struct{}{}
		out = append(out, g)
	}

	for _, u := range s.users.List(ctx) {
		if u.ID == user.ID {
			continue
		}
		out = append(out, directChannel(user, u))
	}
	return out
}

// ChannelTotals lists the user's channels with their message counts. The user
// and group registries are read once for the whole list.
func (s *ChatService) ChannelTotals(ctx context.Context, user domain.User) []ports.ChannelTotal {
	channels := s.Channels(ctx, user)
	out := make([]ports.ChannelTotal, len(channels))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(totalsFetchLimit)
	for i, ch := range channels {
		i, ch := i, ch
		out[i].Channel = ch
		g.Go(func() error {
			out[i].Messages = len(s.chats.Messages(gctx, ch.SheetName))
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Authorize reports whether user may read and post in sheet. Fixed channels
// are open; groups require membership; a DM sheet must be derivable from the
// user and some registered user. A registry read failure is returned as is.
func (s *ChatService) Authorize(ctx context.Context, user domain.User, sheet string) error {
	if domain.IsFixedChannel(sheet) {
		return nil
	}

	if domain.IsDMChannel(sheet) {
		users, err := s.users.Load(ctx)
		if err != nil {
			return fmt.Errorf("authorize %s: %w", sheet, err)
		}
		for _, u := range users {
			if u.ID != user.ID && domain.BuildDM(user.Name, u.Name) == sheet {
				return nil
			}
		}
		return domain.ErrNotChannelMember
	}

	groups, err := s.chats.LoadGroups(ctx)
	if err != nil {
		return fmt.Errorf("authorize %s: %w", sheet, err)
	}
	for _, g := range groups {
		if g.SheetName != sheet {
			continue
		}
		if !g.HasMember(user.ID) {
			return domain.ErrNotChannelMember
		}
		return nil
	}
	return domain.ErrChannelNotFound
}

func (s *ChatService) Messages(ctx context.Context, user domain.User, sheet string) ([]domain.ChatMessage, error) {
	if err := s.Authorize(ctx, user, sheet); err != nil {
		return nil, err
	}
	return s.chats.Messages(ctx, sheet), nil
}

// Send appends a message. An attached image is uploaded first and its link
// replaces Img. Messages need text or an image.
func (s *ChatService) Send(ctx context.Context, user domain.User, in ports.SendMessageInput) (*domain.ChatMessage, error) {
	if err := s.Authorize(ctx, user, in.Sheet); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(in.Text)
	img := strings.TrimSpace(in.Img)
	if in.Image != nil {
		url, err := s.uploader.Upload(ctx, *in.Image)
		if err != nil {
			return nil, fmt.Errorf("send message: %w", err)
		}
		img = url
	}
	if text == "" && img == "" {
		return nil, domain.ErrEmptyMessage
	}

	msg := domain.ChatMessage{
		User:      defaultString(user.Name, domain.DefaultAuthor),
		Text:      text,
		Img:       img,
		Type:      domain.MessageTypeFor(img),
		Timestamp: s.now().UTC().Format(timestampLayout),
	}
	if err := s.chats.Append(ctx, in.Sheet, msg); err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}

	metrics.ChatMessagesSentTotal.WithLabelValues(string(msg.Type)).Inc()
	s.logger.Debug().Str("sheet", in.Sheet).Str("user_id", user.ID).Msg("chat message sent")
	return &msg, nil
}

// CreateGroup registers a group under the upper-cased name. The creator is
// always a member.
func (s *ChatService) CreateGroup(ctx context.Context, user domain.User, in ports.CreateGroupInput) (*domain.ChatGroup, error) {
	name := strings.ToUpper(strings.TrimSpace(in.Name))
	if name == "" {
		return nil, fmt.Errorf("create group: %w: missing name", domain.ErrInvalidInput)
	}
	if domain.IsFixedChannel(name) || domain.IsDMChannel(name) {
		return nil, fmt.Errorf("create group: %w: reserved name %q", domain.ErrInvalidInput, name)
	}
	for _, g := range s.chats.Groups(ctx) {
		if g.SheetName == name {
			return nil, fmt.Errorf("create group: %w: %q already exists", domain.ErrInvalidInput, name)
		}
	}

	members := make([]string, 0, len(in.Members)+1)
	seen := make(map[string]struct{})
	candidates := append(append([]string(nil), in.Members...), user.ID)
	for _, m := range candidates {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		members = append(members, m)
	}

	if err := s.chats.CreateGroup(ctx, name, members); err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}

	s.audit.Record(domain.AuditEvent{
		Action:    domain.AuditGroupCreated,
		Sheet:     name,
		Subject:   name,
		Actor:     user.Email,
		Detail:    strings.Join(members, ","),
		Timestamp: s.now().UTC(),
	})
	s.logger.Info().Str("group", name).Int("members", len(members)).Msg("chat group created")

	return &domain.ChatGroup{Name: name, SheetName: name, Type: domain.ChannelGroup, Members: members}, nil
}

// DirectChannel returns the DM channel between user and the user with otherID.
func (s *ChatService) DirectChannel(ctx context.Context, user domain.User, otherID string) (*domain.ChatGroup, error) {
	if otherID == user.ID {
		return nil, fmt.Errorf("direct channel: %w: cannot message yourself", domain.ErrInvalidInput)
	}
	for _, u := range s.users.List(ctx) {
		if u.ID == otherID {
			c := directChannel(user, u)
			return &c, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func directChannel(self, other domain.User) domain.ChatGroup {
	return domain.ChatGroup{
		Name:      other.Name,
		SheetName: domain.BuildDM(self.Name, other.Name),
		Type:      domain.ChannelDM,
		Members:   []string{self.ID, other.ID},
	}
}
