package sheets

import (
	"context"
	"fmt"

	"github.com/pcp-logistica/tracking-portal/internal/core/domain"
	"github.com/pcp-logistica/tracking-portal/internal/core/ports"
)

// RecordStore persists shipment records in the AWB and PRÉ sheets.
type RecordStore struct {
	client *Client
}

func NewRecordStore(client *Client) *RecordStore {
	return &RecordStore{client: client}
}

func (s *RecordStore) List(ctx context.Context, kind domain.RecordKind) []domain.ShipmentRecord {
	rows := s.client.ListRows(ctx, SheetFor(kind))
	out := make([]domain.ShipmentRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, DecodeRecord(row, kind))
	}
	return out
}

func (s *RecordStore) Save(ctx context.Context, rec domain.ShipmentRecord) error {
	if err := s.client.Save(ctx, SheetFor(rec.Kind), EncodeRecord(rec)); err != nil {
		return fmt.Errorf("save record %s: %w", rec.ID, err)
	}
	return nil
}

func (s *RecordStore) Delete(ctx context.Context, kind domain.RecordKind, id string) error {
	if err := s.client.Delete(ctx, SheetFor(kind), id); err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	return nil
}

// Upload implements ports.FileUploader.
func (s *RecordStore) Upload(ctx context.Context, in ports.UploadInput) (string, error) {
	url, err := s.client.Upload(ctx, in.FileName, in.MimeType, in.Content)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", in.FileName, err)
	}
	return url, nil
}

// UserStore persists operator accounts in the user registry sheet.
type UserStore struct {
	client *Client
}

func NewUserStore(client *Client) *UserStore {
	return &UserStore{client: client}
}

func (s *UserStore) List(ctx context.Context) []domain.User {
	return decodeUsers(s.client.ListRows(ctx, SheetUsers))
}

func (s *UserStore) Load(ctx context.Context) ([]domain.User, error) {
	rows, err := s.client.Rows(ctx, SheetUsers)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	return decodeUsers(rows), nil
}

func decodeUsers(rows []Row) []domain.User {
	out := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, DecodeUser(row))
	}
	return out
}

func (s *UserStore) Save(ctx context.Context, u domain.User) error {
	if err := s.client.Save(ctx, SheetUsers, EncodeUser(u)); err != nil {
		return fmt.Errorf("save user %s: %w", u.ID, err)
	}
	return nil
}

func (s *UserStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, SheetUsers, id); err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	return nil
}

// ChatStore reads and appends channel messages and manages the group registry.
type ChatStore struct {
	client *Client
}

func NewChatStore(client *Client) *ChatStore {
	return &ChatStore{client: client}
}

func (s *ChatStore) Messages(ctx context.Context, sheet string) []domain.ChatMessage {
	rows := s.client.ChatRows(ctx, sheet)
	out := make([]domain.ChatMessage, 0, len(rows))
	for _, row := range rows {
		out = append(out, DecodeMessage(row))
	}
	return out
}

func (s *ChatStore) Append(ctx context.Context, sheet string, msg domain.ChatMessage) error {
	if err := s.client.ChatSave(ctx, sheet, EncodeMessage(msg)); err != nil {
		return fmt.Errorf("append message to %s: %w", sheet, err)
	}
	return nil
}

func (s *ChatStore) Groups(ctx context.Context) []domain.ChatGroup {
	return decodeGroups(s.client.ListRows(ctx, SheetGroups))
}

func (s *ChatStore) LoadGroups(ctx context.Context) ([]domain.ChatGroup, error) {
	rows, err := s.client.Rows(ctx, SheetGroups)
	if err != nil {
		return nil, fmt.Errorf("load groups: %w", err)
	}
	return decodeGroups(rows), nil
}

func decodeGroups(rows []Row) []domain.ChatGroup {
	out := make([]domain.ChatGroup, 0, len(rows))
	for _, row := range rows {
		g := DecodeGroup(row)
		if g.Name == "" {
			continue
		}
		out = append(out, g)
	}
	return out
}

func (s *ChatStore) CreateGroup(ctx context.Context, name string, members []string) error {
	if err := s.client.GroupCreate(ctx, EncodeGroup(name, members)); err != nil {
		return fmt.Errorf("create group %s: %w", name, err)
	}
	return nil
}

var (
	_ ports.RecordRepository = (*RecordStore)(nil)
	_ ports.FileUploader     = (*RecordStore)(nil)
	_ ports.UserRepository   = (*UserStore)(nil)
	_ ports.ChatRepository   = (*ChatStore)(nil)
)
