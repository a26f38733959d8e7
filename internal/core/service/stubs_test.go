package service

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pcp-logistica/tracking-portal/internal/core/domain"
	"github.com/pcp-logistica/tracking-portal/internal/core/ports"
)

var discardLogger = zerolog.Nop()

var errStore = errors.New("remote store unavailable")

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubRecordRepo struct {
	mu      sync.Mutex
	records map[domain.RecordKind][]domain.ShipmentRecord
	saveErr error
	saved   []domain.ShipmentRecord
	deleted []string
}

func newStubRecordRepo() *stubRecordRepo {
	return &stubRecordRepo{records: make(map[domain.RecordKind][]domain.ShipmentRecord)}
}

func (r *stubRecordRepo) List(_ context.Context, kind domain.RecordKind) []domain.ShipmentRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.ShipmentRecord(nil), r.records[kind]...)
}

func (r *stubRecordRepo) Save(_ context.Context, rec domain.ShipmentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = append(r.saved, rec)
	for i, existing := range r.records[rec.Kind] {
		if existing.ID == rec.ID {
			r.records[rec.Kind][i] = rec
			return nil
		}
	}
	r.records[rec.Kind] = append(r.records[rec.Kind], rec)
	return nil
}

func (r *stubRecordRepo) Delete(_ context.Context, kind domain.RecordKind, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, id)
	return nil
}

type stubUploader struct {
	err   error
	files []string
}

func (u *stubUploader) Upload(_ context.Context, in ports.UploadInput) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	u.files = append(u.files, in.FileName)
	return "https://files.example.com/" + in.FileName, nil
}

type stubUserRepo struct {
	mu      sync.Mutex
	users   []domain.User
	loadErr error
	saveErr error
	saved   []domain.User
	deleted []string
	reads   int
}

func (r *stubUserRepo) List(_ context.Context) []domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	if r.loadErr != nil {
		return []domain.User{}
	}
	return append([]domain.User(nil), r.users...)
}

func (r *stubUserRepo) Load(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	return append([]domain.User(nil), r.users...), nil
}

func (r *stubUserRepo) Save(_ context.Context, u domain.User) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = append(r.saved, u)
	for i, existing := range r.users {
		if existing.ID == u.ID {
			r.users[i] = u
			return nil
		}
	}
	r.users = append(r.users, u)
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	r.deleted = append(r.deleted, id)
	return nil
}

type stubChatRepo struct {
	mu         sync.Mutex
	messages   map[string][]domain.ChatMessage
	groups     []domain.ChatGroup
	groupsErr  error
	groupReads int
	chatReads  int
}

func newStubChatRepo() *stubChatRepo {
	return &stubChatRepo{messages: make(map[string][]domain.ChatMessage)}
}

func (r *stubChatRepo) Messages(_ context.Context, sheet string) []domain.ChatMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chatReads++
	return append([]domain.ChatMessage{}, r.messages[sheet]...)
}

func (r *stubChatRepo) Append(_ context.Context, sheet string, msg domain.ChatMessage) error {
	r.messages[sheet] = append(r.messages[sheet], msg)
	return nil
}

func (r *stubChatRepo) Groups(_ context.Context) []domain.ChatGroup {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groupReads++
	if r.groupsErr != nil {
		return []domain.ChatGroup{}
	}
	return append([]domain.ChatGroup(nil), r.groups...)
}

func (r *stubChatRepo) LoadGroups(_ context.Context) ([]domain.ChatGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groupReads++
	if r.groupsErr != nil {
		return nil, r.groupsErr
	}
	return append([]domain.ChatGroup(nil), r.groups...), nil
}

func (r *stubChatRepo) CreateGroup(_ context.Context, name string, members []string) error {
	r.groups = append(r.groups, domain.ChatGroup{Name: name, SheetName: name, Type: domain.ChannelGroup, Members: members})
	return nil
}

// memStore is an in-memory SessionStore.
type memStore struct {
	data   map[string]string
	getErr error
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]string)}
}

func (s *memStore) Get(_ context.Context, key string) (string, bool, error) {
	if s.getErr != nil {
		return "", false, s.getErr
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *memStore) Set(_ context.Context, key, value string) error {
	s.data[key] = value
	return nil
}

func (s *memStore) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

type recordingAuditor struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (a *recordingAuditor) Record(e domain.AuditEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *recordingAuditor) actions() []domain.AuditAction {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.AuditAction, 0, len(a.events))
	for _, e := range a.events {
		out = append(out, e.Action)
	}
	return out
}
