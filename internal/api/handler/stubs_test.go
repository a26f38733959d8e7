package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pcp-logistica/tracking-portal/internal/api/middleware"
	"github.com/pcp-logistica/tracking-portal/internal/core/domain"
	"github.com/pcp-logistica/tracking-portal/internal/core/ports"
)

// newJSONContext builds an echo context with the validator installed and,
// when user is set, the values the Auth middleware would inject.
func newJSONContext(method, target, body string, user *domain.User) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if user != nil {
		c.Set(middleware.UserKey, user)
		c.Set(middleware.SessionIDKey, "sess-1")
	}
	return c, rec
}

type stubAuthService struct {
	loginFn    func(ctx context.Context, email, password string) (*ports.LoginResult, error)
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loggedOut  string
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Logout(_ context.Context, sessionID string) error {
	s.loggedOut = sessionID
	return nil
}

type stubRecordService struct {
	records  []domain.ShipmentRecord
	lastList ports.ListRecordsInput
	lastSave ports.SaveRecordInput
	deleted  string
	saveErr  error
}

func (s *stubRecordService) List(_ context.Context, in ports.ListRecordsInput) []domain.ShipmentRecord {
	s.lastList = in
	return s.records
}

func (s *stubRecordService) History(_ context.Context, _ domain.RecordKind, _ string) []domain.ShipmentRecord {
	var out []domain.ShipmentRecord
	for _, r := range s.records {
		if r.Status.IsFinished() {
			out = append(out, r)
		}
	}
	return out
}

func (s *stubRecordService) Get(_ context.Context, _ domain.RecordKind, id string) (*domain.ShipmentRecord, error) {
	for _, r := range s.records {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

func (s *stubRecordService) Create(_ context.Context, in ports.SaveRecordInput) (*domain.ShipmentRecord, error) {
	s.lastSave = in
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	return &domain.ShipmentRecord{ID: "new1", Kind: in.Kind, Supplier: in.Supplier, Status: domain.StatusEmTransito}, nil
}

func (s *stubRecordService) Update(_ context.Context, in ports.SaveRecordInput) (*domain.ShipmentRecord, error) {
	s.lastSave = in
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	return &domain.ShipmentRecord{ID: in.ID, Kind: in.Kind, Supplier: in.Supplier, Status: in.Status}, nil
}

func (s *stubRecordService) Delete(_ context.Context, _ domain.RecordKind, id, _ string) error {
	s.deleted = id
	return nil
}

func (s *stubRecordService) Upload(_ context.Context, in ports.UploadInput) (string, error) {
	return "https://files.test/" + in.FileName, nil
}

type stubSessionService struct {
	theme ports.Theme
	mode  ports.DashboardViewMode
}

func (s *stubSessionService) Save(context.Context, string, domain.User) error { return nil }
func (s *stubSessionService) User(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrNoSession
}
func (s *stubSessionService) Restore(context.Context, string) (*ports.SessionState, error) {
	return &ports.SessionState{User: &domain.User{ID: "u1"}, Theme: ports.ThemeDark, ViewMode: ports.ViewModeTable}, nil
}
func (s *stubSessionService) Clear(context.Context, string) error { return nil }
func (s *stubSessionService) SetTheme(_ context.Context, _ string, t ports.Theme) error {
	s.theme = t
	return nil
}
func (s *stubSessionService) ToggleTheme(context.Context, string) (ports.Theme, error) {
	s.theme = ports.ThemeLight
	return s.theme, nil
}
func (s *stubSessionService) SetViewMode(_ context.Context, _ string, m ports.DashboardViewMode) error {
	s.mode = m
	return nil
}

type stubUserService struct {
	saved   ports.SaveUserInput
	profile ports.SaveUserInput
}

func (s *stubUserService) List(context.Context, string) []domain.User {
	return []domain.User{{ID: "u1", Name: "ANA"}}
}

func (s *stubUserService) Save(_ context.Context, in ports.SaveUserInput) (*domain.User, error) {
	s.saved = in
	return &domain.User{ID: "u9", Name: in.Name, Email: in.Email, AllowedViews: in.AllowedViews}, nil
}

func (s *stubUserService) Delete(_ context.Context, id string, current domain.User) error {
	if id == current.ID {
		return domain.ErrSelfDelete
	}
	return nil
}

func (s *stubUserService) UpdateProfile(_ context.Context, _ string, in ports.SaveUserInput) (*domain.User, error) {
	s.profile = in
	return &domain.User{ID: "u1", Name: in.Name}, nil
}

type stubChatService struct {
	sent    ports.SendMessageInput
	members map[string]bool
	authErr map[string]error
}

func (s *stubChatService) Channels(context.Context, domain.User) []domain.ChatGroup {
	return domain.FixedChannels()
}

func (s *stubChatService) ChannelTotals(_ context.Context, _ domain.User) []ports.ChannelTotal {
	var out []ports.ChannelTotal
	for _, ch := range domain.FixedChannels() {
		out = append(out, ports.ChannelTotal{Channel: ch, Messages: 1})
	}
	return out
}

func (s *stubChatService) Messages(ctx context.Context, user domain.User, sheet string) ([]domain.ChatMessage, error) {
	if err := s.Authorize(ctx, user, sheet); err != nil {
		return nil, err
	}
	return []domain.ChatMessage{{ID: "m1", User: "ANA", Text: "oi", Type: domain.MessageText}}, nil
}

func (s *stubChatService) Send(_ context.Context, user domain.User, in ports.SendMessageInput) (*domain.ChatMessage, error) {
	if in.Text == "" && in.Img == "" && in.Image == nil {
		return nil, domain.ErrEmptyMessage
	}
	s.sent = in
	return &domain.ChatMessage{User: user.Name, Text: in.Text, Type: domain.MessageText}, nil
}

func (s *stubChatService) CreateGroup(_ context.Context, _ domain.User, in ports.CreateGroupInput) (*domain.ChatGroup, error) {
	return &domain.ChatGroup{Name: strings.ToUpper(in.Name), SheetName: strings.ToUpper(in.Name), Type: domain.ChannelGroup}, nil
}

func (s *stubChatService) DirectChannel(_ context.Context, user domain.User, otherID string) (*domain.ChatGroup, error) {
	if otherID != "u2" {
		return nil, domain.ErrUserNotFound
	}
	return &domain.ChatGroup{SheetName: domain.BuildDM(user.Name, "BRUNO"), Type: domain.ChannelDM}, nil
}

func (s *stubChatService) Authorize(_ context.Context, _ domain.User, sheet string) error {
	if err := s.authErr[sheet]; err != nil {
		return err
	}
	if domain.IsFixedChannel(sheet) || s.members[sheet] {
		return nil
	}
	return domain.ErrNotChannelMember
}
