package handler

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/pcp-logistica/tracking-portal/internal/api/metrics"
	"github.com/pcp-logistica/tracking-portal/internal/core/domain"
	"github.com/pcp-logistica/tracking-portal/internal/core/ports"
	"github.com/pcp-logistica/tracking-portal/internal/infrastructure/poller"
)

const (
	streamReadLimit    = 64 << 10
	streamWriteTimeout = 10 * time.Second
)

// Commands a stream client may send.
const (
	streamOpen     = "open"
	streamRefresh  = "refresh"
	streamChannels = "channels"
)

// Events pushed to a stream client.
const (
	eventMessages = "messages"
	eventChannels = "channels"
	eventError    = "error"
)

type streamCommand struct {
	Action string `json:"action"`
	Sheet  string `json:"sheet"`
}

type streamEvent struct {
	Type     string               `json:"type"`
	Sheet    string               `json:"sheet,omitempty"`
	Messages []domain.ChatMessage `json:"messages,omitempty"`
	Channels []domain.ChatGroup   `json:"channels,omitempty"`
	Error    string               `json:"error,omitempty"`
}

// ChatStreamHandler relays the polled active channel to a websocket client. Each
// connection owns one poll loop, so a client never has two channels polling.
type ChatStreamHandler struct {
	service  ports.ChatService
	interval time.Duration
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewChatStreamHandler builds the handler. An origin list containing "*"
// accepts every origin.
func NewChatStreamHandler(service ports.ChatService, interval time.Duration, origins []string, log zerolog.Logger) *ChatStreamHandler {
	return &ChatStreamHandler{
		service:  service,
		interval: interval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(origins),
		},
		log: log,
	}
}

func originChecker(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}

// streamConn serialises writes; gorilla connections allow one writer at a time.
type streamConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *streamConn) send(ev streamEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
	return s.conn.WriteJSON(ev)
}

// Stream handles GET /v1/chat/stream. It relays the results of a server side
// poll of the active channel; the store itself is never streamed.
//
// @Summary      Polled chat relay (websocket)
// @Description  The server polls the active channel on a fixed interval and relays {"type":"messages"} after every poll of the active channel. Send {"action":"open","sheet":"..."} to switch channel, {"action":"refresh"} to poll now and {"action":"channels"} for the channel list with unread counts. The token may be passed as ?token=.
// @Tags         chat
// @Security     BearerAuth
// @Param        sheet  query  string  false  "Initial channel (default CHAT)"
// @Success      101
// @Router       /v1/chat/stream [get]
func (h *ChatStreamHandler) Stream(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.Warn().Err(err).Str("user_id", user.ID).Msg("websocket upgrade failed")
		return nil
	}
	defer ws.Close()
	ws.SetReadLimit(streamReadLimit)
	// Clear the server read deadline inherited from the upgraded request.
	_ = ws.SetReadDeadline(time.Time{})

	metrics.ChatActiveStreams.Inc()
	defer metrics.ChatActiveStreams.Dec()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	out := &streamConn{conn: ws}
	fetch := func(ctx context.Context, sheet string) ([]domain.ChatMessage, error) {
		return h.service.Messages(ctx, *user, sheet)
	}
	loop := poller.NewChatLoop(fetch, h.interval, func(u poller.Update) {
		if err := out.send(streamEvent{Type: eventMessages, Sheet: u.Sheet, Messages: u.Messages}); err != nil {
			cancel()
		}
	}, h.log.With().Str("user_id", user.ID).Logger())
	defer loop.Stop()

	initial := c.QueryParam("sheet")
	if initial == "" {
		initial = domain.SheetDefaultChat
	}
	h.open(ctx, loop, out, *user, initial)

	for {
		var cmd streamCommand
		if err := ws.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug().Err(err).Str("user_id", user.ID).Msg("chat stream closed")
			}
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}

		switch cmd.Action {
		case streamOpen:
			h.open(ctx, loop, out, *user, cmd.Sheet)
		case streamRefresh:
			loop.Refresh()
		case streamChannels:
			_ = out.send(streamEvent{Type: eventChannels, Channels: h.channels(ctx, loop, *user)})
		default:
			_ = out.send(streamEvent{Type: eventError, Error: "unknown action"})
		}
	}
}

// open switches the loop to sheet after checking access. The channel being
// left is marked read up to its last fetched length.
func (h *ChatStreamHandler) open(ctx context.Context, loop *poller.ChatLoop, out *streamConn, user domain.User, sheet string) {
	if err := h.service.Authorize(ctx, user, sheet); err != nil {
		msg := "channel unavailable"
		switch {
		case errors.Is(err, domain.ErrNotChannelMember):
			msg = "not a member of this channel"
		case errors.Is(err, domain.ErrChannelNotFound):
			msg = "channel not found"
		default:
			h.log.Warn().Err(err).Str("sheet", sheet).Str("user_id", user.ID).Msg("channel access check failed")
		}
		_ = out.send(streamEvent{Type: eventError, Sheet: sheet, Error: msg})
		return
	}

	prev, msgs := loop.Messages()
	if prev != "" {
		loop.MarkAsRead(prev, len(msgs))
	}
	loop.Activate(ctx, sheet)
}

// channels lists the user's channels with unread counts relative to what this
// stream has already shown.
func (h *ChatStreamHandler) channels(ctx context.Context, loop *poller.ChatLoop, user domain.User) []domain.ChatGroup {
	totals := h.service.ChannelTotals(ctx, user)
	list := make([]domain.ChatGroup, 0, len(totals))
	for _, t := range totals {
		ch := t.Channel
		ch.UnreadCount = loop.Unread(ch.SheetName, t.Messages)
		list = append(list, ch)
	}
	return list
}
