package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pcp-logistica/tracking-portal/internal/core/domain"
	"github.com/pcp-logistica/tracking-portal/internal/core/ports"
)

// ChatHandler serves channel listing, history and posting.
type ChatHandler struct {
	service ports.ChatService
}

func NewChatHandler(service ports.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

type sendMessageRequest struct {
	Text  string             `json:"text"`
	Img   string             `json:"img" validate:"omitempty,url"`
	Image *attachmentRequest `json:"image"`
}

type createGroupRequest struct {
	Name    string   `json:"name" validate:"required,max=60"`
	Members []string `json:"members"`
}

type channelListResponse struct {
	Channels []domain.ChatGroup `json:"channels"`
}

type messageListResponse struct {
	Sheet    string               `json:"sheet"`
	Messages []domain.ChatMessage `json:"messages"`
}

// Channels handles GET /v1/chat/channels.
//
// @Summary      Channels visible to the current user
// @Tags         chat
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  channelListResponse
// @Router       /v1/chat/channels [get]
func (h *ChatHandler) Channels(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, channelListResponse{Channels: h.service.Channels(c.Request().Context(), *user)})
}

// Messages handles GET /v1/chat/channels/:sheet/messages.
//
// @Summary      Messages of a channel
// @Tags         chat
// @Produce      json
// @Security     BearerAuth
// @Param        sheet  path      string  true  "Channel sheet name"
// @Success      200    {object}  messageListResponse
// @Failure      403    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Router       /v1/chat/channels/{sheet}/messages [get]
func (h *ChatHandler) Messages(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	sheet := pathParam(c, "sheet")
	msgs, err := h.service.Messages(c.Request().Context(), *user, sheet)
	if err != nil {
		return err
	}
	if msgs == nil {
		msgs = []domain.ChatMessage{}
	}
	return c.JSON(http.StatusOK, messageListResponse{Sheet: sheet, Messages: msgs})
}

// Send handles POST /v1/chat/channels/:sheet/messages.
//
// @Summary      Post a message
// @Tags         chat
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        sheet  path      string              true  "Channel sheet name"
// @Param        body   body      sendMessageRequest  true  "Text and/or image"
// @Success      201    {object}  domain.ChatMessage
// @Failure      400    {object}  map[string]string
// @Failure      403    {object}  map[string]string
// @Router       /v1/chat/channels/{sheet}/messages [post]
func (h *ChatHandler) Send(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req sendMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	in := ports.SendMessageInput{Sheet: pathParam(c, "sheet"), Text: req.Text, Img: req.Img}
	if req.Image != nil {
		in.Image = &ports.UploadInput{FileName: req.Image.FileName, MimeType: req.Image.MimeType, Content: req.Image.Content}
	}

	msg, err := h.service.Send(c.Request().Context(), *user, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, msg)
}

// CreateGroup handles POST /v1/chat/groups.
//
// @Summary      Create a chat group
// @Tags         chat
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createGroupRequest  true  "Group name and member IDs"
// @Success      201   {object}  domain.ChatGroup
// @Failure      400   {object}  map[string]string
// @Router       /v1/chat/groups [post]
func (h *ChatHandler) CreateGroup(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req createGroupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	group, err := h.service.CreateGroup(c.Request().Context(), *user, ports.CreateGroupInput{Name: req.Name, Members: req.Members})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, group)
}

// DirectChannel handles GET /v1/chat/dm/:userID.
//
// @Summary      Direct-message channel with another user
// @Tags         chat
// @Produce      json
// @Security     BearerAuth
// @Param        userID  path      string  true  "Other user ID"
// @Success      200     {object}  domain.ChatGroup
// @Failure      404     {object}  map[string]string
// @Router       /v1/chat/dm/{userID} [get]
func (h *ChatHandler) DirectChannel(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	ch, err := h.service.DirectChannel(c.Request().Context(), *user, c.Param("userID"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ch)
}
