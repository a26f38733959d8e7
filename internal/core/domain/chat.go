package domain

import (
	"regexp"
	"sort"
	"strings"
)

// MessageType is derived from the presence of an image link.
type MessageType string

const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
)

// DefaultAuthor is shown when a message row carries no author.
const DefaultAuthor = "Operador"

// ChatMessage is one immutable entry of a channel sheet.
type ChatMessage struct {
	ID        string      `json:"id"`
	User      string      `json:"user"`
	Text      string      `json:"text"`
	Img       string      `json:"img,omitempty"`
	Timestamp string      `json:"timestamp"`
	Type      MessageType `json:"type"`
}

// MessageTypeFor returns image when img is an http(s) link.
func MessageTypeFor(img string) MessageType {
	if strings.HasPrefix(img, "http") {
		return MessageImage
	}
	return MessageText
}

// ChannelType distinguishes shared channels from direct messages.
type ChannelType string

const (
	ChannelGroup ChannelType = "group"
	ChannelDM    ChannelType = "dm"
)

// ChatGroup is a conversation channel. Members restricts visibility for
// dynamic groups; fixed channels leave it empty and are open to everyone.
type ChatGroup struct {
	Name        string      `json:"name"`
	SheetName   string      `json:"sheetName"`
	Type        ChannelType `json:"type"`
	Fixed       bool        `json:"fixed"`
	Members     []string    `json:"members"`
	UnreadCount int         `json:"unreadCount"`
}

// Sheet names of the channels every operator can see.
const (
	SheetDefaultChat = "CHAT"
	SheetLogistics   = "LOG_INT"
)

// FixedChannels returns the system channels.
func FixedChannels() []ChatGroup {
	return []ChatGroup{
		{Name: "GRUPO PCP", SheetName: SheetDefaultChat, Type: ChannelGroup, Fixed: true, Members: []string{}},
		{Name: "LOGÍSTICA INTERNA", SheetName: SheetLogistics, Type: ChannelGroup, Fixed: true, Members: []string{}},
	}
}

// IsFixedChannel reports whether sheet names a system channel.
func IsFixedChannel(sheet string) bool {
	for _, c := range FixedChannels() {
		if c.SheetName == sheet {
			return true
		}
	}
	return false
}

// HasMember reports whether userID may open the group.
func (g ChatGroup) HasMember(userID string) bool {
	if g.Fixed {
		return true
	}
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// DMPrefix starts every direct-message sheet name.
const DMPrefix = "DM_"

var whitespaceRun = regexp.MustCompile(`\s+`)

// BuildDM derives the direct-message sheet for two participants. The names are
// sorted first, so BuildDM(a, b) == BuildDM(b, a).
func BuildDM(a, b string) string {
	names := []string{a, b}
	sort.Strings(names)
	joined := strings.Join(names, "_")
	return DMPrefix + strings.ToLower(whitespaceRun.ReplaceAllString(joined, "_"))
}

// IsDMChannel reports whether sheet is a direct-message sheet name.
func IsDMChannel(sheet string) bool {
	return strings.HasPrefix(sheet, DMPrefix)
}
