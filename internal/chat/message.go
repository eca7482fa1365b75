// Package chat holds the messaging domain types shared by the direct and
// group channels and the conversation aggregator.
package chat

import (
	"strings"
	"time"

	"campusnet/internal/common"
	"campusnet/internal/share"
)

type ScopeKind string

const (
	ScopeDirect ScopeKind = "direct"
	ScopeGroup  ScopeKind = "group"
)

// Scope says where a message lives: a direct thread with ReceiverID, or a group.
type Scope struct {
	Kind       ScopeKind `json:"kind"`
	ReceiverID string    `json:"receiver_id,omitempty"`
	GroupID    string    `json:"group_id,omitempty"`
}

type Attachment struct {
	URL  string                `json:"url"`
	Kind common.AttachmentKind `json:"kind"`
}

// Participant is a profile snapshot of a message author or conversation partner.
type Participant struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Photo   *string `json:"photo,omitempty"`
	College string  `json:"college,omitempty"`
}

type Message struct {
	ID         string       `json:"id"`
	SenderID   string       `json:"sender_id"`
	Sender     *Participant `json:"sender,omitempty"`
	Scope      Scope        `json:"scope"`
	Body       string       `json:"body"`
	Attachment *Attachment  `json:"attachment,omitempty"`
	Shared     share.Ref    `json:"shared"`
	CreatedAt  time.Time    `json:"created_at"`
}

func (m Message) SharedRef() share.Ref {
	return m.Shared
}

// Summary is the one-line text used in conversation lists and notifications.
func (m Message) Summary() string {
	if body := strings.TrimSpace(m.Body); body != "" {
		return body
	}
	if m.Attachment != nil {
		switch m.Attachment.Kind {
		case common.AttachmentImage:
			return "Sent a photo"
		case common.AttachmentVideo:
			return "Sent a video"
		case common.AttachmentSticker:
			return "Sent a sticker"
		case common.AttachmentArchive:
			return "Sent an archive"
		}
		return "Sent a file"
	}
	if !m.Shared.IsZero() {
		return share.Preview{Ref: m.Shared}.Label()
	}
	return ""
}

// Conversation is derived per viewer: one entry per partner, built from the
// most recent message exchanged with them.
//
// Unread is true when the partner sent the last message. There is no read
// state behind it; a reply from the viewer is the only thing that clears it.
type Conversation struct {
	Partner         Participant `json:"partner"`
	LastMessageID   string      `json:"last_message_id"`
	LastMessageText string      `json:"last_message_text"`
	LastMessageTime time.Time   `json:"last_message_time"`
	RelativeTime    string      `json:"relative_time"`
	Unread          bool        `json:"unread"`
}

type SendInput struct {
	Body       string      `json:"body"`
	Attachment *Attachment `json:"attachment,omitempty"`
	Shared     share.Ref   `json:"shared"`
}

func (in SendInput) Validate(op string) error {
	hasBody := strings.TrimSpace(in.Body) != ""
	hasAttachment := in.Attachment != nil && in.Attachment.URL != ""
	if !hasBody && !hasAttachment && in.Shared.IsZero() {
		return common.Errorf(common.KindValidationFailed, op, "message needs a body, an attachment or a shared item")
	}
	if hasAttachment && !in.Attachment.Kind.IsValid() {
		return common.Errorf(common.KindValidationFailed, op, "unknown attachment kind %q", in.Attachment.Kind)
	}
	if err := in.Shared.Validate(); err != nil {
		return common.E(common.KindValidationFailed, op, err)
	}
	return nil
}
