package common

import (
	"time"
)

type NotificationType string

const (
	FollowType       NotificationType = "follow"
	ReactionType     NotificationType = "like"
	MessageType      NotificationType = "message"
	GroupInviteType  NotificationType = "group_invite"
	VerificationType NotificationType = "verification"
)

type NotificationMetadata map[string]interface{}

type NotificationEvent struct {
	Type      NotificationType     `json:"type"`
	UserID    string               `json:"user_id"`
	ActorID   *string              `json:"actor_id,omitempty"`
	Content   string               `json:"content"`
	Metadata  NotificationMetadata `json:"metadata,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
}

type NotificationResponse struct {
	ID        string               `json:"id"`
	Type      string               `json:"type"`
	ActorID   *string              `json:"actor_id,omitempty"`
	Content   string               `json:"content"`
	IsRead    bool                 `json:"is_read"`
	Metadata  NotificationMetadata `json:"metadata,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
}
