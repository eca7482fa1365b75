package common

import (
	"context"
)

type Observer interface {
	Update(ctx context.Context, event NotificationEvent) error
	Name() string
}

type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	Notify(ctx context.Context, event NotificationEvent)
	NotifyAsync(event NotificationEvent)
}

// Notifier is the slice of the notification service that other domains call.
// Implementations are best effort: callers log and drop the error.
type Notifier interface {
	SendMessageNotification(ctx context.Context, recipientID, senderID, preview string) error
	SendReactionNotification(ctx context.Context, entityKind, entityID, authorID, actorID string) error
	SendFollowNotification(ctx context.Context, followerID, followingID string) error
}
