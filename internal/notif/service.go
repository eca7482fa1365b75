// Package notif records and fans out user notifications: new messages,
// reactions and follows.
package notif

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"campusnet/internal/common"
	"campusnet/internal/config"
	"campusnet/internal/dbmysql"
	"campusnet/internal/logging"
)

const previewLength = 100

type NotificationService struct {
	manager  *NotificationManager
	repo     dbmysql.NotificationRepository
	identity common.Identity
	enabled  bool
	now      func() time.Time
	log      *zap.Logger
}

// NewNotificationService wires the database observer plus any extra observers
// (such as the Kafka publisher) into a manager sized from cfg.
func NewNotificationService(
	cfg config.NotificationConfig,
	repo dbmysql.NotificationRepository,
	identity common.Identity,
	log *zap.Logger,
	observers ...common.Observer,
) *NotificationService {
	log = logging.OrNop(log)
	manager := NewNotificationManager(cfg.Workers, cfg.ChannelBufferSize, log)

	manager.Subscribe(NewDatabaseNotificationObserver(repo))
	for _, obs := range observers {
		if obs != nil {
			manager.Subscribe(obs)
		}
	}

	return &NotificationService{
		manager:  manager,
		repo:     repo,
		identity: identity,
		enabled:  cfg.Enabled,
		now:      time.Now,
		log:      log,
	}
}

// SendNotification validates and queues an event. Delivery is best effort.
func (s *NotificationService) SendNotification(ctx context.Context, event common.NotificationEvent) error {
	if err := validateEvent(event); err != nil {
		return common.E(common.KindValidationFailed, "notif.send", err)
	}
	if !s.enabled {
		return nil
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.now()
	}

	s.manager.NotifyAsync(event)
	s.log.Debug("notification queued", zap.String("type", string(event.Type)), zap.String("user_id", event.UserID))
	return nil
}

func (s *NotificationService) SendMessageNotification(ctx context.Context, recipientID, senderID, preview string) error {
	content := truncate(strings.TrimSpace(preview), previewLength)
	if content == "" {
		content = "sent you a message"
	}
	return s.SendNotification(ctx, common.NotificationEvent{
		Type:    common.MessageType,
		UserID:  recipientID,
		ActorID: &senderID,
		Content: content,
		Metadata: common.NotificationMetadata{
			"sender_id": senderID,
		},
	})
}

func (s *NotificationService) SendReactionNotification(ctx context.Context, entityKind, entityID, authorID, actorID string) error {
	if authorID == actorID {
		return nil
	}
	return s.SendNotification(ctx, common.NotificationEvent{
		Type:    common.ReactionType,
		UserID:  authorID,
		ActorID: &actorID,
		Content: fmt.Sprintf("liked your %s", entityKind),
		Metadata: common.NotificationMetadata{
			"entity_kind": entityKind,
			"entity_id":   entityID,
		},
	})
}

func (s *NotificationService) SendFollowNotification(ctx context.Context, followerID, followingID string) error {
	return s.SendNotification(ctx, common.NotificationEvent{
		Type:    common.FollowType,
		UserID:  followingID,
		ActorID: &followerID,
		Content: "started following you",
		Metadata: common.NotificationMetadata{
			"follower_id": followerID,
		},
	})
}

func (s *NotificationService) ListForUser(ctx context.Context, limit, offset int) ([]*common.NotificationResponse, error) {
	const op = "notif.list"
	viewer, err := common.RequireViewer(ctx, s.identity, op)
	if err != nil {
		return nil, err
	}
	notifications, err := s.repo.ByUserID(ctx, viewer, limit, offset)
	if err != nil {
		return nil, common.StoreError(op, err)
	}

	responses := make([]*common.NotificationResponse, len(notifications))
	for i, n := range notifications {
		responses[i] = &common.NotificationResponse{
			ID:        n.ID,
			Type:      n.Type,
			ActorID:   n.ActorID,
			Content:   n.Content,
			IsRead:    n.IsRead,
			Metadata:  common.NotificationMetadata(n.Metadata),
			CreatedAt: n.CreatedAt,
		}
	}
	return responses, nil
}

// MarkAsRead marks one of the viewer's notifications as read. Someone else's
// notification is Forbidden.
func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID string) error {
	const op = "notif.mark_read"
	viewer, err := common.RequireViewer(ctx, s.identity, op)
	if err != nil {
		return err
	}
	n, err := s.repo.ByID(ctx, notificationID)
	if err != nil {
		return common.StoreError(op, err)
	}
	if n.UserID != viewer {
		return common.Errorf(common.KindForbidden, op, "notification %s belongs to another user", notificationID)
	}
	if err := s.repo.MarkAsRead(ctx, notificationID, viewer); err != nil {
		if errors.Is(err, dbmysql.ErrNotificationNotFound) {
			return common.StoreError(op, gorm.ErrRecordNotFound)
		}
		return common.StoreError(op, err)
	}
	return nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context) (int64, error) {
	const op = "notif.mark_all_read"
	viewer, err := common.RequireViewer(ctx, s.identity, op)
	if err != nil {
		return 0, err
	}
	n, err := s.repo.MarkAllAsRead(ctx, viewer)
	if err != nil {
		return 0, common.StoreError(op, err)
	}
	return n, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context) (int64, error) {
	const op = "notif.unread_count"
	viewer, err := common.RequireViewer(ctx, s.identity, op)
	if err != nil {
		return 0, err
	}
	n, err := s.repo.UnreadCount(ctx, viewer)
	if err != nil {
		return 0, common.StoreError(op, err)
	}
	return n, nil
}

func (s *NotificationService) Shutdown() {
	s.manager.Shutdown()
}

func validateEvent(event common.NotificationEvent) error {
	if event.UserID == "" {
		return errors.New("user_id is required")
	}
	if event.Type == "" {
		return errors.New("type is required")
	}
	if strings.TrimSpace(event.Content) == "" {
		return errors.New("content is required")
	}
	return nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "…"
}
