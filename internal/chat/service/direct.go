package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"campusnet/internal/chat"
	"campusnet/internal/chat/repository"
	"campusnet/internal/common"
	"campusnet/internal/logging"
	"campusnet/internal/metrics"
	"campusnet/internal/querycache"
	"campusnet/internal/realtime"
)

// DirectChannel reads and writes the one-to-one thread between the viewer
// and a partner.
type DirectChannel struct {
	repo     repository.DirectMessageRepository
	feed     realtime.Feed
	cache    *querycache.Cache
	identity common.Identity
	notifier common.Notifier
	now      func() time.Time
	log      *zap.Logger
}

func NewDirectChannel(repo repository.DirectMessageRepository, feed realtime.Feed, cache *querycache.Cache, identity common.Identity, notifier common.Notifier, log *zap.Logger) *DirectChannel {
	return &DirectChannel{
		repo:     repo,
		feed:     feed,
		cache:    cache,
		identity: identity,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
		log:      logging.OrNop(log),
	}
}

// ListMessages returns the thread between viewer and partner, oldest first.
func (d *DirectChannel) ListMessages(ctx context.Context, viewerID, partnerID string) ([]chat.Message, error) {
	const op = "chat.direct.list"
	if viewerID == "" {
		return nil, common.E(common.KindNotAuthenticated, op, nil)
	}
	if partnerID == "" {
		return nil, common.Errorf(common.KindValidationFailed, op, "partner id is required")
	}
	return querycache.Fetch(ctx, d.cache, querycache.ChatKey(viewerID, partnerID), d.loader(op, viewerID, partnerID))
}

func (d *DirectChannel) loader(op, viewerID, partnerID string) func(context.Context) ([]chat.Message, error) {
	return func(ctx context.Context) ([]chat.Message, error) {
		rows, err := d.repo.Between(ctx, viewerID, partnerID)
		if err != nil {
			return nil, common.StoreError(op, err)
		}
		return fromDirectRows(rows), nil
	}
}

func (d *DirectChannel) Send(ctx context.Context, partnerID string, in chat.SendInput) (*chat.Message, error) {
	const op = "chat.direct.send"
	viewer, err := common.RequireViewer(ctx, d.identity, op)
	if err != nil {
		return nil, err
	}
	if partnerID == "" || partnerID == viewer {
		return nil, common.Errorf(common.KindValidationFailed, op, "invalid partner %q", partnerID)
	}
	if err := in.Validate(op); err != nil {
		return nil, err
	}

	row := directRow(viewer, partnerID, in)
	row.CreatedAt = d.now()
	err = d.repo.Create(ctx, row)
	// A failed write may still have landed, so both outcomes drop the thread.
	d.invalidate(viewer, partnerID)
	if err != nil {
		return nil, common.StoreError(op, err)
	}
	metrics.MessagesSent.WithLabelValues(string(chat.ScopeDirect)).Inc()

	msg := fromDirect(row)
	if d.notifier != nil {
		if err := d.notifier.SendMessageNotification(ctx, partnerID, viewer, msg.Summary()); err != nil {
			d.log.Warn("message notification failed",
				zap.String("message_id", msg.ID),
				zap.Error(err))
		}
	}
	return &msg, nil
}

// Delete removes one of the viewer's own messages.
func (d *DirectChannel) Delete(ctx context.Context, messageID string) error {
	const op = "chat.direct.delete"
	viewer, err := common.RequireViewer(ctx, d.identity, op)
	if err != nil {
		return err
	}
	row, err := d.repo.ByID(ctx, messageID)
	if err != nil {
		return common.StoreError(op, err)
	}
	if row.SenderID != viewer {
		return common.Errorf(common.KindForbidden, op, "only the sender may delete message %s", messageID)
	}
	err = d.repo.Delete(ctx, row)
	d.invalidate(row.SenderID, row.ReceiverID)
	if err != nil {
		return common.StoreError(op, err)
	}
	return nil
}

func (d *DirectChannel) invalidate(a, b string) {
	d.cache.Invalidate(querycache.ChatKey(a, b))
	d.cache.Invalidate(querycache.ChatKey(b, a))
	d.cache.Invalidate(querycache.ConversationsKey(a))
	d.cache.Invalidate(querycache.ConversationsKey(b))
}

// Watch calls onChange with a freshly loaded thread each time the partner
// sends the viewer a message. Event payloads are only used as a trigger.
func (d *DirectChannel) Watch(ctx context.Context, partnerID string, onChange func([]chat.Message, error)) (*Watch, error) {
	const op = "chat.direct.watch"
	viewer, err := common.RequireViewer(ctx, d.identity, op)
	if err != nil {
		return nil, err
	}
	if partnerID == "" {
		return nil, common.Errorf(common.KindValidationFailed, op, "partner id is required")
	}

	filter := realtime.Eq("receiver_id", viewer, realtime.Insert)
	return startWatch(ctx, op, d.feed, "messages", filter, func(ctx context.Context, e realtime.Event) {
		if e.Value("sender_id") != partnerID {
			return
		}
		d.cache.Invalidate(querycache.ConversationsKey(viewer))
		msgs, err := querycache.Refresh(ctx, d.cache, querycache.ChatKey(viewer, partnerID), d.loader(op, viewer, partnerID))
		onChange(msgs, err)
	})
}
