package service

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"campusnet/internal/chat"
	"campusnet/internal/chat/repository"
	"campusnet/internal/common"
	"campusnet/internal/logging"
	"campusnet/internal/querycache"
	"campusnet/internal/realtime"
)

// ConversationAggregator derives the viewer's inbox from direct messages.
type ConversationAggregator struct {
	repo  repository.DirectMessageRepository
	feed  realtime.Feed
	cache *querycache.Cache
	now   func() time.Time
	log   *zap.Logger
}

func NewConversationAggregator(repo repository.DirectMessageRepository, feed realtime.Feed, cache *querycache.Cache, log *zap.Logger) *ConversationAggregator {
	return &ConversationAggregator{
		repo:  repo,
		feed:  feed,
		cache: cache,
		now:   func() time.Time { return time.Now().UTC() },
		log:   logging.OrNop(log),
	}
}

// ListConversations returns one entry per partner, most recent first. The
// entry reflects the latest message exchanged with that partner.
func (a *ConversationAggregator) ListConversations(ctx context.Context, viewerID string) ([]chat.Conversation, error) {
	const op = "chat.conversations"
	if viewerID == "" {
		return nil, common.E(common.KindNotAuthenticated, op, nil)
	}

	convs, err := querycache.Fetch(ctx, a.cache, querycache.ConversationsKey(viewerID), func(ctx context.Context) ([]chat.Conversation, error) {
		return a.load(ctx, op, viewerID)
	})
	if err != nil {
		return nil, err
	}

	// Cached entries carry no relative time; it is filled in per call.
	now := a.now()
	out := make([]chat.Conversation, len(convs))
	for i, c := range convs {
		c.RelativeTime = humanize.RelTime(c.LastMessageTime, now, "ago", "from now")
		out[i] = c
	}
	return out, nil
}

func (a *ConversationAggregator) load(ctx context.Context, op, viewerID string) ([]chat.Conversation, error) {
	rows, err := a.repo.Involving(ctx, viewerID)
	if err != nil {
		return nil, common.StoreError(op, err)
	}

	seen := make(map[string]bool)
	convs := make([]chat.Conversation, 0)
	for _, row := range rows {
		partnerID, partner := row.ReceiverID, row.Receiver
		if row.SenderID != viewerID {
			partnerID, partner = row.SenderID, row.Sender
		}
		if seen[partnerID] {
			continue
		}
		seen[partnerID] = true
		if partner == nil {
			a.log.Debug("skipping conversation with missing profile", zap.String("partner_id", partnerID))
			continue
		}

		msg := fromDirect(row)
		convs = append(convs, chat.Conversation{
			Partner:         *participant(partner),
			LastMessageID:   row.ID,
			LastMessageText: msg.Summary(),
			LastMessageTime: row.CreatedAt,
			Unread:          row.SenderID == partnerID,
		})
	}
	return convs, nil
}

// Watch refreshes the inbox whenever someone messages the viewer.
func (a *ConversationAggregator) Watch(ctx context.Context, viewerID string, onChange func([]chat.Conversation, error)) (*Watch, error) {
	const op = "chat.conversations.watch"
	if viewerID == "" {
		return nil, common.E(common.KindNotAuthenticated, op, nil)
	}
	filter := realtime.Eq("receiver_id", viewerID, realtime.Insert)
	return startWatch(ctx, op, a.feed, "messages", filter, func(ctx context.Context, _ realtime.Event) {
		a.cache.Invalidate(querycache.ConversationsKey(viewerID))
		onChange(a.ListConversations(ctx, viewerID))
	})
}
