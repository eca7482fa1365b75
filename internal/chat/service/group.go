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

// MembershipChecker answers whether a user belongs to a group.
type MembershipChecker interface {
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
}

// GroupChannel reads and writes a group's message stream. Membership is
// checked on every call, including reads served from the cache.
type GroupChannel struct {
	repo     repository.GroupMessageRepository
	members  MembershipChecker
	feed     realtime.Feed
	cache    *querycache.Cache
	identity common.Identity
	now      func() time.Time
	log      *zap.Logger
}

func NewGroupChannel(repo repository.GroupMessageRepository, members MembershipChecker, feed realtime.Feed, cache *querycache.Cache, identity common.Identity, log *zap.Logger) *GroupChannel {
	return &GroupChannel{
		repo:     repo,
		members:  members,
		feed:     feed,
		cache:    cache,
		identity: identity,
		now:      func() time.Time { return time.Now().UTC() },
		log:      logging.OrNop(log),
	}
}

func (g *GroupChannel) authorize(ctx context.Context, op, groupID, userID string) error {
	if groupID == "" {
		return common.Errorf(common.KindValidationFailed, op, "group id is required")
	}
	ok, err := g.members.IsMember(ctx, groupID, userID)
	if err != nil {
		return common.StoreError(op, err)
	}
	if !ok {
		return common.Errorf(common.KindForbidden, op, "not a member of group %s", groupID)
	}
	return nil
}

func (g *GroupChannel) ListMessages(ctx context.Context, viewerID, groupID string) ([]chat.Message, error) {
	const op = "chat.group.list"
	if viewerID == "" {
		return nil, common.E(common.KindNotAuthenticated, op, nil)
	}
	if err := g.authorize(ctx, op, groupID, viewerID); err != nil {
		return nil, err
	}
	return querycache.Fetch(ctx, g.cache, querycache.GroupChatKey(groupID), g.loader(op, groupID))
}

func (g *GroupChannel) loader(op, groupID string) func(context.Context) ([]chat.Message, error) {
	return func(ctx context.Context) ([]chat.Message, error) {
		rows, err := g.repo.ByGroup(ctx, groupID)
		if err != nil {
			return nil, common.StoreError(op, err)
		}
		return fromGroupRows(rows), nil
	}
}

func (g *GroupChannel) Send(ctx context.Context, groupID string, in chat.SendInput) (*chat.Message, error) {
	const op = "chat.group.send"
	viewer, err := common.RequireViewer(ctx, g.identity, op)
	if err != nil {
		return nil, err
	}
	if err := g.authorize(ctx, op, groupID, viewer); err != nil {
		return nil, err
	}
	if err := in.Validate(op); err != nil {
		return nil, err
	}

	row := groupRow(groupID, viewer, in)
	row.CreatedAt = g.now()
	err = g.repo.Create(ctx, row)
	g.cache.Invalidate(querycache.GroupChatKey(groupID))
	if err != nil {
		return nil, common.StoreError(op, err)
	}
	metrics.MessagesSent.WithLabelValues(string(chat.ScopeGroup)).Inc()

	msg := fromGroup(row)
	return &msg, nil
}

// Delete removes one of the viewer's own group messages.
func (g *GroupChannel) Delete(ctx context.Context, messageID string) error {
	const op = "chat.group.delete"
	viewer, err := common.RequireViewer(ctx, g.identity, op)
	if err != nil {
		return err
	}
	row, err := g.repo.ByID(ctx, messageID)
	if err != nil {
		return common.StoreError(op, err)
	}
	if row.SenderID != viewer {
		return common.Errorf(common.KindForbidden, op, "only the sender may delete message %s", messageID)
	}
	err = g.repo.Delete(ctx, row)
	g.cache.Invalidate(querycache.GroupChatKey(row.GroupID))
	if err != nil {
		return common.StoreError(op, err)
	}
	return nil
}

// Watch refreshes on every change to the group's messages, deletions included.
// A viewer removed from the group gets a Forbidden error on the next change.
func (g *GroupChannel) Watch(ctx context.Context, groupID string, onChange func([]chat.Message, error)) (*Watch, error) {
	const op = "chat.group.watch"
	viewer, err := common.RequireViewer(ctx, g.identity, op)
	if err != nil {
		return nil, err
	}
	if err := g.authorize(ctx, op, groupID, viewer); err != nil {
		return nil, err
	}

	filter := realtime.Eq("group_id", groupID)
	return startWatch(ctx, op, g.feed, "group_messages", filter, func(ctx context.Context, _ realtime.Event) {
		g.cache.Invalidate(querycache.GroupChatKey(groupID))
		onChange(g.ListMessages(ctx, viewer, groupID))
	})
}
