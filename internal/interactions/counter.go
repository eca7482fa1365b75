package interactions

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"campusnet/internal/common"
	"campusnet/internal/dbmysql"
	"campusnet/internal/logging"
	"campusnet/internal/metrics"
	"campusnet/internal/querycache"
	"campusnet/internal/realtime"
)

// State is what a like or bookmark button renders.
type State struct {
	Count          int64 `json:"count"`
	ViewerHasActed bool  `json:"viewer_has_acted"`
}

func (s State) toggled() State {
	if s.ViewerHasActed {
		s.ViewerHasActed = false
		if s.Count > 0 {
			s.Count--
		}
		return s
	}
	s.ViewerHasActed = true
	s.Count++
	return s
}

// Counter tracks one action (like or bookmark) across posts and projects.
type Counter struct {
	table    Table
	repo     Repository
	cache    *querycache.Cache
	identity common.Identity
	notifier common.Notifier
	log      *zap.Logger
}

func NewCounter(action Action, repo Repository, cache *querycache.Cache, identity common.Identity, notifier common.Notifier, log *zap.Logger) (*Counter, error) {
	table, err := TableFor(action)
	if err != nil {
		return nil, err
	}
	return &Counter{
		table:    table,
		repo:     repo,
		cache:    cache,
		identity: identity,
		notifier: notifier,
		log:      logging.OrNop(log),
	}, nil
}

func (c *Counter) Action() Action {
	return c.table.Action
}

// Table names the store table the counter reads.
func (c *Counter) Table() string {
	return c.table.Name
}

// InvalidateAll drops every cached state for the action.
func (c *Counter) InvalidateAll() {
	c.cache.Invalidate(querycache.NewKey(string(c.table.Action)))
}

// Counters is the like and bookmark pair the API serves.
type Counters struct {
	Likes     *Counter
	Bookmarks *Counter
}

func NewCounters(repo Repository, cache *querycache.Cache, identity common.Identity, notifier common.Notifier, log *zap.Logger) (*Counters, error) {
	likes, err := NewCounter(ActionLike, repo, cache, identity, notifier, log)
	if err != nil {
		return nil, err
	}
	bookmarks, err := NewCounter(ActionBookmark, repo, cache, identity, notifier, log)
	if err != nil {
		return nil, err
	}
	return &Counters{Likes: likes, Bookmarks: bookmarks}, nil
}

func (c *Counter) key(target Target, entityID, viewer string) querycache.Key {
	return querycache.InteractionKey(string(c.table.Action), string(target.Kind), entityID, viewer)
}

// GetState returns the count and whether the viewer has acted. Anonymous
// callers always see ViewerHasActed false.
func (c *Counter) GetState(ctx context.Context, entityID string, kind EntityKind) (State, error) {
	target, err := TargetFor(kind)
	if err != nil {
		return State{}, err
	}
	if entityID == "" {
		return State{}, common.Errorf(common.KindValidationFailed, "interactions.state", "entity id is required")
	}
	viewer, _ := c.identity.CurrentViewer(ctx)
	return querycache.Fetch(ctx, c.cache, c.key(target, entityID, viewer), func(ctx context.Context) (State, error) {
		return c.load(ctx, target, entityID, viewer)
	})
}

func (c *Counter) load(ctx context.Context, target Target, entityID, viewer string) (State, error) {
	const op = "interactions.load"
	n, err := c.repo.Count(ctx, c.table, target, entityID)
	if err != nil {
		return State{}, common.StoreError(op, err)
	}
	s := State{Count: n}
	if viewer != "" {
		acted, err := c.repo.HasActed(ctx, c.table, target, entityID, viewer)
		if err != nil {
			return State{}, common.StoreError(op, err)
		}
		s.ViewerHasActed = acted
	}
	return s, nil
}

// Toggle flips the viewer's state optimistically, writes the change and then
// settles against the store. The write is chosen from the state seen when
// Toggle was called; concurrent toggles are not merged. On a failed write
// the cache is rolled back and the pre-toggle state is returned with the error.
func (c *Counter) Toggle(ctx context.Context, entityID string, kind EntityKind) (State, error) {
	const op = "interactions.toggle"
	viewer, err := common.RequireViewer(ctx, c.identity, op)
	if err != nil {
		return State{}, err
	}
	target, err := TargetFor(kind)
	if err != nil {
		return State{}, err
	}
	base, err := c.GetState(ctx, entityID, kind)
	if err != nil {
		return State{}, err
	}

	key := c.key(target, entityID, viewer)
	var before State
	prev, existed := c.cache.Patch(key, func(prev any, ok bool) any {
		before = base
		if s, isState := prev.(State); ok && isState {
			before = s
		}
		return before.toggled()
	})

	if before.ViewerHasActed {
		err = c.repo.Remove(ctx, c.table, target, entityID, viewer)
	} else {
		err = c.repo.Add(ctx, c.table, target, entityID, viewer)
	}
	if err != nil {
		c.cache.Restore(key, prev, existed)
		metrics.ToggleRollbacks.WithLabelValues(string(c.table.Action)).Inc()
		c.log.Warn("toggle failed, rolled back",
			zap.String("action", string(c.table.Action)),
			zap.String("entity_id", entityID),
			zap.Error(err))
		if _, serr := c.settle(ctx, target, entityID); serr != nil {
			c.log.Debug("settle after failed toggle", zap.Error(serr))
		}
		return before, common.StoreError(op, err)
	}

	if !before.ViewerHasActed && c.table.Action == ActionLike {
		c.notify(ctx, target, entityID, viewer)
	}
	return c.settle(ctx, target, entityID)
}

// settle drops every viewer's cached state for the entity and reloads the
// caller's.
func (c *Counter) settle(ctx context.Context, target Target, entityID string) (State, error) {
	c.cache.Invalidate(querycache.InteractionPrefix(string(c.table.Action), string(target.Kind), entityID))
	return c.GetState(ctx, entityID, target.Kind)
}

func (c *Counter) notify(ctx context.Context, target Target, entityID, viewer string) {
	if c.notifier == nil {
		return
	}
	author, err := c.repo.AuthorOf(ctx, target, entityID)
	if err != nil {
		c.log.Debug("no author for reaction", zap.String("entity_id", entityID), zap.Error(err))
		return
	}
	if author == viewer {
		return
	}
	if err := c.notifier.SendReactionNotification(ctx, string(target.Kind), entityID, author, viewer); err != nil {
		c.log.Warn("reaction notification failed", zap.String("entity_id", entityID), zap.Error(err))
	}
}

// InvalidateOn drops cached state whenever the action's table changes, so
// counts written by other sessions converge.
func (c *Counter) InvalidateOn(feed realtime.Feed) (realtime.Subscription, error) {
	return feed.Subscribe(c.table.Name, realtime.Filter{}, func(e realtime.Event) {
		kind, id := kindFromRecord(e.Value)
		if id == "" {
			return
		}
		c.cache.Invalidate(querycache.InteractionPrefix(string(c.table.Action), string(kind), id))
	})
}

// Comments serves comment counts and threads.
type Comments struct {
	repo     Repository
	cache    *querycache.Cache
	identity common.Identity
}

func NewComments(repo Repository, cache *querycache.Cache, identity common.Identity) *Comments {
	return &Comments{repo: repo, cache: cache, identity: identity}
}

func (c *Comments) Table() string {
	return "comments"
}

// InvalidateOn drops a cached comment count whenever its entity gains or
// loses a comment.
func (c *Comments) InvalidateOn(feed realtime.Feed) (realtime.Subscription, error) {
	return feed.Subscribe(c.Table(), realtime.Filter{}, func(e realtime.Event) {
		kind, id := kindFromRecord(e.Value)
		if id == "" {
			return
		}
		c.cache.Invalidate(querycache.CommentsCountKey(string(kind), id))
	})
}

func (c *Comments) InvalidateAll() {
	c.cache.Invalidate(querycache.NewKey("comments-count"))
}

func (c *Comments) Count(ctx context.Context, entityID string, kind EntityKind) (int64, error) {
	target, err := TargetFor(kind)
	if err != nil {
		return 0, err
	}
	return querycache.Fetch(ctx, c.cache, querycache.CommentsCountKey(string(kind), entityID), func(ctx context.Context) (int64, error) {
		n, err := c.repo.CountComments(ctx, target, entityID)
		if err != nil {
			return 0, common.StoreError("interactions.comments_count", err)
		}
		return n, nil
	})
}

func (c *Comments) List(ctx context.Context, entityID string, kind EntityKind) ([]*dbmysql.Comment, error) {
	target, err := TargetFor(kind)
	if err != nil {
		return nil, err
	}
	comments, err := c.repo.ListComments(ctx, target, entityID)
	if err != nil {
		return nil, common.StoreError("interactions.comments", err)
	}
	return comments, nil
}

func (c *Comments) Add(ctx context.Context, entityID string, kind EntityKind, content string) (*dbmysql.Comment, error) {
	const op = "interactions.add_comment"
	viewer, err := common.RequireViewer(ctx, c.identity, op)
	if err != nil {
		return nil, err
	}
	target, err := TargetFor(kind)
	if err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" || entityID == "" {
		return nil, common.Errorf(common.KindValidationFailed, op, "comment needs an entity and content")
	}

	comment := &dbmysql.Comment{UserID: viewer, Content: content}
	switch target.Kind {
	case KindPost:
		comment.PostID = &entityID
	case KindProject:
		comment.ProjectID = &entityID
	}
	if err := c.repo.AddComment(ctx, comment); err != nil {
		return nil, common.StoreError(op, err)
	}
	c.cache.Invalidate(querycache.CommentsCountKey(string(kind), entityID))
	return comment, nil
}
