// Package cachesync keeps the process-wide query cache in step with the
// store. Every change event that reaches the local hub, including those
// relayed from other replicas over Redis, drops the cached reads it affects.
package cachesync

import (
	"sync"

	"go.uber.org/zap"

	"campusnet/internal/logging"
	"campusnet/internal/querycache"
	"campusnet/internal/realtime"
)

// Source owns the cache keys for one table and knows how to drop them.
type Source interface {
	Table() string
	InvalidateOn(feed realtime.Feed) (realtime.Subscription, error)
	InvalidateAll()
}

type rule struct {
	table  string
	events []realtime.EventType
	keys   func(e realtime.Event) []querycache.Key
	// prefixes cover every key of the table after a dropped event.
	prefixes []querycache.Key
}

// Invalidator subscribes to the feed on Start and unsubscribes on Close.
type Invalidator struct {
	cache   *querycache.Cache
	feed    realtime.Feed
	sources []Source
	rules   []rule
	log     *zap.Logger

	mu   sync.Mutex
	subs []realtime.Subscription
}

func New(cache *querycache.Cache, feed realtime.Feed, log *zap.Logger, sources ...Source) *Invalidator {
	return &Invalidator{
		cache:   cache,
		feed:    feed,
		sources: sources,
		rules:   defaultRules(),
		log:     logging.OrNop(log),
	}
}

func defaultRules() []rule {
	return []rule{
		{
			table: "messages",
			keys: func(e realtime.Event) []querycache.Key {
				sender, receiver := e.Value("sender_id"), e.Value("receiver_id")
				var keys []querycache.Key
				if sender != "" && receiver != "" {
					keys = append(keys, querycache.ChatKey(sender, receiver), querycache.ChatKey(receiver, sender))
				}
				for _, id := range []string{sender, receiver} {
					if id != "" {
						keys = append(keys, querycache.ConversationsKey(id))
					}
				}
				return keys
			},
			prefixes: []querycache.Key{querycache.NewKey("chat"), querycache.NewKey("conversations")},
		},
		{
			table:    "group_messages",
			keys:     byColumn("group_id", querycache.GroupChatKey),
			prefixes: []querycache.Key{querycache.NewKey("group-chat")},
		},
		{
			table:    "group_members",
			keys:     byColumn("user_id", querycache.GroupsKey),
			prefixes: []querycache.Key{querycache.NewKey("groups")},
		},
		{
			table: "groups",
			keys: func(e realtime.Event) []querycache.Key {
				keys := []querycache.Key{querycache.NewKey("groups")}
				if e.Type == realtime.Delete && e.Value("id") != "" {
					keys = append(keys, querycache.GroupChatKey(e.Value("id")))
				}
				return keys
			},
			prefixes: []querycache.Key{querycache.NewKey("groups"), querycache.NewKey("group-chat")},
		},
		sharedRule("posts", "post"),
		sharedRule("projects", "project"),
		sharedRule("users", "user"),
		{
			table: "follows",
			keys: func(e realtime.Event) []querycache.Key {
				follower, following := e.Value("follower_id"), e.Value("following_id")
				if follower == "" || following == "" {
					return nil
				}
				return []querycache.Key{querycache.FollowKey(follower, following)}
			},
			prefixes: []querycache.Key{querycache.NewKey("follow")},
		},
	}
}

func byColumn(column string, key func(string) querycache.Key) func(realtime.Event) []querycache.Key {
	return func(e realtime.Event) []querycache.Key {
		if v := e.Value(column); v != "" {
			return []querycache.Key{key(v)}
		}
		return nil
	}
}

// sharedRule drops shared previews when the referenced row changes or goes away.
func sharedRule(table, kind string) rule {
	return rule{
		table:    table,
		events:   []realtime.EventType{realtime.Update, realtime.Delete},
		keys:     byColumn("id", func(id string) querycache.Key { return querycache.SharedKey(kind, id) }),
		prefixes: []querycache.Key{querycache.NewKey("shared", kind)},
	}
}

func (i *Invalidator) Start() error {
	subs := make([]realtime.Subscription, 0, len(i.rules)+len(i.sources))
	fail := func(err error) error {
		for _, s := range subs {
			s.Close()
		}
		return err
	}

	for _, r := range i.rules {
		r := r
		sub, err := i.feed.Subscribe(r.table, realtime.Filter{Events: r.events}, func(e realtime.Event) {
			for _, k := range r.keys(e) {
				i.cache.Invalidate(k)
			}
		})
		if err != nil {
			return fail(err)
		}
		subs = append(subs, sub)
	}
	for _, src := range i.sources {
		sub, err := src.InvalidateOn(i.feed)
		if err != nil {
			return fail(err)
		}
		subs = append(subs, sub)
	}
	if n, ok := i.feed.(realtime.OverflowNotifier); ok {
		n.OnOverflow(i.resync)
	}

	i.mu.Lock()
	i.subs = subs
	i.mu.Unlock()
	i.log.Info("cache invalidation started", zap.Int("subscriptions", len(subs)))
	return nil
}

// resync drops everything cached for a table that lost an event.
func (i *Invalidator) resync(table string) {
	dropped := 0
	for _, r := range i.rules {
		if r.table != table {
			continue
		}
		for _, p := range r.prefixes {
			dropped += i.cache.Invalidate(p)
		}
	}
	for _, src := range i.sources {
		if src.Table() == table {
			src.InvalidateAll()
		}
	}
	i.log.Warn("resynced cache after dropped event", zap.String("table", table), zap.Int("keys", dropped))
}

func (i *Invalidator) Close() {
	i.mu.Lock()
	subs := i.subs
	i.subs = nil
	i.mu.Unlock()
	for _, s := range subs {
		s.Close()
	}
}
