package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"campusnet/internal/logging"
)

// RedisBridge relays events between hubs in different processes over a Redis
// pub/sub channel. Events from this process are forwarded out; events from
// other processes are published into the local hub.
type RedisBridge struct {
	client  *redis.Client
	channel string
	origin  string
	hub     *Hub
	log     *zap.Logger

	mu     sync.Mutex
	sub    Subscription
	pubsub *redis.PubSub
	done   chan struct{}
}

func NewRedisBridge(client *redis.Client, channel, origin string, hub *Hub, log *zap.Logger) *RedisBridge {
	return &RedisBridge{
		client:  client,
		channel: channel,
		origin:  origin,
		hub:     hub,
		log:     logging.OrNop(log),
	}
}

func (b *RedisBridge) Start(ctx context.Context) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}

	sub, err := b.hub.Subscribe(AllTables, Filter{}, func(e Event) {
		if e.Origin != b.origin {
			return
		}
		b.forward(context.Background(), e)
	})
	if err != nil {
		pubsub.Close()
		return err
	}

	b.mu.Lock()
	b.sub = sub
	b.pubsub = pubsub
	b.done = make(chan struct{})
	b.mu.Unlock()

	go b.consume(pubsub.Channel(), b.done)

	b.log.Info("redis bridge started", zap.String("channel", b.channel), zap.String("origin", b.origin))
	return nil
}

func (b *RedisBridge) forward(ctx context.Context, e Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		b.log.Error("encode event", zap.Error(err))
		return
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		b.log.Warn("redis publish failed", zap.String("table", e.Table), zap.Error(err))
	}
}

func (b *RedisBridge) consume(ch <-chan *redis.Message, done chan struct{}) {
	defer close(done)

	for msg := range ch {
		var e Event
		if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
			b.log.Warn("decode remote event", zap.Error(err))
			continue
		}
		if e.Origin == b.origin {
			continue
		}
		b.hub.Publish(e)
	}
}

func (b *RedisBridge) Close() error {
	b.mu.Lock()
	sub, pubsub, done := b.sub, b.pubsub, b.done
	b.sub, b.pubsub = nil, nil
	b.mu.Unlock()

	if sub != nil {
		sub.Close()
	}
	if pubsub == nil {
		return nil
	}
	err := pubsub.Close()
	<-done
	return err
}
