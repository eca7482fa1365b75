package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisClient(t *testing.T, mr *miniredis.Miniredis) *redis.Client {
	t.Helper()
	c := redis.NewClient(&redis.Options{Addr: mr.Addr(), DisableIdentity: true})
	t.Cleanup(func() { c.Close() })
	return c
}

func TestRedisBridge_RelaysBetweenHubs(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	hubA := NewHub(1, 16, nil)
	defer hubA.Shutdown()
	hubB := NewHub(1, 16, nil)
	defer hubB.Shutdown()

	bridgeA := NewRedisBridge(newRedisClient(t, mr), "changes", "node-a", hubA, nil)
	bridgeB := NewRedisBridge(newRedisClient(t, mr), "changes", "node-b", hubB, nil)
	require.NoError(t, bridgeA.Start(ctx))
	defer bridgeA.Close()
	require.NoError(t, bridgeB.Start(ctx))
	defer bridgeB.Close()

	var onA, onB recorder
	_, err := hubA.Subscribe("messages", Filter{}, onA.add)
	require.NoError(t, err)
	_, err = hubB.Subscribe("messages", Filter{}, onB.add)
	require.NoError(t, err)

	hubA.Publish(Event{
		Table:  "messages",
		Type:   Insert,
		Record: map[string]any{"receiver_id": "u1", "sender_id": "u2"},
		Origin: "node-a",
		At:     time.Now().UTC(),
	})

	require.Eventually(t, func() bool { return onB.len() == 1 }, 2*time.Second, 10*time.Millisecond)
	got := onB.snapshot()[0]
	assert.Equal(t, "node-a", got.Origin)
	assert.Equal(t, "u1", got.Value("receiver_id"))

	// the origin hub must not see its own event come back
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, onA.len())
	assert.Equal(t, 1, onB.len())
}

func TestRedisBridge_CloseWithoutStart(t *testing.T) {
	mr := miniredis.RunT(t)
	hub := NewHub(1, 4, nil)
	defer hub.Shutdown()

	b := NewRedisBridge(newRedisClient(t, mr), "changes", "node-a", hub, nil)
	assert.NoError(t, b.Close())
}
