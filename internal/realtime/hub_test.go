package realtime

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) add(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *recorder) len() int {
	return len(r.snapshot())
}

func TestFilter_Match(t *testing.T) {
	insert := Event{Table: "messages", Type: Insert, Record: map[string]any{"receiver_id": "u1", "sender_id": "u2"}}
	del := Event{Table: "messages", Type: Delete, Record: map[string]any{"receiver_id": "u1"}}

	assert.True(t, Filter{}.Match(insert))
	assert.True(t, Eq("receiver_id", "u1", Insert).Match(insert))
	assert.False(t, Eq("receiver_id", "u1", Insert).Match(del))
	assert.True(t, Eq("receiver_id", "u1").Match(del))
	assert.False(t, Eq("receiver_id", "u3").Match(insert))
	assert.True(t, Eq("group_id", "").Match(Event{Record: map[string]any{"group_id": nil}}))
}

func TestHub_DeliversMatchingEvents(t *testing.T) {
	hub := NewHub(2, 16, nil)
	defer hub.Shutdown()

	var mine, all recorder
	_, err := hub.Subscribe("messages", Eq("receiver_id", "u1", Insert), mine.add)
	require.NoError(t, err)
	_, err = hub.Subscribe(AllTables, Filter{}, all.add)
	require.NoError(t, err)

	hub.Publish(Event{Table: "messages", Type: Insert, Record: map[string]any{"receiver_id": "u1"}})
	hub.Publish(Event{Table: "messages", Type: Insert, Record: map[string]any{"receiver_id": "u2"}})
	hub.Publish(Event{Table: "group_messages", Type: Delete, Record: map[string]any{"group_id": "g1"}})

	assert.Eventually(t, func() bool { return all.len() == 3 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return mine.len() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "u1", mine.snapshot()[0].Value("receiver_id"))
}

func TestHub_CloseIsIdempotent(t *testing.T) {
	hub := NewHub(1, 4, nil)
	defer hub.Shutdown()

	var rec recorder
	sub, err := hub.Subscribe("messages", Filter{}, rec.add)
	require.NoError(t, err)
	assert.Equal(t, 1, hub.Subscribers())

	sub.Close()
	sub.Close()
	assert.Equal(t, 0, hub.Subscribers())

	hub.Dispatch(Event{Table: "messages", Type: Insert})
	assert.Zero(t, rec.len())
}

func TestHub_SubscriberPanicDoesNotKillWorker(t *testing.T) {
	hub := NewHub(1, 4, nil)
	defer hub.Shutdown()

	var rec recorder
	_, err := hub.Subscribe("t", Filter{}, func(Event) { panic("boom") })
	require.NoError(t, err)
	_, err = hub.Subscribe("t", Filter{}, rec.add)
	require.NoError(t, err)

	hub.Publish(Event{Table: "t", Type: Insert})
	hub.Publish(Event{Table: "t", Type: Insert})

	assert.Eventually(t, func() bool { return rec.len() == 2 }, time.Second, 5*time.Millisecond)
}

func TestHub_FullQueueDrops(t *testing.T) {
	hub := NewHub(1, 1, nil)
	defer hub.Shutdown()

	var mu sync.Mutex
	overflowed := map[string]int{}
	hub.OnOverflow(func(table string) {
		mu.Lock()
		overflowed[table]++
		mu.Unlock()
	})

	release := make(chan struct{})
	var rec recorder
	_, err := hub.Subscribe("t", Filter{}, func(e Event) {
		<-release
		rec.add(e)
	})
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		hub.Publish(Event{Table: "t", Type: Insert})
	}
	close(release)

	time.Sleep(50 * time.Millisecond)
	delivered := rec.len()
	assert.Less(t, delivered, 10)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 10-delivered, overflowed["t"], "every dropped event is reported")
}

func TestHub_Shutdown(t *testing.T) {
	hub := NewHub(1, 4, nil)
	hub.Shutdown()

	_, err := hub.Subscribe("t", Filter{}, func(Event) {})
	assert.ErrorIs(t, err, ErrHubClosed)
	hub.Publish(Event{Table: "t"})
}
