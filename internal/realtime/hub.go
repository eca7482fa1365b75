package realtime

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"campusnet/internal/logging"
	"campusnet/internal/metrics"
)

var ErrHubClosed = errors.New("realtime hub is shut down")

type subscriber struct {
	id      uint64
	table   string
	filter  Filter
	onEvent func(Event)
	hub     *Hub
	once    sync.Once
}

func (s *subscriber) Close() {
	s.once.Do(func() {
		s.hub.remove(s)
	})
}

// Hub fans events out to subscribers from a buffered queue drained by a
// fixed pool of workers. Publishing never blocks; a full queue drops the event
// and tells the overflow handlers which table it belonged to.
type Hub struct {
	mu       sync.RWMutex
	subs     map[string]map[uint64]*subscriber
	overflow []func(table string)
	nextID   atomic.Uint64

	queue   chan Event
	workers int
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	log     *zap.Logger
}

func NewHub(workers, bufferSize int, log *zap.Logger) *Hub {
	if workers < 1 {
		workers = 1
	}
	if bufferSize < 1 {
		bufferSize = 1024
	}
	ctx, cancel := context.WithCancel(context.Background())

	h := &Hub{
		subs:    make(map[string]map[uint64]*subscriber),
		queue:   make(chan Event, bufferSize),
		workers: workers,
		ctx:     ctx,
		cancel:  cancel,
		log:     logging.OrNop(log),
	}

	for i := 0; i < workers; i++ {
		h.wg.Add(1)
		go h.processEvents()
	}
	return h
}

func (h *Hub) Subscribe(table string, filter Filter, onEvent func(Event)) (Subscription, error) {
	if h.ctx.Err() != nil {
		return nil, ErrHubClosed
	}
	s := &subscriber{
		id:      h.nextID.Add(1),
		table:   table,
		filter:  filter,
		onEvent: onEvent,
		hub:     h,
	}

	h.mu.Lock()
	if h.subs[table] == nil {
		h.subs[table] = make(map[uint64]*subscriber)
	}
	h.subs[table][s.id] = s
	h.mu.Unlock()

	h.log.Debug("subscribed", zap.String("table", table), zap.String("column", filter.Column), zap.Uint64("id", s.id))
	return s, nil
}

func (h *Hub) remove(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[s.table], s.id)
	if len(h.subs[s.table]) == 0 {
		delete(h.subs, s.table)
	}
}

// OnOverflow registers fn to run, on the publishing goroutine, whenever an
// event is dropped.
func (h *Hub) OnOverflow(fn func(table string)) {
	h.mu.Lock()
	h.overflow = append(h.overflow, fn)
	h.mu.Unlock()
}

func (h *Hub) Publish(e Event) {
	select {
	case <-h.ctx.Done():
		return
	default:
	}

	select {
	case h.queue <- e:
		metrics.RealtimeEvents.WithLabelValues("published").Inc()
	default:
		metrics.RealtimeEvents.WithLabelValues("dropped").Inc()
		h.log.Warn("realtime queue full, dropping event", zap.String("table", e.Table), zap.String("type", string(e.Type)))
		h.mu.RLock()
		handlers := append([]func(string){}, h.overflow...)
		h.mu.RUnlock()
		for _, fn := range handlers {
			fn(e.Table)
		}
	}
}

// Dispatch delivers e synchronously on the calling goroutine.
func (h *Hub) Dispatch(e Event) {
	h.mu.RLock()
	targets := make([]*subscriber, 0, len(h.subs[e.Table])+len(h.subs[AllTables]))
	for _, s := range h.subs[e.Table] {
		if s.filter.Match(e) {
			targets = append(targets, s)
		}
	}
	for _, s := range h.subs[AllTables] {
		if s.filter.Match(e) {
			targets = append(targets, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range targets {
		h.deliver(s, e)
	}
}

func (h *Hub) deliver(s *subscriber, e Event) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("subscriber panicked", zap.Uint64("id", s.id), zap.Any("panic", r))
		}
	}()
	s.onEvent(e)
	metrics.RealtimeEvents.WithLabelValues("delivered").Inc()
}

func (h *Hub) processEvents() {
	defer h.wg.Done()

	for {
		select {
		case e := <-h.queue:
			h.Dispatch(e)
		case <-h.ctx.Done():
			return
		}
	}
}

// Subscribers reports the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, m := range h.subs {
		n += len(m)
	}
	return n
}

func (h *Hub) Shutdown() {
	h.cancel()
	h.wg.Wait()
	h.log.Info("realtime hub shutdown complete")
}
