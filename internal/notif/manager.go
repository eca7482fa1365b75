package notif

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"campusnet/internal/common"
	"campusnet/internal/logging"
)

// NotificationManager fans notification events out to registered observers,
// either inline (Notify) or through a worker pool (NotifyAsync).
type NotificationManager struct {
	observers    map[string]common.Observer
	eventChannel chan common.NotificationEvent
	workerPool   int
	ctx          context.Context
	cancel       context.CancelFunc
	mu           sync.RWMutex
	wg           sync.WaitGroup
	log          *zap.Logger
}

func NewNotificationManager(workerPoolSize, bufferSize int, log *zap.Logger) *NotificationManager {
	if bufferSize < 1 {
		bufferSize = 1000
	}
	ctx, cancel := context.WithCancel(context.Background())

	nm := &NotificationManager{
		observers:    make(map[string]common.Observer),
		eventChannel: make(chan common.NotificationEvent, bufferSize),
		workerPool:   workerPoolSize,
		ctx:          ctx,
		cancel:       cancel,
		log:          logging.OrNop(log),
	}

	for i := 0; i < workerPoolSize; i++ {
		nm.wg.Add(1)
		go nm.processEvents()
	}

	return nm
}

func (nm *NotificationManager) Subscribe(observer common.Observer) {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	nm.observers[observer.Name()] = observer
	nm.log.Info("observer subscribed", zap.String("observer", observer.Name()))
}

func (nm *NotificationManager) Unsubscribe(observer common.Observer) {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	delete(nm.observers, observer.Name())
	nm.log.Info("observer unsubscribed", zap.String("observer", observer.Name()))
}

// Notify delivers the event to every observer on the calling goroutine.
// Observer failures are logged, never returned.
func (nm *NotificationManager) Notify(ctx context.Context, event common.NotificationEvent) {
	nm.mu.RLock()
	observers := make([]common.Observer, 0, len(nm.observers))
	for _, obs := range nm.observers {
		observers = append(observers, obs)
	}
	nm.mu.RUnlock()

	for _, observer := range observers {
		if err := observer.Update(ctx, event); err != nil {
			nm.log.Warn("observer update failed",
				zap.String("observer", observer.Name()),
				zap.String("type", string(event.Type)),
				zap.Error(err))
		}
	}
}

// NotifyAsync queues the event for the worker pool. With no workers the event
// is delivered inline; a full queue drops it.
func (nm *NotificationManager) NotifyAsync(event common.NotificationEvent) {
	if nm.workerPool == 0 {
		nm.Notify(nm.ctx, event)
		return
	}
	select {
	case <-nm.ctx.Done():
		return
	default:
	}
	select {
	case nm.eventChannel <- event:
	default:
		nm.log.Warn("notification channel full, dropping event", zap.String("type", string(event.Type)))
	}
}

func (nm *NotificationManager) processEvents() {
	defer nm.wg.Done()

	for {
		select {
		case event := <-nm.eventChannel:
			nm.Notify(nm.ctx, event)
		case <-nm.ctx.Done():
			return
		}
	}
}

func (nm *NotificationManager) Shutdown() {
	nm.cancel()
	nm.wg.Wait()
	nm.log.Info("notification manager shutdown complete")
}
