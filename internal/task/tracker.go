// Package task runs work that must outlive the request that started it, such
// as attachment uploads and document verification.
package task

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"campusnet/internal/logging"
)

// Tracker runs detached jobs and remembers which keys are still in progress.
type Tracker struct {
	mu     sync.Mutex
	active map[string]int
	wg     sync.WaitGroup
	log    *zap.Logger
}

func NewTracker(log *zap.Logger) *Tracker {
	return &Tracker{
		active: make(map[string]int),
		log:    logging.OrNop(log),
	}
}

// Go starts fn on its own goroutine. fn keeps ctx's values but not its
// cancellation, so a client that disconnects does not abort the job. The
// returned channel receives fn's result, after the key stops counting as in
// progress, and is then closed.
func (t *Tracker) Go(ctx context.Context, key string, fn func(ctx context.Context) error) <-chan error {
	done := make(chan error, 1)
	detached := context.WithoutCancel(ctx)

	t.mu.Lock()
	t.active[key]++
	t.mu.Unlock()
	t.wg.Add(1)

	go func() {
		defer t.wg.Done()

		err := t.run(detached, fn)
		t.finish(key)
		if err != nil {
			t.log.Warn("task failed", zap.String("task", key), zap.Error(err))
		}
		done <- err
		close(done)
	}()
	return done
}

func (t *Tracker) run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return fn(ctx)
}

func (t *Tracker) finish(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active[key]--; t.active[key] <= 0 {
		delete(t.active, key)
	}
}

// InProgress reports whether any job started under key is still running.
func (t *Tracker) InProgress(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active[key] > 0
}

// Wait blocks until every started job has finished.
func (t *Tracker) Wait() {
	t.wg.Wait()
}
