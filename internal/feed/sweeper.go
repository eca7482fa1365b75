package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/adhocore/gronx"
	"go.uber.org/zap"

	"campusnet/internal/logging"
)

// StorySweeper deletes expired stories on a cron schedule.
type StorySweeper struct {
	stories Stories
	cron    string
	now     func() time.Time
	log     *zap.Logger

	mu      sync.Mutex
	running bool
}

func NewStorySweeper(stories Stories, cron string, log *zap.Logger) (*StorySweeper, error) {
	if !gronx.New().IsValid(cron) {
		return nil, fmt.Errorf("invalid sweep schedule %q", cron)
	}
	return &StorySweeper{
		stories: stories,
		cron:    cron,
		now:     time.Now,
		log:     logging.OrNop(log),
	}, nil
}

// SetClock replaces the time source used to decide expiry.
func (s *StorySweeper) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Run blocks until ctx is cancelled, sweeping at every tick of the schedule.
func (s *StorySweeper) Run(ctx context.Context) {
	s.log.Info("story sweeper started", zap.String("cron", s.cron))
	for {
		next, err := gronx.NextTickAfter(s.cron, s.now(), false)
		if err != nil {
			s.log.Error("next sweep tick failed", zap.String("cron", s.cron), zap.Error(err))
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		select {
		case <-time.After(time.Until(next)):
			s.runJob(ctx)
		case <-ctx.Done():
			s.log.Info("story sweeper stopped")
			return
		}
	}
}

// runJob skips the tick when a previous sweep is still going.
func (s *StorySweeper) runJob(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	if _, err := s.Sweep(ctx); err != nil {
		s.log.Error("story sweep failed", zap.Error(err))
	}
}

// Sweep deletes every story that has expired and reports how many went.
// A failed delete is logged and the sweep moves on.
func (s *StorySweeper) Sweep(ctx context.Context) (int, error) {
	expired, err := s.stories.ExpiredStories(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to find expired stories: %w", err)
	}

	deleted := 0
	for _, story := range expired {
		if err := s.stories.DeleteStory(ctx, story); err != nil {
			s.log.Warn("failed to delete expired story", zap.String("story_id", story.ID), zap.Error(err))
			continue
		}
		deleted++
	}
	if deleted > 0 {
		s.log.Info("expired stories deleted", zap.Int("count", deleted))
	}
	return deleted, nil
}
