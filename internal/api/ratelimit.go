package api

import (
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"campusnet/internal/config"
	"campusnet/internal/httpx"
	"campusnet/internal/logging"
)

// SendLimiter throttles message sends per viewer.
type SendLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	log      *zap.Logger
	now      func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewSendLimiter(cfg config.RateLimitConfig, log *zap.Logger) *SendLimiter {
	perMinute := cfg.MessagesPerMinute
	if perMinute <= 0 {
		perMinute = 30
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 5
	}
	return &SendLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
		log:      logging.OrNop(log),
		now:      time.Now,
	}
}

func (l *SendLimiter) allow(viewerID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, ok := l.visitors[viewerID]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[viewerID] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Prune forgets viewers idle for longer than idle.
func (l *SendLimiter) Prune(idle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-idle)
	removed := 0
	for id, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, id)
			removed++
		}
	}
	return removed
}

func (l *SendLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		viewer, err := httpx.Viewer(r, "api.send")
		if err != nil {
			httpx.WriteError(w, l.log, err)
			return
		}
		if !l.allow(viewer) {
			l.log.Warn("rate limit exceeded", zap.String("viewer", viewer), zap.String("path", r.URL.Path))
			httpx.WriteJSON(w, http.StatusTooManyRequests, httpx.ErrorResponse{Error: "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
