package http

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiterCleanupInterval bounds how long idle per-session limiters are
// retained before the map is reset.
const limiterCleanupInterval = time.Hour

// sessionLimiter applies a token bucket per conversation session. When
// a request carries no session ID the client IP keys the bucket instead,
// so anonymous probes cannot bypass the limit.
type sessionLimiter struct {
	mu          sync.Mutex
	limiters    map[string]*rate.Limiter
	limit       rate.Limit
	burst       int
	lastCleanup time.Time
}

func newSessionLimiter(perSecond float64) *sessionLimiter {
	if perSecond <= 0 {
		return nil
	}
	burst := int(perSecond * 2)
	if burst < 1 {
		burst = 1
	}
	return &sessionLimiter{
		limiters:    make(map[string]*rate.Limiter),
		limit:       rate.Limit(perSecond),
		burst:       burst,
		lastCleanup: time.Now(),
	}
}

// allow reports whether the request identified by session (or clientIP
// as fallback) is within its budget. A nil limiter allows everything.
func (l *sessionLimiter) allow(session, clientIP string) bool {
	if l == nil {
		return true
	}

	key := session
	if key == "" {
		key = clientIP
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Sessions are short-lived; dropping all buckets periodically keeps
	// the map from growing without bound.
	if time.Since(l.lastCleanup) > limiterCleanupInterval {
		l.limiters = make(map[string]*rate.Limiter)
		l.lastCleanup = time.Now()
	}

	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = limiter
	}

	return limiter.Allow()
}
