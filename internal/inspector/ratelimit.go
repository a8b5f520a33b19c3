package inspector

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiterSet hands out a per-key token-bucket rate.Limiter, lazily
// created on first use. Grounded on the teacher's hand-rolled
// rateLimiter (hub/internal/api/ratelimit.go), generalized to
// golang.org/x/time/rate since the domain stack already depends on it.
type limiterSet struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func newLimiterSet(requestsPerSecond float64, burst int) *limiterSet {
	return &limiterSet{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

func (ls *limiterSet) allow(key string) bool {
	ls.mu.Lock()
	l, ok := ls.limiters[key]
	if !ok {
		l = rate.NewLimiter(ls.rps, ls.burst)
		ls.limiters[key] = l
	}
	ls.mu.Unlock()
	return l.Allow()
}

// cleanupStale runs every `every` and drops each limiter whose bucket
// has refilled to burst (it then behaves like a freshly created one), so
// a long-lived server doesn't accumulate one entry per distinct caller
// forever. grace is not consulted.
func (ls *limiterSet) cleanupStale(ctx cleanupContext, every, grace time.Duration) {
	ticker := time.NewTicker(every)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				ls.mu.Lock()
				for k, l := range ls.limiters {
					if l.TokensAt(time.Now()) >= float64(ls.burst) {
						delete(ls.limiters, k)
					}
				}
				ls.mu.Unlock()
			}
		}
	}()
}

// cleanupContext is the minimal context.Context surface cleanupStale
// needs, so callers don't have to import context just for this.
type cleanupContext interface {
	Done() <-chan struct{}
}

// rateLimitMiddleware rejects a request with 429 once identity's bucket
// is empty; requests with no identity (shouldn't happen past
// authMiddleware) are limited under their remote address instead.
func rateLimitMiddleware(ls *limiterSet) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := identityFromContext(r.Context())
			key := r.RemoteAddr
			if identity != nil {
				key = identity.Subject
			}
			if !ls.allow(key) {
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
