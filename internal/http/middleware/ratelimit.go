package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// keyFunc derives the bucket key for a request. The returned string must
// be stable for the lifetime of the request ("user:<id>", "ip:<addr>").
type keyFunc func(*gin.Context) string

// KeyByUserOrIP keys buckets by the authenticated user when the context
// carries a non-empty "userID" string, otherwise by client IP. The two
// namespaces are prefixed so they cannot collide.
func KeyByUserOrIP() keyFunc {
	return func(c *gin.Context) string {
		if v, ok := c.Get("userID"); ok {
			if id, _ := v.(string); id != "" {
				return "user:" + id
			}
		}
		return "ip:" + c.ClientIP()
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a process-local token-bucket limiter with one bucket per
// key, built on golang.org/x/time/rate. Buckets are created lazily and
// idle ones are swept during lookups so the map stays bounded. Safe for
// concurrent use. Horizontally scaled deployments need a shared limiter
// to enforce a global rate.
type RateLimiter struct {
	rps      rate.Limit
	burst    int
	keyFn    keyFunc
	mu       sync.Mutex
	visitors map[string]*visitor

	ttl      time.Duration
	cleanupN uint64
}

// NewRateLimiter builds a limiter allowing rps tokens per second with the
// given burst per key. A burst below 1 is raised to 1 so every key can
// make at least one request.
func NewRateLimiter(rps float64, burst int, keyFn keyFunc) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		keyFn:    keyFn,
		visitors: make(map[string]*visitor),
		ttl:      10 * time.Minute,
	}
}

// sweepLocked drops entries idle for at least ttl. Caller holds mu.
func (rl *RateLimiter) sweepLocked(now time.Time) {
	for k, v := range rl.visitors {
		if now.Sub(v.lastSeen) >= rl.ttl {
			delete(rl.visitors, k)
		}
	}
}

// getVisitor returns the bucket for key, creating it on first sight and
// refreshing its lastSeen stamp. Roughly every 5000 lookups the idle
// sweep runs first, so a stale bucket is evicted even when it belongs to
// the key being fetched.
func (rl *RateLimiter) getVisitor(key string) *rate.Limiter {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.cleanupN++
	if rl.cleanupN >= 5000 {
		rl.sweepLocked(now)
		rl.cleanupN = 0
	}

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

// Handler enforces the per-key limit, rejecting over-budget requests with
// a 429, a one-second Retry-After hint and the standard error envelope.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.getVisitor(rl.keyFn(c)).Allow() {
			c.Next()
			return
		}
		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": c.Writer.Header().Get("X-Request-ID"),
			"code":       "rate_limited",
			"message":    "rate limit exceeded",
		})
	}
}
