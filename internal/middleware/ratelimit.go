package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// LoginRateLimit limits login attempts per label, or per client IP when the
// body carries no label. Redis enforces the cap across instances; when Redis
// is absent or unreachable a per-process token bucket takes over instead of
// letting attempts through unchecked.
func LoginRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 5
	}
	local := newLocalLimiter(maxPerMin)
	return func(c *fiber.Ctx) error {
		var req struct {
			Label string `json:"label"`
		}
		_ = c.BodyParser(&req)
		key := strings.TrimSpace(req.Label)
		if key == "" {
			key = c.IP()
		}

		if cache == nil {
			return local.check(c, key)
		}

		redisKey := "rl:login:" + key
		cnt, err := cache.Incr(c.UserContext(), redisKey).Result()
		if err != nil {
			return local.check(c, key)
		}
		if cnt == 1 {
			cache.Expire(c.UserContext(), redisKey, time.Minute)
		}
		if cnt > int64(maxPerMin) {
			return fiber.NewError(http.StatusTooManyRequests, "too many login attempts, try again later")
		}
		return c.Next()
	}
}

// An entry idle for a full minute has refilled its burst, so sweeping it
// loses no limiter state.
const (
	localLimiterMaxKeys = 4096
	localLimiterIdleAge = time.Minute
)

type localLimiter struct {
	mu      sync.Mutex
	perKey  map[string]*limiterEntry
	limit   rate.Limit
	burst   int
	maxKeys int
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLocalLimiter(maxPerMin int) *localLimiter {
	return &localLimiter{
		perKey:  make(map[string]*limiterEntry),
		limit:   rate.Every(time.Minute / time.Duration(maxPerMin)),
		burst:   maxPerMin,
		maxKeys: localLimiterMaxKeys,
	}
}

func (l *localLimiter) allow(key string) bool {
	now := time.Now()
	l.mu.Lock()
	entry, ok := l.perKey[key]
	if !ok {
		if len(l.perKey) >= l.maxKeys {
			l.evictIdle(now)
		}
		entry = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.perKey[key] = entry
	}
	entry.lastSeen = now
	limiter := entry.limiter
	l.mu.Unlock()
	return limiter.Allow()
}

func (l *localLimiter) evictIdle(now time.Time) {
	for key, entry := range l.perKey {
		if now.Sub(entry.lastSeen) >= localLimiterIdleAge {
			delete(l.perKey, key)
		}
	}
}

func (l *localLimiter) check(c *fiber.Ctx, key string) error {
	if !l.allow(key) {
		return fiber.NewError(http.StatusTooManyRequests, "too many login attempts, try again later")
	}
	return c.Next()
}
