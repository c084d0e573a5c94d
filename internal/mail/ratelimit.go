package mail

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/patrickmn/go-cache"
)

const (
	rateLimitWindow = 15 * time.Minute
	rateLimitMax    = 5
)

type rateEntry struct {
	count   int
	resetAt time.Time
}

// RateLimiter: IP başına 15 dakikada en fazla 5 kod isteği. Aşımda 429
// ve retryAfter saniyesi döner.
type RateLimiter struct {
	// sayaç güncellemesi get-incr-set üçlüsü, mu olmadan eşzamanlı
	// isteklerde artışlar kaybolur
	mu    sync.Mutex
	cache *cache.Cache
	now   func() time.Time
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		cache: cache.New(rateLimitWindow, 2*rateLimitWindow),
		now:   time.Now,
	}
}

func NewRateLimiterWithClock(now func() time.Time) *RateLimiter {
	rl := NewRateLimiter()
	rl.now = now
	return rl
}

func (rl *RateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()
		now := rl.now()

		rl.mu.Lock()
		var entry *rateEntry
		if v, ok := rl.cache.Get(ip); ok {
			entry = v.(*rateEntry)
			if now.After(entry.resetAt) {
				entry = nil
			}
		}
		if entry == nil {
			entry = &rateEntry{resetAt: now.Add(rateLimitWindow)}
		}

		entry.count++
		rl.cache.Set(ip, entry, cache.DefaultExpiration)
		count, resetAt := entry.count, entry.resetAt
		rl.mu.Unlock()

		if count > rateLimitMax {
			retryAfter := int(math.Ceil(resetAt.Sub(now).Seconds()))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": fmt.Sprintf("Çok fazla istek. %d dakika sonra tekrar deneyin.",
					int(math.Ceil(float64(retryAfter)/60))),
				"retryAfter": retryAfter,
			})
		}

		return c.Next()
	}
}
