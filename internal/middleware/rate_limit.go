package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// limiterIdle - сколько хранится неиспользуемый лимитер
const limiterIdle = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter хранит отдельный token bucket на каждый ключ (принципал или IP)
type RateLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	visitors map[string]*visitor
	now      func() time.Time
}

// NewRateLimiter разрешает perMinute запросов в минуту на ключ с пиком до burst
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limit:    rate.Limit(float64(perMinute) / 60),
		burst:    burst,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

// Allow сообщает, можно ли пропустить запрос по каждому из ключей.
// Токен списывается только если все ключи пропускают запрос.
func (l *RateLimiter) Allow(keys ...string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for k, v := range l.visitors {
		if now.Sub(v.lastSeen) > limiterIdle {
			delete(l.visitors, k)
		}
	}

	reserved := make([]*rate.Reservation, 0, len(keys))
	for _, key := range keys {
		v, ok := l.visitors[key]
		if !ok {
			v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
			l.visitors[key] = v
		}
		v.lastSeen = now

		r := v.limiter.ReserveN(now, 1)
		if !r.OK() || r.DelayFrom(now) > 0 {
			// Возвращаем токены, списанные с предыдущих ключей
			r.CancelAt(now)
			for _, prev := range reserved {
				prev.CancelAt(now)
			}
			return false
		}
		reserved = append(reserved, r)
	}
	return true
}

// Middleware ограничивает запросы одновременно по принципалу и по IP клиента:
// новая анонимная сессия не обнуляет лимит. Должен стоять после AuthMiddleware.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		keys := []string{"ip:" + c.ClientIP()}
		if principal, ok := PrincipalFrom(c); ok {
			keys = append(keys, "principal:"+string(principal))
		}

		if !l.Allow(keys...) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many attempts. Please wait a moment and try again."})
			return
		}
		c.Next()
	}
}
