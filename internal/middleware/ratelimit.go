package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/rayen43500/Study-Planner-Smart-Learning-Analyzer/internal/logger"
)

// RateLimiter decides whether the caller identified by key may proceed.
type RateLimiter interface {
	Allow(ctx context.Context, key string) bool
}

// InMemoryRateLimiter keeps one token bucket per key. Suitable for a single
// instance and as the fallback when redis is unreachable.
type InMemoryRateLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*bucket
	maxAge   time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewInMemoryRateLimiter allows perMinute requests per key per minute with a
// burst of the same size.
func NewInMemoryRateLimiter(perMinute int) *InMemoryRateLimiter {
	l := &InMemoryRateLimiter{
		limit:    rate.Limit(float64(perMinute) / 60),
		burst:    perMinute,
		limiters: make(map[string]*bucket),
		maxAge:   10 * time.Minute,
		stop:     make(chan struct{}),
	}
	go l.cleanup(5 * time.Minute)
	return l
}

func (l *InMemoryRateLimiter) Allow(_ context.Context, key string) bool {
	now := time.Now()

	l.mu.Lock()
	b, ok := l.limiters[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = b
	}
	b.lastSeen = now
	l.mu.Unlock()

	return b.limiter.AllowN(now, 1)
}

func (l *InMemoryRateLimiter) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-l.maxAge)
			l.mu.Lock()
			for key, b := range l.limiters {
				if b.lastSeen.Before(cutoff) {
					delete(l.limiters, key)
				}
			}
			l.mu.Unlock()
		case <-l.stop:
			return
		}
	}
}

// Stop ends the cleanup goroutine.
func (l *InMemoryRateLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// RedisRateLimiter enforces a fixed one-minute window shared by every
// instance. Redis failures are delegated to fallback.
type RedisRateLimiter struct {
	redis     *redis.Client
	perMinute int
	fallback  RateLimiter
	now       func() time.Time
}

func NewRedisRateLimiter(client *redis.Client, perMinute int, fallback RateLimiter) *RedisRateLimiter {
	return &RedisRateLimiter{
		redis:     client,
		perMinute: perMinute,
		fallback:  fallback,
		now:       time.Now,
	}
}

func (l *RedisRateLimiter) Allow(ctx context.Context, key string) bool {
	window := l.now().UTC().Truncate(time.Minute).Unix()
	redisKey := fmt.Sprintf("ratelimit:%s:%d", key, window)

	pipe := l.redis.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, 2*time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		slog.WarnContext(ctx, "redis rate limiter unavailable, using fallback", "error", err)
		if l.fallback == nil {
			return true
		}
		return l.fallback.Allow(ctx, key)
	}

	return incr.Val() <= int64(l.perMinute)
}

// RateLimit rejects requests over the limiter's budget. Authenticated
// requests are keyed by user, the rest by client address.
func RateLimit(limiter RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := rateLimitKey(r)
			if !limiter.Allow(r.Context(), key) {
				logger.Ctx(r.Context()).Warn("rate limit exceeded", "key", key, "path", r.URL.Path)
				writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again later.", r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func rateLimitKey(r *http.Request) string {
	if userID := GetUserID(r.Context()); userID != uuid.Nil {
		return "user:" + userID.String()
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
