package ratelimit

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/tair/foodgram/pkg/auth"
	"github.com/tair/foodgram/pkg/logger"
)

// Decision is the outcome of a limit check.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter decides whether the caller identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
	Limit() int
}

// RedisLimiter implements a sliding window on a Redis sorted set
type RedisLimiter struct {
	redis       *redis.Client
	maxRequests int
	window      time.Duration
}

// NewRedisLimiter creates a new sliding-window limiter
func NewRedisLimiter(client *redis.Client, maxRequests int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{redis: client, maxRequests: maxRequests, window: window}
}

func (rl *RedisLimiter) Limit() int { return rl.maxRequests }

// Allow records the request and reports whether it fits in the window
func (rl *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	redisKey := "ratelimit:" + key
	now := time.Now()
	windowStart := now.Add(-rl.window)

	pipe := rl.redis.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	countCmd := pipe.ZCard(ctx, redisKey)
	pipe.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: now.UnixNano(),
	})
	pipe.Expire(ctx, redisKey, rl.window+time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("failed to check rate limit: %w", err)
	}

	count := int(countCmd.Val())
	remaining := rl.maxRequests - count - 1
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   count < rl.maxRequests,
		Remaining: remaining,
		ResetAt:   now.Add(rl.window),
	}, nil
}

// LocalLimiter is a per-process token bucket per key. It is used when Redis is not configured.
type LocalLimiter struct {
	mu          sync.Mutex
	limiters    map[string]*rate.Limiter
	maxRequests int
	window      time.Duration
}

// NewLocalLimiter allows maxRequests per window per key, with a burst of maxRequests.
func NewLocalLimiter(maxRequests int, window time.Duration) *LocalLimiter {
	return &LocalLimiter{
		limiters:    make(map[string]*rate.Limiter),
		maxRequests: maxRequests,
		window:      window,
	}
}

func (l *LocalLimiter) Limit() int { return l.maxRequests }

func (l *LocalLimiter) Allow(_ context.Context, key string) (Decision, error) {
	l.mu.Lock()
	lim, ok := l.limiters[key]
	if !ok {
		every := rate.Every(l.window / time.Duration(l.maxRequests))
		lim = rate.NewLimiter(every, l.maxRequests)
		l.limiters[key] = lim
	}
	l.mu.Unlock()

	allowed := lim.Allow()
	return Decision{
		Allowed:   allowed,
		Remaining: int(lim.Tokens()),
		ResetAt:   time.Now().Add(l.window),
	}, nil
}

// Responder writes the rejection response.
type Responder func(w http.ResponseWriter, status int, message string)

// Middleware throttles by authenticated user, or by client IP for anonymous callers
func Middleware(limiter Limiter, respond Responder) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)

			decision, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.Error(r.Context()).Err(err).Str("identifier", key).Msg("Rate limiter error")
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

			if !decision.Allowed {
				logger.Warn(r.Context()).
					Str("identifier", key).
					Int("limit", limiter.Limit()).
					Msg("Rate limit exceeded")
				w.Header().Set("Retry-After", strconv.Itoa(int(time.Until(decision.ResetAt).Seconds())))
				respond(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		}
	}
}

func clientKey(r *http.Request) string {
	if id := auth.ViewerID(r.Context()); id != 0 {
		return fmt.Sprintf("user:%d", id)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
