package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/foodgram/pkg/auth"
)

func newRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisLimiterSlidingWindow(t *testing.T) {
	limiter := NewRedisLimiter(newRedis(t), 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := limiter.Allow(ctx, "user:1")
		require.NoError(t, err)
		assert.True(t, d.Allowed, "request %d", i+1)
	}

	d, err := limiter.Allow(ctx, "user:1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)

	other, err := limiter.Allow(ctx, "user:2")
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestLocalLimiterBurst(t *testing.T) {
	limiter := NewLocalLimiter(2, time.Hour)
	ctx := context.Background()

	first, _ := limiter.Allow(ctx, "ip:10.0.0.1")
	second, _ := limiter.Allow(ctx, "ip:10.0.0.1")
	third, _ := limiter.Allow(ctx, "ip:10.0.0.1")

	assert.True(t, first.Allowed)
	assert.True(t, second.Allowed)
	assert.False(t, third.Allowed)
}

func TestMiddlewareKeysByUser(t *testing.T) {
	limiter := NewRedisLimiter(newRedis(t), 1, time.Minute)
	handler := Middleware(limiter, func(w http.ResponseWriter, status int, _ string) {
		w.WriteHeader(status)
	})(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	call := func(userID uint) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/recipes", nil)
		if userID != 0 {
			req = req.WithContext(auth.WithPrincipal(req.Context(), auth.Principal{UserID: userID}))
		}
		rec := httptest.NewRecorder()
		handler(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, call(1).Code)
	limited := call(1)
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, http.StatusOK, call(2).Code)
	assert.Equal(t, http.StatusOK, call(0).Code)
}
