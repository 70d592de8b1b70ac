package ratelimit_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/chezvous/backend-booking/internal/ratelimit"
)

func newLimiter(t *testing.T) (ratelimit.Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return ratelimit.Limiter{Client: client, Prefix: "rl:"}, mr
}

func TestLimiterAllowWithinWindow(t *testing.T) {
	limiter, _ := newLimiter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := limiter.Allow(ctx, "1.2.3.4", time.Minute, 3)
		require.NoError(t, err)
		require.True(t, res.Allowed, "request %d", i)
	}

	res, err := limiter.Allow(ctx, "1.2.3.4", time.Minute, 3)
	require.NoError(t, err)
	require.False(t, res.Allowed)
	require.Equal(t, 0, res.Remaining)

	// another key has its own window
	res, err = limiter.Allow(ctx, "5.6.7.8", time.Minute, 3)
	require.NoError(t, err)
	require.True(t, res.Allowed)
}

func TestLimiterNoClientFailsOpen(t *testing.T) {
	t.Parallel()

	res, err := ratelimit.Limiter{}.Allow(context.Background(), "k", time.Minute, 3)
	require.NoError(t, err)
	require.True(t, res.Allowed)
	require.Equal(t, 3, res.Remaining)
}

func TestMiddlewareHeadersAnd429(t *testing.T) {
	limiter, _ := newLimiter(t)
	h := ratelimit.Handler{
		Limiter: limiter,
		Config: ratelimit.Config{
			Key:    func(r *http.Request) string { return r.RemoteAddr },
			Window: time.Minute,
			Max:    2,
		},
	}
	next := h.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/initialize", nil)
		req.RemoteAddr = "9.9.9.9:1234"
		rr := httptest.NewRecorder()
		next.ServeHTTP(rr, req)
		return rr
	}

	first := do()
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	do()
	third := do()
	require.Equal(t, http.StatusTooManyRequests, third.Code)
	require.NotEmpty(t, third.Header().Get("Retry-After"))
}

func TestMiddlewareFailsOpenOnStoreError(t *testing.T) {
	limiter, mr := newLimiter(t)
	mr.Close()

	var sawErr error
	h := ratelimit.Handler{
		Limiter: limiter,
		Config: ratelimit.Config{
			Key:    func(r *http.Request) string { return "k" },
			Window: time.Minute,
			Max:    1,
		},
		OnError: func(err error) { sawErr = err },
	}
	next := h.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	next.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Error(t, sawErr)
}
