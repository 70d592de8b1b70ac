// Package ratelimit throttles the public payment-initiation endpoint with a
// sliding window counted in a Redis sorted set.
package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Result is the outcome of a single rate limit check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter counts requests per key as timestamp-scored members of a sorted
// set. Members are unique per request so two requests landing in the same
// nanosecond still count twice. A missing client fails open.
type Limiter struct {
	Client *redis.Client
	Prefix string
}

const defaultPrefix = "rl:payments:"

// Allow records one request for key and reports whether it fits inside the
// window. Trim, insert and count run in one MULTI/EXEC so concurrent checks
// cannot undercount each other.
func (l Limiter) Allow(ctx context.Context, key string, window time.Duration, max int) (Result, error) {
	now := time.Now()
	res := Result{Allowed: true, Remaining: max, ResetAt: now.Add(window)}
	if l.Client == nil || max <= 0 || window <= 0 {
		return res, nil
	}

	prefix := l.Prefix
	if prefix == "" {
		prefix = defaultPrefix
	}
	setKey := prefix + key
	windowStart := strconv.FormatInt(now.Add(-window).UnixNano(), 10)

	var count *redis.IntCmd
	_, err := l.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, setKey, "0", windowStart)
		pipe.ZAdd(ctx, setKey, redis.Z{Score: float64(now.UnixNano()), Member: uuid.NewString()})
		count = pipe.ZCard(ctx, setKey)
		pipe.Expire(ctx, setKey, window)
		return nil
	})
	if err != nil {
		res.Allowed = false
		res.Remaining = 0
		return res, err
	}

	seen := int(count.Val())
	res.Allowed = seen <= max
	res.Remaining = max - seen
	if res.Remaining < 0 {
		res.Remaining = 0
	}
	return res, nil
}
