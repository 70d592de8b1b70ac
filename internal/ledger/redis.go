package ledger

import (
	"context"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Redis implements Ledger on top of SETNX, the same replay-guard idiom used
// for the idempotency middleware. The pending TTL bounds how long a crashed
// in-flight delivery blocks a retry; Commit extends the key to the retention
// window.
type Redis struct {
	Client     *redis.Client
	Prefix     string
	PendingTTL time.Duration
	Retention  time.Duration
}

const (
	statePending = "pending"
	stateDone    = "done"
)

func (r Redis) key(id string) string {
	prefix := r.Prefix
	if prefix == "" {
		prefix = "wh:paystack:"
	}
	return prefix + id
}

// Reserve implements Ledger via SETNX.
func (r Redis) Reserve(ctx context.Context, id string) (bool, error) {
	if r.Client == nil {
		return false, errors.New("ledger: redis client not configured")
	}
	ttl := r.PendingTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return r.Client.SetNX(ctx, r.key(id), statePending, ttl).Result()
}

// Commit implements Ledger by overwriting the reservation with the retention TTL.
func (r Redis) Commit(ctx context.Context, id string) error {
	if r.Client == nil {
		return errors.New("ledger: redis client not configured")
	}
	return r.Client.Set(ctx, r.key(id), stateDone, r.Retention).Err()
}

// Contains reports whether id has been committed. Test helper.
func (r Redis) Contains(ctx context.Context, id string) (bool, error) {
	val, err := r.Client.Get(ctx, r.key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return val == stateDone, nil
}
