package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres implements Ledger with a transactional insert on processed_events.
// The ON CONFLICT clause makes check-and-claim a single atomic statement; a
// stale pending row (crashed delivery) is reclaimed once the pending TTL has
// passed.
type Postgres struct {
	Pool       *pgxpool.Pool
	PendingTTL time.Duration
}

const reserveSQL = `
INSERT INTO processed_events (event_id, status, reserved_at)
VALUES ($1, 'pending', now())
ON CONFLICT (event_id) DO UPDATE
SET status = 'pending', reserved_at = now()
WHERE processed_events.status = 'pending'
  AND processed_events.reserved_at < now() - make_interval(secs => $2)
`

const commitSQL = `
UPDATE processed_events
SET status = 'done', processed_at = now()
WHERE event_id = $1
`

// Reserve implements Ledger.
func (p Postgres) Reserve(ctx context.Context, id string) (bool, error) {
	if p.Pool == nil {
		return false, errors.New("ledger: postgres pool not configured")
	}
	ttl := p.PendingTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	tag, err := p.Pool.Exec(ctx, reserveSQL, id, ttl.Seconds())
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Commit implements Ledger.
func (p Postgres) Commit(ctx context.Context, id string) error {
	if p.Pool == nil {
		return errors.New("ledger: postgres pool not configured")
	}
	_, err := p.Pool.Exec(ctx, commitSQL, id)
	return err
}
