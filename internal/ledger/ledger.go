// Package ledger tracks which gateway events have already been acted upon so
// webhook retries never trigger duplicate customer-facing notifications.
package ledger

import (
	"context"
	"sync"
	"time"
)

// Ledger records processed event identifiers. Reserve and Commit split the
// lifecycle: Reserve atomically claims an id before notification dispatch
// (suppressing concurrent retries of the same event), Commit marks it durably
// processed afterwards. A reservation that is never committed expires after
// the pending TTL so a crashed delivery can be retried by the gateway.
type Ledger interface {
	// Reserve claims id for processing. Returns false when the id is already
	// reserved or committed; the check and the claim are a single atomic
	// operation with respect to concurrent callers.
	Reserve(ctx context.Context, id string) (bool, error)
	// Commit marks id as processed for the retention window.
	Commit(ctx context.Context, id string) error
}

// Memory is a mutex-guarded in-process ledger for tests and single-node runs.
type Memory struct {
	PendingTTL time.Duration

	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	committed  bool
	reservedAt time.Time
}

// NewMemory constructs an in-process ledger.
func NewMemory(pendingTTL time.Duration) *Memory {
	if pendingTTL <= 0 {
		pendingTTL = 15 * time.Minute
	}
	return &Memory{PendingTTL: pendingTTL, entries: make(map[string]memoryEntry)}
}

// Reserve implements Ledger.
func (m *Memory) Reserve(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[id]
	if ok {
		if entry.committed || time.Since(entry.reservedAt) < m.PendingTTL {
			return false, nil
		}
		// stale reservation, reclaim
	}
	m.entries[id] = memoryEntry{reservedAt: time.Now()}
	return true, nil
}

// Commit implements Ledger.
func (m *Memory) Commit(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[id] = memoryEntry{committed: true, reservedAt: time.Now()}
	return nil
}

// Contains reports whether id has been committed. Test helper.
func (m *Memory) Contains(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[id]
	return ok && entry.committed
}
