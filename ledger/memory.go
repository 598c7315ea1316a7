package ledger

import (
	"context"
	"sync"
	"time"
)

// Memory provides an in-memory implementation of Ledger.
//
// Suitable for single-instance deployments and tests where replay state
// doesn't need to be shared across processes. Expired entries are cleaned up
// lazily on writes.
type Memory struct {
	mu     sync.Mutex
	expiry map[string]time.Time
}

// NewMemory creates an empty in-memory ledger.
func NewMemory() *Memory {
	return &Memory{expiry: make(map[string]time.Time)}
}

// Has reports whether the key is present and unexpired.
func (l *Memory) Has(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	expiry, ok := l.expiry[key]
	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		delete(l.expiry, key)
		return false, nil
	}
	return true, nil
}

// Reserve records the key if absent or expired.
func (l *Memory) Reserve(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if expiry, ok := l.expiry[key]; ok && now.Before(expiry) {
		return false, nil
	}
	l.expiry[key] = now.Add(ttl)

	l.cleanupExpiredLocked(now)
	return true, nil
}

// cleanupExpiredLocked removes expired entries. Must be called with lock held.
func (l *Memory) cleanupExpiredLocked(now time.Time) {
	for key, expiry := range l.expiry {
		if now.After(expiry) {
			delete(l.expiry, key)
		}
	}
}

var _ Ledger = (*Memory)(nil)
