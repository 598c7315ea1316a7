// Package ledger provides replay protection for payment proofs.
//
// A proof identifier may authorize at most one successful gatekeeping call.
// The guarantee rests entirely on Reserve's atomic set-if-absent semantics:
// handlers may run in separate processes sharing only the external store, so
// no in-process locking is sufficient. For distributed deployments use the
// Redis-backed implementation; the in-memory one is for single-instance
// setups and tests.
package ledger

import (
	"context"
	"time"
)

// Ledger records consumed payment proofs with expiry.
// Implementations must be safe for concurrent use.
type Ledger interface {
	// Has reports whether the key has already been reserved.
	Has(ctx context.Context, key string) (bool, error)

	// Reserve atomically records the key if absent. It returns true only if
	// the key was not already present (the reservation succeeded), false if
	// another call got there first. Errors mean the store is unreachable and
	// the caller must fail closed.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
}
