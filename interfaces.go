package tollgate

import (
	"context"

	"github.com/shopspring/decimal"
)

// RailVerifier is implemented by per-rail payment verifiers.
//
// Verifiers are read-only: they consult the external chain or processor and
// report whether the proof covers the required amount. All mutation (the
// idempotency reservation) is owned by the Gatekeeper, so a verifier may be
// called multiple times for the same proof by legitimate retries.
type RailVerifier interface {
	// Rail returns the rail this verifier handles.
	Rail() Rail

	// LedgerKey returns the namespaced idempotency key for a proof, e.g.
	// "chain:<signature>". Namespacing prevents collisions between rails
	// that could share a literal proof value.
	LedgerKey(proof string) string

	// Verify checks the proof against the external system.
	//
	// A *DenialError return means the proof was inspected and rejected
	// (not found, wrong destination, underpaid, unpaid session). Any other
	// error is a transport failure the gatekeeper surfaces as an internal
	// verification failure.
	Verify(ctx context.Context, proof string, required decimal.Decimal) (*VerifyResult, error)
}

// EntitlementResolver maps a verified paid amount to a number of granted
// operations. A zero return means no entitlement tier matched.
type EntitlementResolver interface {
	Resolve(ctx context.Context, paid decimal.Decimal) int
}
