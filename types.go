package tollgate

import (
	"github.com/shopspring/decimal"
)

// Rail identifies which payment mechanism proved a payment.
type Rail string

const (
	// RailChain is an on-chain transfer proven by a transaction signature.
	RailChain Rail = "chain"
	// RailProcessor is a hosted checkout session proven by a session id.
	RailProcessor Rail = "processor"
	// RailBypass is the developer bypass, honored only outside production.
	RailBypass Rail = "bypass"
)

// Request carries the payment proof fields extracted from an inbound request.
// At most one of Signature and SessionID should be set; if both are present
// the chain proof wins.
type Request struct {
	// Signature is a base58 transaction signature on the chain rail.
	Signature string `json:"signature,omitempty"`

	// SessionID is an opaque checkout session reference on the processor rail.
	SessionID string `json:"sessionId,omitempty"`

	// BypassToken short-circuits verification in non-production environments.
	BypassToken string `json:"bypassToken,omitempty"`

	// RequiredPrice overrides the gatekeeper's configured price for this call,
	// in display units of the chain's native asset. Zero means use the default.
	RequiredPrice decimal.Decimal `json:"-"`
}

// Proof returns the proof value for the rail the request selects,
// or an empty string when no proof is supplied.
func (r Request) Proof() (Rail, string) {
	if r.Signature != "" {
		return RailChain, r.Signature
	}
	if r.SessionID != "" {
		return RailProcessor, r.SessionID
	}
	return "", ""
}

// Challenge describes exactly how to pay. It is returned on a 402 denial so
// that an autonomous caller can construct and submit a payment without human
// interaction.
type Challenge struct {
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Address     string `json:"address"`
	Network     string `json:"network"`
	Description string `json:"description,omitempty"`
}

// Verdict is the result of a gatekeeping call.
//
// When Authorized is true, Rail names the mechanism that proved payment,
// PaidAmount holds the verified on-chain amount (zero on the processor and
// bypass rails), and Operations is the entitlement granted. When Authorized
// is false, Denial carries the machine-readable reason.
type Verdict struct {
	Authorized bool            `json:"authorized"`
	Rail       Rail            `json:"rail,omitempty"`
	PaidAmount decimal.Decimal `json:"paidAmount,omitempty"`
	Operations int             `json:"operations,omitempty"`
	Denial     *DenialError    `json:"denial,omitempty"`
}

// VerifyResult is returned by a rail verifier on success.
type VerifyResult struct {
	// Paid is the verified amount in display units of the native asset.
	// Zero on rails that settle in a reference currency (processor).
	Paid decimal.Decimal
}
