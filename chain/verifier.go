// Package chain verifies on-chain payments on the chain rail.
//
// A payment is proven by a transaction signature. The verifier fetches the
// confirmed transaction, computes the net lamports received by the service's
// account from the pre/post balance delta, corrects for the fee-payer edge
// case, and compares the amount against the required price scaled by a
// tolerance factor.
package chain

import (
	"context"

	solana "github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	tollgate "github.com/tollgate-labs/tollgate"
)

// solDecimals is the precision of the native unit: 1 SOL = 1e9 lamports.
const solDecimals = 9

// keyPrefix namespaces chain proofs in the idempotency ledger.
const keyPrefix = "chain:"

// DefaultTolerance accepts payments down to 96% of the nominal price,
// absorbing exchange-rate and fee drift between quote time and settlement.
// A policy choice, not a protocol requirement; override with WithTolerance.
var DefaultTolerance = decimal.NewFromFloat(0.96)

// Verifier checks chain-rail payment proofs. It is read-only: ledger
// reservation belongs to the gatekeeper.
type Verifier struct {
	fetcher   TransactionFetcher
	recipient solana.PublicKey
	tolerance decimal.Decimal
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithTolerance sets the fraction of the nominal price that is still
// accepted, e.g. 0.96 to accept 96% and up.
func WithTolerance(t decimal.Decimal) Option {
	return func(v *Verifier) { v.tolerance = t }
}

// NewVerifier creates a verifier for payments to the given base58 receiving
// account.
func NewVerifier(fetcher TransactionFetcher, recipient string, opts ...Option) (*Verifier, error) {
	pk, err := solana.PublicKeyFromBase58(recipient)
	if err != nil {
		return nil, err
	}

	v := &Verifier{
		fetcher:   fetcher,
		recipient: pk,
		tolerance: DefaultTolerance,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Rail returns the chain rail.
func (v *Verifier) Rail() tollgate.Rail { return tollgate.RailChain }

// LedgerKey namespaces the signature for the idempotency ledger.
func (v *Verifier) LedgerKey(proof string) string { return keyPrefix + proof }

// Verify fetches the transaction and checks the amount received by the
// configured account against the required price.
func (v *Verifier) Verify(ctx context.Context, proof string, required decimal.Decimal) (*tollgate.VerifyResult, error) {
	sig, err := solana.SignatureFromBase58(proof)
	if err != nil {
		return nil, tollgate.NewDenialf(tollgate.DenialTransactionNotFound, "malformed transaction signature: %v", err)
	}

	record, err := v.fetcher.FetchTransaction(ctx, sig)
	if err != nil {
		return nil, err
	}
	if record == nil || len(record.PostBalances) == 0 {
		return nil, tollgate.NewDenial(tollgate.DenialTransactionNotFound,
			"transaction not found or not yet confirmed; retry once it is")
	}

	idx := -1
	for i, key := range record.AccountKeys {
		if key.Equals(v.recipient) {
			idx = i
			break
		}
	}
	if idx < 0 || idx >= len(record.PreBalances) || idx >= len(record.PostBalances) {
		return nil, tollgate.NewDenialf(tollgate.DenialWrongDestination,
			"transaction does not pay receiving account %s", v.recipient)
	}

	paid := int64(record.PostBalances[idx]) - int64(record.PreBalances[idx])

	// The fee payer is account index 0. When the receiving account paid the
	// network fee itself, the fee came out of the same balance delta and must
	// be added back or self-transfers undercount the transferred amount.
	if idx == 0 {
		paid += int64(record.Fee)
	}

	paidSol := decimal.New(paid, -solDecimals)
	minAccepted := required.Mul(v.tolerance)
	if paidSol.LessThan(minAccepted) {
		return nil, tollgate.NewDenialf(tollgate.DenialInsufficientAmount,
			"insufficient payment: received %s SOL, need at least %s SOL", paidSol, minAccepted).
			WithExtra("shortfall", minAccepted.Sub(paidSol).String())
	}

	return &tollgate.VerifyResult{Paid: paidSol}, nil
}

var _ tollgate.RailVerifier = (*Verifier)(nil)
