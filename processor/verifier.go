// Package processor verifies processor-rail payments: hosted checkout
// sessions proven by an opaque session id.
//
// The verifier is read-only. Sessions may legitimately be inspected several
// times before the gatekeeper consumes them via the idempotency ledger.
package processor

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"

	tollgate "github.com/tollgate-labs/tollgate"
)

// keyPrefix namespaces processor proofs in the idempotency ledger, so a
// session id can never collide with a chain signature of the same value.
const keyPrefix = "processor:"

// SessionRetriever retrieves a checkout session by id.
type SessionRetriever interface {
	Get(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// Verifier checks processor-rail payment proofs.
type Verifier struct {
	sessions SessionRetriever
}

// NewVerifier creates a verifier talking to the Stripe API with the given key.
func NewVerifier(apiKey string) *Verifier {
	return NewVerifierWithRetriever(&session.Client{
		B:   stripe.GetBackend(stripe.APIBackend),
		Key: apiKey,
	})
}

// NewVerifierWithRetriever creates a verifier on a custom retriever.
func NewVerifierWithRetriever(r SessionRetriever) *Verifier {
	return &Verifier{sessions: r}
}

// Rail returns the processor rail.
func (v *Verifier) Rail() tollgate.Rail { return tollgate.RailProcessor }

// LedgerKey namespaces the session id for the idempotency ledger.
func (v *Verifier) LedgerKey(proof string) string { return keyPrefix + proof }

// Verify retrieves the session and confirms completed payment. The amount was
// settled in the processor's reference currency, so no native amount is
// reported.
func (v *Verifier) Verify(ctx context.Context, proof string, _ decimal.Decimal) (*tollgate.VerifyResult, error) {
	s, err := v.sessions.Get(proof, nil)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) &&
			(stripeErr.Code == stripe.ErrorCodeResourceMissing || stripeErr.HTTPStatusCode == http.StatusNotFound) {
			return nil, tollgate.NewDenialf(tollgate.DenialInvalidSession, "unknown checkout session %q", proof)
		}
		return nil, fmt.Errorf("processor: retrieve session: %w", err)
	}

	if s.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return nil, tollgate.NewDenialf(tollgate.DenialProcessorIncomplete,
			"checkout session is not paid (status %q)", s.PaymentStatus)
	}

	return &tollgate.VerifyResult{}, nil
}

var _ tollgate.RailVerifier = (*Verifier)(nil)
