package tollgate

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tollgate-labs/tollgate/ledger"
	"github.com/tollgate-labs/tollgate/logger"
	"github.com/tollgate-labs/tollgate/metrics"
)

// Gatekeeper is the single entry point every paid endpoint calls: given the
// proof fields of an inbound request it picks a rail, runs the matching
// verifier, consults and updates the idempotency ledger, and returns a
// uniform verdict.
//
// The gatekeeper is stateless per call; all replay state lives in the
// external ledger, so correctness holds across concurrent processes sharing
// the same store. No retries are performed internally: transient failures
// surface as denials and the caller decides whether to resubmit.
type Gatekeeper struct {
	cfg       Config
	ledger    ledger.Ledger
	verifiers map[Rail]RailVerifier
	resolver  EntitlementResolver
	log       logger.Logger
	rec       metrics.Recorder
}

// Option configures a Gatekeeper.
type Option func(*Gatekeeper)

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(l logger.Logger) Option {
	return func(g *Gatekeeper) { g.log = l }
}

// WithMetrics sets the metrics recorder. Defaults to a no-op recorder.
func WithMetrics(r metrics.Recorder) Option {
	return func(g *Gatekeeper) { g.rec = r }
}

// WithEntitlements sets the resolver that maps verified chain payments to
// granted operations. Without one, every authorized call grants a single
// operation.
func WithEntitlements(r EntitlementResolver) Option {
	return func(g *Gatekeeper) { g.resolver = r }
}

// NewGatekeeper creates a gatekeeper backed by the given replay ledger.
// Rail verifiers are attached afterwards with RegisterRail.
func NewGatekeeper(cfg Config, led ledger.Ledger, opts ...Option) (*Gatekeeper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if led == nil {
		return nil, errors.New("ledger is required")
	}

	g := &Gatekeeper{
		cfg:       cfg,
		ledger:    led,
		verifiers: make(map[Rail]RailVerifier),
		log:       logger.NoopLogger{},
		rec:       metrics.Noop{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// RegisterRail attaches a verifier for its rail. Adding another rail is a
// registration, not a control-flow change. Returns the gatekeeper for
// chaining.
func (g *Gatekeeper) RegisterRail(v RailVerifier) *Gatekeeper {
	g.verifiers[v.Rail()] = v
	return g
}

// Challenge builds the payment instructions for the given required amount.
func (g *Gatekeeper) Challenge(required decimal.Decimal) *Challenge {
	return &Challenge{
		Amount:      required.String(),
		Currency:    g.cfg.Currency,
		Address:     g.cfg.ReceivingAddress,
		Network:     g.cfg.Network,
		Description: g.cfg.Description,
	}
}

// Authorize decides whether the request has proven payment.
//
// The ledger is consulted before any external verification to avoid
// redundant network calls on known-replayed proofs, and written only after
// verification succeeds. A verification success that never reaches the
// ledger write (process crash) is an accepted false-negative: the caller
// retries with the same proof.
func (g *Gatekeeper) Authorize(ctx context.Context, req Request) Verdict {
	start := time.Now()
	verdict := g.authorize(ctx, req)

	railLabel := string(verdict.Rail)
	if railLabel == "" {
		if r, p := req.Proof(); p != "" {
			railLabel = string(r)
		} else {
			railLabel = "none"
		}
	}

	if verdict.Authorized {
		g.rec.RecordAuthorize(railLabel, "authorized", time.Since(start))
		g.log.Info("payment authorized", map[string]any{
			"rail":       railLabel,
			"paidAmount": verdict.PaidAmount.String(),
			"operations": verdict.Operations,
		})
	} else {
		g.rec.RecordAuthorize(railLabel, string(verdict.Denial.Kind), time.Since(start))
		g.log.Warn("payment denied", map[string]any{
			"rail":   railLabel,
			"kind":   string(verdict.Denial.Kind),
			"status": verdict.Denial.HTTPStatus,
		})
	}
	return verdict
}

func (g *Gatekeeper) authorize(ctx context.Context, req Request) Verdict {
	required := req.RequiredPrice
	if required.Sign() <= 0 {
		required = g.cfg.Price
	}

	// Bypass is checked first and never touches the ledger or a verifier.
	// Outside non-production environments it is ignored entirely, so a
	// production request carrying only a bypass token gets the same 402
	// challenge as one with no proof at all.
	if req.BypassToken != "" && g.cfg.Environment != EnvProduction && g.bypassAllowed(req.BypassToken) {
		return Verdict{Authorized: true, Rail: RailBypass, Operations: 1}
	}

	rail, proof := req.Proof()
	if proof == "" {
		denial := NewDenial(DenialNoProofSupplied, "payment required: supply a transaction signature or a checkout session id")
		denial.Challenge = g.Challenge(required)
		return deny(denial)
	}

	verifier, ok := g.verifiers[rail]
	if !ok {
		return deny(NewDenialf(DenialUnsupportedRail, "no verifier registered for rail %q", rail))
	}

	key := verifier.LedgerKey(proof)

	used, err := g.ledger.Has(ctx, key)
	if err != nil {
		// Fail closed: an unreachable ledger must never allow duplicate spend.
		return deny(NewDenial(DenialLedgerUnavailable, "replay ledger unavailable"))
	}
	if used {
		return deny(NewDenial(DenialAlreadyUsed, "payment proof has already been used"))
	}

	result, err := verifier.Verify(ctx, proof, required)
	if err != nil {
		var denial *DenialError
		if errors.As(err, &denial) {
			return deny(denial)
		}
		return deny(NewDenialf(DenialVerificationFailed, "payment verification failed: %v", err))
	}

	operations := 1
	if g.resolver != nil && rail == RailChain {
		operations = g.resolver.Resolve(ctx, result.Paid)
		if operations == 0 {
			return deny(NewDenial(DenialNoEntitlementMatched, "paid amount does not match any entitlement tier").
				WithExtra("paid", result.Paid.String()))
		}
	}

	reserved, err := g.ledger.Reserve(ctx, key, g.cfg.ReservationTTL)
	if err != nil {
		return deny(NewDenial(DenialLedgerUnavailable, "replay ledger unavailable"))
	}
	if !reserved {
		// Lost the race against a concurrent request spending the same proof.
		return deny(NewDenial(DenialAlreadyUsed, "payment proof has already been used"))
	}

	return Verdict{
		Authorized: true,
		Rail:       rail,
		PaidAmount: result.Paid,
		Operations: operations,
	}
}

// bypassAllowed matches the token against the allowlist by exact value.
func (g *Gatekeeper) bypassAllowed(token string) bool {
	for _, allowed := range g.cfg.BypassTokens {
		if token == allowed {
			return true
		}
	}
	return false
}

func deny(d *DenialError) Verdict {
	return Verdict{Denial: d}
}
