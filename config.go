package tollgate

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Environment marks the runtime the gatekeeper is deployed in. The developer
// bypass is refused unconditionally in EnvProduction.
type Environment string

const (
	EnvProduction  Environment = "production"
	EnvStaging     Environment = "staging"
	EnvDevelopment Environment = "development"
	EnvTest        Environment = "test"
)

// DefaultReservationTTL bounds ledger growth; replay risk beyond the window
// is accepted since proofs are ephemeral.
const DefaultReservationTTL = 24 * time.Hour

// Config holds the gatekeeper's payment policy.
type Config struct {
	// ReceivingAddress is the account payments must be sent to. Included in
	// every challenge so callers can pay without documentation lookups.
	ReceivingAddress string `validate:"required"`

	// Network identifies the chain in challenges (e.g. "solana-mainnet").
	Network string `validate:"required"`

	// Currency is the display unit of Price (e.g. "SOL").
	Currency string `validate:"required"`

	// Price is the default required amount per call, in display units.
	// Individual requests may override it.
	Price decimal.Decimal `validate:"-"`

	// Description is the human-readable line included in challenges.
	Description string

	// Environment gates the developer bypass.
	Environment Environment `validate:"required,oneof=production staging development test"`

	// BypassTokens is the exact-match allowlist for the developer bypass.
	// Matching is by full token value, never by prefix or pattern.
	BypassTokens []string

	// ReservationTTL is how long a consumed proof stays in the ledger.
	ReservationTTL time.Duration
}

var validate = validator.New()

// Validate applies defaults and checks the config.
func (c *Config) Validate() error {
	if c.Currency == "" {
		c.Currency = "SOL"
	}
	if c.ReservationTTL <= 0 {
		c.ReservationTTL = DefaultReservationTTL
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid gatekeeper config: %w", err)
	}
	if c.Price.Sign() <= 0 {
		return fmt.Errorf("invalid gatekeeper config: price must be positive, got %s", c.Price)
	}
	return nil
}
