// Package pricing maps verified paid amounts to entitlements.
//
// Tiers are priced in a reference currency; the resolver converts each to a
// native-unit cost at a live (or cached) exchange rate and matches the paid
// amount within a percentage band. Exchange rates fluctuate between the
// client's quote time and on-chain settlement, so a fixed-amount match would
// spuriously reject legitimate payments made seconds apart.
package pricing

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
)

// nativeDecimals is the rounding precision of computed native-unit costs.
const nativeDecimals = 9

var (
	// DefaultFeeBuffer inflates tier costs by 5% to cover network fees the
	// payer adds on top. Empirical; tune per deployment.
	DefaultFeeBuffer = decimal.NewFromFloat(0.05)

	// DefaultBand is the ±10% tolerance band around each tier's computed
	// cost. Empirical; trades false-rejection risk against under-charging.
	DefaultBand = decimal.NewFromFloat(0.10)

	one = decimal.NewFromInt(1)
)

// Tier is a priced entitlement level.
type Tier struct {
	// PriceUSD is the tier price in the reference currency.
	PriceUSD decimal.Decimal
	// Operations granted when a payment matches this tier.
	Operations int
}

// Resolver matches paid amounts against configured tiers.
type Resolver struct {
	tiers     []Tier
	rates     RateSource
	feeBuffer decimal.Decimal
	band      decimal.Decimal
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithFeeBuffer sets the fractional fee buffer applied to every tier cost.
func WithFeeBuffer(buffer decimal.Decimal) ResolverOption {
	return func(r *Resolver) { r.feeBuffer = buffer }
}

// WithBand sets the fractional tolerance band around each tier cost.
func WithBand(band decimal.Decimal) ResolverOption {
	return func(r *Resolver) { r.band = band }
}

// NewResolver creates a resolver over the given tiers and rate source.
// Tiers are evaluated highest price first, so an overpaying caller is never
// matched to a lower tier.
func NewResolver(tiers []Tier, rates RateSource, opts ...ResolverOption) *Resolver {
	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].PriceUSD.GreaterThan(sorted[j].PriceUSD)
	})

	r := &Resolver{
		tiers:     sorted,
		rates:     rates,
		feeBuffer: DefaultFeeBuffer,
		band:      DefaultBand,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NativeCost returns a tier price converted to native units at the given
// rate, fee buffer applied, rounded to the native precision.
func (r *Resolver) NativeCost(priceUSD, rate decimal.Decimal) decimal.Decimal {
	if rate.Sign() <= 0 {
		return decimal.Zero
	}
	return priceUSD.Div(rate).Mul(one.Add(r.feeBuffer)).Round(nativeDecimals)
}

// Resolve matches the paid native-unit amount against the tiers, highest
// first. The first tier whose computed cost is within the tolerance band of
// the paid amount wins. Zero means no tier matched.
func (r *Resolver) Resolve(ctx context.Context, paid decimal.Decimal) int {
	rate := r.rates.Rate(ctx)
	if rate.Sign() <= 0 {
		return 0
	}

	for _, tier := range r.tiers {
		cost := r.NativeCost(tier.PriceUSD, rate)
		if cost.Sign() <= 0 {
			continue
		}
		if paid.Sub(cost).Abs().LessThanOrEqual(cost.Mul(r.band)) {
			return tier.Operations
		}
	}
	return 0
}
