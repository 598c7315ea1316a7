package pricing

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestNativeCost(t *testing.T) {
	r := NewResolver(nil, NewStatic(d("100")), WithFeeBuffer(d("0.05")))

	// $1 at 100 USD/SOL with a 5% buffer.
	assert.Equal(t, "0.0105", r.NativeCost(d("1"), d("100")).String())

	assert.True(t, r.NativeCost(d("1"), decimal.Zero).IsZero())
}

func TestResolveMatchesTier(t *testing.T) {
	tiers := []Tier{
		{PriceUSD: d("1"), Operations: 1},
		{PriceUSD: d("10"), Operations: 12},
	}
	r := NewResolver(tiers, NewStatic(d("100")), WithFeeBuffer(decimal.Zero))

	// $1 tier costs 0.01 SOL, $10 tier costs 0.1 SOL, band ±10%.
	assert.Equal(t, 1, r.Resolve(context.Background(), d("0.01")))
	assert.Equal(t, 1, r.Resolve(context.Background(), d("0.0101")))
	assert.Equal(t, 12, r.Resolve(context.Background(), d("0.1")))
	assert.Equal(t, 12, r.Resolve(context.Background(), d("0.095")))
	assert.Equal(t, 0, r.Resolve(context.Background(), d("0.05")))
	assert.Equal(t, 0, r.Resolve(context.Background(), d("0.2")))
}

func TestResolveHighestTierWins(t *testing.T) {
	// Tier costs 0.1 and 0.095 SOL: a payment of 0.0995 falls inside both
	// bands and must resolve to the higher tier.
	tiers := []Tier{
		{PriceUSD: d("9.5"), Operations: 1},
		{PriceUSD: d("10"), Operations: 10},
	}
	r := NewResolver(tiers, NewStatic(d("100")), WithFeeBuffer(decimal.Zero))

	assert.Equal(t, 10, r.Resolve(context.Background(), d("0.0995")))
}

func TestResolveZeroRate(t *testing.T) {
	r := NewResolver([]Tier{{PriceUSD: d("1"), Operations: 1}}, NewStatic(decimal.Zero))
	assert.Equal(t, 0, r.Resolve(context.Background(), d("0.01")))
}

func TestResolveCustomBand(t *testing.T) {
	tiers := []Tier{{PriceUSD: d("1"), Operations: 1}}
	r := NewResolver(tiers, NewStatic(d("100")), WithFeeBuffer(decimal.Zero), WithBand(d("0.01")))

	// Cost 0.01 SOL with a ±1% band.
	assert.Equal(t, 1, r.Resolve(context.Background(), d("0.0100999")))
	assert.Equal(t, 0, r.Resolve(context.Background(), d("0.0102")))
}
