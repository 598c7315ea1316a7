package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultQuoteURL is a CoinGecko-style simple-price endpoint for SOL/USD.
const DefaultQuoteURL = "https://api.coingecko.com/api/v3/simple/price?ids=solana&vs_currencies=usd"

// DefaultCacheTTL bounds how long a fetched quote is reused.
const DefaultCacheTTL = 5 * time.Minute

// RateSource supplies the exchange rate in reference-currency units per
// native unit (e.g. USD per SOL).
type RateSource interface {
	Rate(ctx context.Context) decimal.Decimal
}

// StaticSource returns a fixed rate. Useful for tests and offline setups.
type StaticSource struct {
	rate decimal.Decimal
}

// NewStatic creates a fixed-rate source.
func NewStatic(rate decimal.Decimal) *StaticSource {
	return &StaticSource{rate: rate}
}

// Rate returns the fixed rate.
func (s *StaticSource) Rate(context.Context) decimal.Decimal { return s.rate }

// CachedHTTPSource fetches a live quote over HTTP and caches it for a bounded
// interval. A payment check must never fail merely because a quote is stale:
// on fetch errors the last cached rate is reused, and the hard-coded fallback
// covers the case where no quote was ever fetched.
type CachedHTTPSource struct {
	url        string
	client     *http.Client
	fallback   decimal.Decimal
	ttl        time.Duration
	assetID    string
	vsCurrency string

	mu        sync.Mutex
	cached    decimal.Decimal
	fetchedAt time.Time
}

// SourceOption configures a CachedHTTPSource.
type SourceOption func(*CachedHTTPSource)

// WithHTTPClient sets the HTTP client used for quote fetches.
func WithHTTPClient(c *http.Client) SourceOption {
	return func(s *CachedHTTPSource) { s.client = c }
}

// WithCacheTTL sets how long a fetched quote is reused.
func WithCacheTTL(ttl time.Duration) SourceOption {
	return func(s *CachedHTTPSource) { s.ttl = ttl }
}

// WithQuoteKeys sets the asset and currency keys expected in the quote
// response body. Defaults are "solana" and "usd".
func WithQuoteKeys(assetID, vsCurrency string) SourceOption {
	return func(s *CachedHTTPSource) {
		s.assetID = assetID
		s.vsCurrency = vsCurrency
	}
}

// NewCachedHTTPSource creates a quote source for the given endpoint with a
// fallback rate for when the endpoint is unreachable.
func NewCachedHTTPSource(url string, fallback decimal.Decimal, opts ...SourceOption) *CachedHTTPSource {
	s := &CachedHTTPSource{
		url:        url,
		client:     &http.Client{Timeout: 10 * time.Second},
		fallback:   fallback,
		ttl:        DefaultCacheTTL,
		assetID:    "solana",
		vsCurrency: "usd",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rate returns the cached quote, refreshing it when the cache interval has
// passed. It never returns an error: stale cache beats fallback beats failure.
func (s *CachedHTTPSource) Rate(ctx context.Context) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.fetchedAt.IsZero() && time.Since(s.fetchedAt) < s.ttl {
		return s.cached
	}

	rate, err := s.fetch(ctx)
	if err != nil {
		if !s.fetchedAt.IsZero() {
			return s.cached
		}
		return s.fallback
	}

	s.cached = rate
	s.fetchedAt = time.Now()
	return rate
}

func (s *CachedHTTPSource) fetch(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return decimal.Zero, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("quote endpoint returned %d", resp.StatusCode)
	}

	var body map[string]map[string]json.Number
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, err
	}

	raw, ok := body[s.assetID][s.vsCurrency]
	if !ok {
		return decimal.Zero, fmt.Errorf("quote response missing %s/%s", s.assetID, s.vsCurrency)
	}

	rate, err := decimal.NewFromString(raw.String())
	if err != nil {
		return decimal.Zero, err
	}
	if rate.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("non-positive rate %s", rate)
	}
	return rate, nil
}

var (
	_ RateSource = (*StaticSource)(nil)
	_ RateSource = (*CachedHTTPSource)(nil)
)
