package pricing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCachedHTTPSourceFetchesAndCaches(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"solana":{"usd":123.45}}`))
	}))
	defer srv.Close()

	src := NewCachedHTTPSource(srv.URL, d("50"), WithCacheTTL(time.Minute))

	assert.Equal(t, "123.45", src.Rate(context.Background()).String())
	assert.Equal(t, "123.45", src.Rate(context.Background()).String())
	assert.Equal(t, int64(1), hits.Load())
}

func TestCachedHTTPSourceFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	src := NewCachedHTTPSource(srv.URL, d("50"))

	assert.Equal(t, "50", src.Rate(context.Background()).String())
}

func TestCachedHTTPSourceReusesStaleQuoteOnError(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"solana":{"usd":200}}`))
	}))
	defer srv.Close()

	// Zero TTL forces a refetch on every call.
	src := NewCachedHTTPSource(srv.URL, d("50"), WithCacheTTL(0))

	assert.Equal(t, "200", src.Rate(context.Background()).String())

	fail.Store(true)
	// A stale quote beats the fallback once one has been fetched.
	assert.Equal(t, "200", src.Rate(context.Background()).String())
}

func TestCachedHTTPSourceCustomQuoteKeys(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ethereum":{"eur":1800.5}}`))
	}))
	defer srv.Close()

	src := NewCachedHTTPSource(srv.URL, d("50"), WithQuoteKeys("ethereum", "eur"))

	assert.Equal(t, "1800.5", src.Rate(context.Background()).String())
}

func TestStaticSource(t *testing.T) {
	assert.Equal(t, "42", NewStatic(d("42")).Rate(context.Background()).String())
}
