// Package stdlib provides a net/http middleware that gates handlers behind
// the payment gatekeeper.
package stdlib

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	tollgate "github.com/tollgate-labs/tollgate"
)

type contextKey struct{}

const requestIDHeader = "X-Request-Id"

// Options configures the payment middleware.
type Options struct {
	// Price overrides the gatekeeper's configured price for handlers behind
	// this middleware instance. Zero means use the default.
	Price decimal.Decimal
}

// Option mutates Options.
type Option func(*Options)

// WithPrice sets a per-handler price in native display units.
func WithPrice(price decimal.Decimal) Option {
	return func(o *Options) { o.Price = price }
}

// VerdictFromContext returns the verdict stored by the middleware, if any.
func VerdictFromContext(ctx context.Context) (tollgate.Verdict, bool) {
	v, ok := ctx.Value(contextKey{}).(tollgate.Verdict)
	return v, ok
}

// Payment returns a middleware that authorizes the request's payment proof
// before the wrapped handler runs. The verdict is stored on the request
// context for the handler to read via VerdictFromContext.
func Payment(gk *tollgate.Gatekeeper, opts ...Option) func(http.Handler) http.Handler {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(requestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, requestID)

			req := tollgate.RequestFromHTTP(r)
			req.RequiredPrice = options.Price

			verdict := gk.Authorize(r.Context(), req)
			if !verdict.Authorized {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(verdict.Denial.HTTPStatus)
				json.NewEncoder(w).Encode(verdict.Denial)
				return
			}

			ctx := context.WithValue(r.Context(), contextKey{}, verdict)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
