// Package echo provides an Echo middleware that gates routes behind the
// payment gatekeeper.
package echo

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	tollgate "github.com/tollgate-labs/tollgate"
)

// Context keys under which the middleware stores verdict data for handlers.
const (
	ContextKeyRail       = "tollgate.rail"
	ContextKeyOperations = "tollgate.operations"
	ContextKeyPaidAmount = "tollgate.paidAmount"
)

const requestIDHeader = "X-Request-Id"

// Options configures the payment middleware.
type Options struct {
	// Price overrides the gatekeeper's configured price for routes behind
	// this middleware instance. Zero means use the default.
	Price decimal.Decimal
}

// Option mutates Options.
type Option func(*Options)

// WithPrice sets a per-route price in native display units.
func WithPrice(price decimal.Decimal) Option {
	return func(o *Options) { o.Price = price }
}

// Payment returns a middleware that authorizes the request's payment proof
// before the handler runs.
func Payment(gk *tollgate.Gatekeeper, opts ...Option) echo.MiddlewareFunc {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(requestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			c.Response().Header().Set(requestIDHeader, requestID)

			req := tollgate.RequestFromHTTP(c.Request())
			req.RequiredPrice = options.Price

			verdict := gk.Authorize(c.Request().Context(), req)
			if !verdict.Authorized {
				return c.JSON(verdict.Denial.HTTPStatus, verdict.Denial)
			}

			c.Set(ContextKeyRail, string(verdict.Rail))
			c.Set(ContextKeyOperations, verdict.Operations)
			c.Set(ContextKeyPaidAmount, verdict.PaidAmount)
			return next(c)
		}
	}
}
