package processor

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tollgate "github.com/tollgate-labs/tollgate"
)

type mockRetriever struct {
	session *stripe.CheckoutSession
	err     error
	gotID   string
}

func (m *mockRetriever) Get(id string, _ *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	m.gotID = id
	return m.session, m.err
}

func requireDenial(t *testing.T, err error) *tollgate.DenialError {
	t.Helper()
	var denial *tollgate.DenialError
	require.ErrorAs(t, err, &denial)
	return denial
}

func TestVerifyPaidSession(t *testing.T) {
	retriever := &mockRetriever{session: &stripe.CheckoutSession{
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
	}}
	v := NewVerifierWithRetriever(retriever)

	result, err := v.Verify(context.Background(), "cs_test_123", decimal.Zero)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "cs_test_123", retriever.gotID)
}

func TestVerifyUnpaidSession(t *testing.T) {
	v := NewVerifierWithRetriever(&mockRetriever{session: &stripe.CheckoutSession{
		PaymentStatus: stripe.CheckoutSessionPaymentStatusUnpaid,
	}})

	_, err := v.Verify(context.Background(), "cs_test_123", decimal.Zero)

	denial := requireDenial(t, err)
	assert.Equal(t, tollgate.DenialProcessorIncomplete, denial.Kind)
	assert.Equal(t, http.StatusPaymentRequired, denial.HTTPStatus)
}

func TestVerifyUnknownSession(t *testing.T) {
	v := NewVerifierWithRetriever(&mockRetriever{err: &stripe.Error{
		Code:           stripe.ErrorCodeResourceMissing,
		HTTPStatusCode: http.StatusNotFound,
	}})

	_, err := v.Verify(context.Background(), "cs_missing", decimal.Zero)

	denial := requireDenial(t, err)
	assert.Equal(t, tollgate.DenialInvalidSession, denial.Kind)
	assert.Equal(t, http.StatusForbidden, denial.HTTPStatus)
}

func TestVerifyTransportErrorIsNotADenial(t *testing.T) {
	v := NewVerifierWithRetriever(&mockRetriever{err: errors.New("dial tcp: timeout")})

	_, err := v.Verify(context.Background(), "cs_test_123", decimal.Zero)

	require.Error(t, err)
	var denial *tollgate.DenialError
	assert.False(t, errors.As(err, &denial))
}

func TestLedgerKeyNamespacing(t *testing.T) {
	v := NewVerifierWithRetriever(&mockRetriever{})
	assert.Equal(t, "processor:cs_test_123", v.LedgerKey("cs_test_123"))
	assert.Equal(t, tollgate.RailProcessor, v.Rail())
}
