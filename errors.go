package tollgate

import (
	"fmt"
	"net/http"
)

// DenialKind classifies why a gatekeeping call was denied.
type DenialKind string

const (
	DenialNoProofSupplied      DenialKind = "no_proof_supplied"
	DenialTransactionNotFound  DenialKind = "transaction_not_found"
	DenialWrongDestination     DenialKind = "wrong_destination"
	DenialInsufficientAmount   DenialKind = "insufficient_amount"
	DenialAlreadyUsed          DenialKind = "already_used"
	DenialProcessorIncomplete  DenialKind = "processor_payment_incomplete"
	DenialInvalidSession       DenialKind = "invalid_processor_session"
	DenialLedgerUnavailable    DenialKind = "ledger_unavailable"
	DenialVerificationFailed   DenialKind = "upstream_verification_failure"
	DenialNoEntitlementMatched DenialKind = "no_entitlement_matched"
	DenialUnsupportedRail      DenialKind = "unsupported_rail"
)

// statusForKind maps each denial kind to its fixed HTTP-equivalent status.
func statusForKind(kind DenialKind) int {
	switch kind {
	case DenialNoProofSupplied, DenialInsufficientAmount, DenialProcessorIncomplete, DenialNoEntitlementMatched:
		return http.StatusPaymentRequired
	case DenialAlreadyUsed:
		return http.StatusConflict
	case DenialTransactionNotFound, DenialWrongDestination, DenialInvalidSession:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// DenialError is a machine-readable denial. It implements error so rail
// verifiers can return it directly; the gatekeeper folds it into the Verdict.
type DenialError struct {
	Kind       DenialKind             `json:"kind"`
	HTTPStatus int                    `json:"httpStatus"`
	Message    string                 `json:"error"`
	Challenge  *Challenge             `json:"details,omitempty"`
	Extra      map[string]interface{} `json:"extra,omitempty"`
}

func (e *DenialError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewDenial creates a denial with the status implied by its kind.
func NewDenial(kind DenialKind, message string) *DenialError {
	return &DenialError{
		Kind:       kind,
		HTTPStatus: statusForKind(kind),
		Message:    message,
	}
}

// NewDenialf creates a denial with a formatted message.
func NewDenialf(kind DenialKind, format string, args ...interface{}) *DenialError {
	return NewDenial(kind, fmt.Sprintf(format, args...))
}

// WithExtra attaches structured context (e.g. the shortfall on an
// insufficient-amount denial) and returns the same denial for chaining.
func (e *DenialError) WithExtra(key string, value interface{}) *DenialError {
	if e.Extra == nil {
		e.Extra = make(map[string]interface{})
	}
	e.Extra[key] = value
	return e
}
