package checkout

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrEmptyCart             = errors.New("cart is empty, nothing to checkout")
	ErrCheckoutInProgress    = errors.New("a checkout is already in progress for this session")
	ErrReconciliationPending = errors.New("a paid order awaits reconciliation for this session")
	ErrIllegalTransition     = errors.New("illegal transition of checkout state")
	ErrCanceled              = errors.New("checkout canceled before payment")
)

type Kind string

const (
	KindValidation      Kind = "validation"
	KindPaymentDeclined Kind = "payment_declined"
	KindNetwork         Kind = "network"
	KindReconciliation  Kind = "reconciliation"
	KindCanceled        Kind = "canceled"
	KindUnknown         Kind = "unknown"
)

// ValidationError is raised locally, before any gateway is contacted.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("checkout validation failed: %v", e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// PaymentDeclinedError means the gateway answered and refused the charge.
// The cart is intact and the session may retry.
type PaymentDeclinedError struct {
	Reason    string
	Reference string
}

func (e *PaymentDeclinedError) Error() string {
	if e.Reason == "" {
		return "payment declined"
	}
	return "payment declined: " + e.Reason
}

// NetworkError wraps a transient failure reaching a gateway.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: gateway unreachable: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ReconciliationError reports a charge that succeeded while the order it paid
// for could not be recorded. It carries what an operator needs to match the
// payment to an order by hand.
type ReconciliationError struct {
	AttemptID        string
	SessionID        string
	UserID           int64
	IdempotencyKey   string
	PaymentReference string
	AmountMinor      int64
	Currency         string
	OccurredAt       time.Time
	Err              error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf(
		"payment %s of %d %s captured but order was not recorded (attempt %s, key %s): %v",
		e.PaymentReference, e.AmountMinor, e.Currency, e.AttemptID, e.IdempotencyKey, e.Err,
	)
}

func (e *ReconciliationError) Unwrap() error { return e.Err }

// KindOf classifies an error returned by the checkout so callers can branch
// on it without unpacking the concrete type.
func KindOf(err error) Kind {
	var (
		validation     *ValidationError
		declined       *PaymentDeclinedError
		network        *NetworkError
		reconciliation *ReconciliationError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &reconciliation):
		return KindReconciliation
	case errors.As(err, &declined):
		return KindPaymentDeclined
	case errors.As(err, &network):
		return KindNetwork
	case errors.As(err, &validation),
		errors.Is(err, ErrCheckoutInProgress),
		errors.Is(err, ErrReconciliationPending):
		return KindValidation
	case errors.Is(err, ErrCanceled):
		return KindCanceled
	default:
		return KindUnknown
	}
}

// IsRetryable is true for failures that left the cart untouched and moved no
// money.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case KindPaymentDeclined, KindNetwork, KindCanceled:
		return true
	default:
		return false
	}
}
