package payment

import (
	"errors"
	"fmt"
)

var (
	ErrDeclined           = errors.New("payment declined")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrInvalidAmount      = errors.New("payment amount must be positive")
	ErrMissingMethodToken = errors.New("payment method token is required")
)

// AmountMismatchError means the provider approved a charge for another amount
// than the one requested. The money is held under Reference.
type AmountMismatchError struct {
	Reference  string
	Requested  int64
	Authorized int64
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("provider authorized %d under %s, requested %d", e.Authorized, e.Reference, e.Requested)
}
