package payment

import (
	"github.com/shopspring/decimal"
)

const DefaultCurrency = "INR"

// minorUnitExponent is the number of decimal places the currency's minor unit
// carries (paisa, cents).
const minorUnitExponent = 2

type Status string

const (
	StatusSucceeded Status = "SUCCEEDED"
	StatusDeclined  Status = "DECLINED"
)

// Request asks the payment gateway to authorize a charge. AmountMinor is in
// the currency's smallest unit so no floating point crosses the boundary.
type Request struct {
	AmountMinor    int64
	Currency       string
	MethodToken    string
	IdempotencyKey string
	Description    string
}

type Authorization struct {
	Reference     string
	Status        Status
	FailureReason string
	AmountMinor   int64
}

func (a *Authorization) Succeeded() bool {
	return a != nil && a.Status == StatusSucceeded
}

// ToMinorUnits converts a decimal amount to the smallest currency unit,
// rounding half away from zero.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(minorUnitExponent).Round(0).IntPart()
}

func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -minorUnitExponent)
}
