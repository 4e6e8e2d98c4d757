package reconciliation

import "time"

type Status string

const (
	StatusOpen     Status = "OPEN"
	StatusResolved Status = "RESOLVED"
)

// Entry is a paid-but-unrecorded checkout waiting for an operator.
type Entry struct {
	ID               int64
	AttemptID        string
	SessionID        string
	UserID           int64
	IdempotencyKey   string
	PaymentReference string
	AmountMinor      int64
	Currency         string
	Reason           string
	Status           Status
	CreatedAt        time.Time
	ResolvedAt       *time.Time
	ResolvedBy       string
	Note             string
}

type ListFilter struct {
	Status *Status
}
