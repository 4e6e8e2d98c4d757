package checkout

import (
	"time"

	domcart "example.com/voltcart/app/internal/domain/cart"
	domorder "example.com/voltcart/app/internal/domain/order"
)

// Attempt is one run of the checkout handshake for a session. The cart
// snapshot and amount are fixed when the attempt leaves IDLE and are what
// both gateways see.
type Attempt struct {
	ID               string
	SessionID        string
	UserID           int64
	IdempotencyKey   string
	State            State
	FailedFrom       State
	Snapshot         domcart.Snapshot
	AmountMinor      int64
	Currency         string
	PaymentReference string
	Order            *domorder.Order
	Err              error
	StartedAt        time.Time
	UpdatedAt        time.Time
}

func NewAttempt(id, sessionID string, userID int64, idempotencyKey string, now time.Time) *Attempt {
	return &Attempt{
		ID:             id,
		SessionID:      sessionID,
		UserID:         userID,
		IdempotencyKey: idempotencyKey,
		State:          StateIdle,
		StartedAt:      now,
		UpdatedAt:      now,
	}
}

// Transition moves the attempt to the next state, refusing moves the
// handshake does not allow.
func (a *Attempt) Transition(to State, now time.Time) error {
	if !CanTransitionTo(a.State, to) {
		return ErrIllegalTransition
	}
	if to == StateFailed {
		a.FailedFrom = a.State
	}
	a.State = to
	a.UpdatedAt = now
	return nil
}

// Fail records err and moves the attempt to FAILED.
func (a *Attempt) Fail(err error, now time.Time) error {
	if terr := a.Transition(StateFailed, now); terr != nil {
		return terr
	}
	a.Err = err
	return nil
}

func (a *Attempt) Kind() Kind {
	return KindOf(a.Err)
}

// Copy returns a value copy safe to hand out while the attempt is still
// owned by the checkout.
func (a *Attempt) Copy() Attempt {
	cp := *a
	cp.Snapshot = a.Snapshot.Clone()
	if a.Order != nil {
		o := *a.Order
		o.Items = append([]domorder.OrderItem(nil), a.Order.Items...)
		cp.Order = &o
	}
	return cp
}
