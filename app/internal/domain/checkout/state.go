package checkout

type State string

const (
	StateIdle               State = "IDLE"
	StateAuthorizingPayment State = "AUTHORIZING_PAYMENT"
	StatePaymentConfirmed   State = "PAYMENT_CONFIRMED"
	StateOrderRecorded      State = "ORDER_RECORDED"
	StateCleared            State = "CLEARED"
	StateFailed             State = "FAILED"
)

var transitions = map[State][]State{
	StateIdle:               {StateAuthorizingPayment},
	StateAuthorizingPayment: {StatePaymentConfirmed, StateFailed, StateIdle},
	StatePaymentConfirmed:   {StateOrderRecorded},
	StateOrderRecorded:      {StateCleared, StateFailed},
}

// CanTransitionTo reports whether the handshake may move from one state to
// another. Once payment is confirmed there is no way back to IDLE.
func CanTransitionTo(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s State) IsTerminal() bool {
	return s == StateCleared || s == StateFailed
}

// IsCancellable is true while no money has moved yet.
func (s State) IsCancellable() bool {
	return s == StateIdle || s == StateAuthorizingPayment
}

func (s State) String() string {
	return string(s)
}
