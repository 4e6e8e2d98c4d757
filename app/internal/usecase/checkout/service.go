package checkout

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	domcart "example.com/voltcart/app/internal/domain/cart"
	domcheckout "example.com/voltcart/app/internal/domain/checkout"
	domorder "example.com/voltcart/app/internal/domain/order"
	dompayment "example.com/voltcart/app/internal/domain/payment"
)

type CartSessions interface {
	Store(sessionID string) *domcart.Store
}

type PaymentGateway interface {
	Authorize(ctx context.Context, req dompayment.Request) (*dompayment.Authorization, error)
}

type OrderGateway interface {
	RecordOrder(ctx context.Context, rec domorder.Record) (*domorder.Order, error)
}

// ReconciliationReporter persists paid-but-unrecorded checkouts and tells
// whether a session still has one open.
type ReconciliationReporter interface {
	Report(ctx context.Context, rerr *domcheckout.ReconciliationError) error
	HasOpen(ctx context.Context, sessionID string) (bool, error)
}

type EventPublisher interface {
	PublishOrderRecorded(ctx context.Context, a domcheckout.Attempt) error
}

type Dependencies struct {
	Carts      CartSessions
	Payments   PaymentGateway
	Orders     OrderGateway
	Reconciler ReconciliationReporter
	Events     EventPublisher
	Currency   string
}

type Input struct {
	SessionID          string
	UserID             int64
	PaymentMethodToken string
}

// Service runs the checkout handshake: authorize the payment for a frozen
// cart snapshot, record the order, then clear the cart.
type Service struct {
	carts      CartSessions
	payments   PaymentGateway
	orders     OrderGateway
	reconciler ReconciliationReporter
	events     EventPublisher
	currency   string

	newID func() string
	now   func() time.Time

	mu       sync.Mutex
	inflight map[string]bool
	// pending marks sessions whose last attempt ended in a reconciliation
	// failure; the value tells whether the failure reached the ledger.
	pending  map[string]bool
	attempts map[string]*domcheckout.Attempt
}

func NewService(deps Dependencies) *Service {
	currency := deps.Currency
	if currency == "" {
		currency = dompayment.DefaultCurrency
	}
	return &Service{
		carts:      deps.Carts,
		payments:   deps.Payments,
		orders:     deps.Orders,
		reconciler: deps.Reconciler,
		events:     deps.Events,
		currency:   currency,
		newID:      func() string { return uuid.NewString() },
		now:        func() time.Time { return time.Now().UTC() },
		inflight:   make(map[string]bool),
		pending:    make(map[string]bool),
		attempts:   make(map[string]*domcheckout.Attempt),
	}
}

// Checkout runs one handshake for the session. The returned attempt is a copy
// describing where the handshake stopped; the error is one of the typed
// checkout errors (see domain/checkout.KindOf).
func (s *Service) Checkout(ctx context.Context, in Input) (*domcheckout.Attempt, error) {
	if in.PaymentMethodToken == "" {
		return nil, &domcheckout.ValidationError{Err: dompayment.ErrMissingMethodToken}
	}

	if err := s.acquire(in.SessionID); err != nil {
		return nil, err
	}
	defer s.release(in.SessionID)

	attempt := domcheckout.NewAttempt(s.newID(), in.SessionID, in.UserID, s.newID(), s.now())
	attempt.Currency = s.currency

	// Local checks come before the ledger lookup so a bad cart never waits
	// on the network.
	store := s.carts.Store(in.SessionID)
	snap := store.Snapshot()
	if snap.IsEmpty() {
		s.remember(attempt)
		return s.reject(attempt, domcheckout.ErrEmptyCart)
	}
	amount := dompayment.ToMinorUnits(snap.Totals.TotalPrice)
	if amount <= 0 {
		s.remember(attempt)
		return s.reject(attempt, dompayment.ErrInvalidAmount)
	}

	if err := s.checkReconciliation(ctx, in.SessionID); err != nil {
		return nil, err
	}
	s.remember(attempt)

	if err := s.transition(attempt, domcheckout.StateAuthorizingPayment); err != nil {
		return nil, err
	}
	s.mu.Lock()
	attempt.Snapshot = snap
	attempt.AmountMinor = amount
	s.mu.Unlock()

	auth, err := s.authorize(ctx, attempt, in.PaymentMethodToken)
	if err != nil {
		return s.result(attempt)
	}

	s.mu.Lock()
	attempt.PaymentReference = auth.Reference
	s.mu.Unlock()
	if err := s.transition(attempt, domcheckout.StatePaymentConfirmed); err != nil {
		return nil, err
	}

	// Money has moved: the rest of the handshake must finish even if the
	// caller goes away.
	return s.recordAndClear(context.WithoutCancel(ctx), attempt, store)
}

// LastAttempt returns the most recent attempt of the session, if any.
func (s *Service) LastAttempt(sessionID string) (*domcheckout.Attempt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.attempts[sessionID]
	if !ok {
		return nil, false
	}
	cp := a.Copy()
	return &cp, true
}

// Sweep forgets the checkout state of sessions idle for longer than maxIdle
// and returns how many were dropped. Running handshakes are kept. A session
// blocked on reconciliation is kept until the ledger has no open entry for
// it; a block that never reached the ledger is kept for good.
func (s *Service) Sweep(ctx context.Context, maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	dropped := 0
	var blocked []string
	for id, a := range s.attempts {
		if s.inflight[id] || a.UpdatedAt.After(cutoff) {
			continue
		}
		reported, isBlocked := s.pending[id]
		switch {
		case !isBlocked:
			delete(s.attempts, id)
			dropped++
		case reported && s.reconciler != nil:
			blocked = append(blocked, id)
		}
	}
	s.mu.Unlock()

	for _, id := range blocked {
		open, err := s.reconciler.HasOpen(ctx, id)
		if err != nil {
			log.Printf("[checkout] sweep: reconciliation lookup for session %s: %v", id, err)
			continue
		}
		if open {
			continue
		}
		s.mu.Lock()
		if a, ok := s.attempts[id]; ok && !s.inflight[id] && !a.UpdatedAt.After(cutoff) {
			delete(s.attempts, id)
			delete(s.pending, id)
			dropped++
		}
		s.mu.Unlock()
	}
	return dropped
}

func (s *Service) authorize(ctx context.Context, attempt *domcheckout.Attempt, token string) (*dompayment.Authorization, error) {
	if ctx.Err() != nil {
		return nil, s.cancel(attempt)
	}

	auth, err := s.payments.Authorize(ctx, dompayment.Request{
		AmountMinor:    attempt.AmountMinor,
		Currency:       attempt.Currency,
		MethodToken:    token,
		IdempotencyKey: attempt.IdempotencyKey,
		Description:    "checkout " + attempt.ID,
	})
	if err != nil {
		var mismatch *dompayment.AmountMismatchError
		if errors.As(err, &mismatch) {
			// The provider holds money for this attempt; treat it like a
			// paid order that could not be recorded.
			s.mu.Lock()
			attempt.PaymentReference = mismatch.Reference
			s.mu.Unlock()
			rerr := s.reconciliationError(attempt, err)
			_ = s.fail(attempt, rerr)
			s.reportReconciliation(context.WithoutCancel(ctx), rerr)
			return nil, rerr
		}
		if ctx.Err() != nil {
			return nil, s.cancel(attempt)
		}
		return nil, s.fail(attempt, classifyPaymentError(err))
	}
	if !auth.Succeeded() {
		return nil, s.fail(attempt, &domcheckout.PaymentDeclinedError{
			Reason:    auth.FailureReason,
			Reference: auth.Reference,
		})
	}
	return auth, nil
}

func (s *Service) recordAndClear(ctx context.Context, attempt *domcheckout.Attempt, store *domcart.Store) (*domcheckout.Attempt, error) {
	if err := s.transition(attempt, domcheckout.StateOrderRecorded); err != nil {
		return nil, err
	}

	order, err := s.orders.RecordOrder(ctx, buildRecord(attempt))
	if err != nil {
		rerr := s.reconciliationError(attempt, err)
		_ = s.fail(attempt, rerr)
		s.reportReconciliation(ctx, rerr)
		return s.result(attempt)
	}

	store.Clear()
	s.mu.Lock()
	attempt.Order = order
	s.mu.Unlock()
	if err := s.transition(attempt, domcheckout.StateCleared); err != nil {
		return nil, err
	}

	if s.events != nil {
		if err := s.events.PublishOrderRecorded(ctx, attempt.Copy()); err != nil {
			log.Printf("[checkout] publish order %d for attempt %s: %v", order.ID, attempt.ID, err)
		}
	}
	return s.result(attempt)
}

func (s *Service) reconciliationError(attempt *domcheckout.Attempt, err error) *domcheckout.ReconciliationError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &domcheckout.ReconciliationError{
		AttemptID:        attempt.ID,
		SessionID:        attempt.SessionID,
		UserID:           attempt.UserID,
		IdempotencyKey:   attempt.IdempotencyKey,
		PaymentReference: attempt.PaymentReference,
		AmountMinor:      attempt.AmountMinor,
		Currency:         attempt.Currency,
		OccurredAt:       s.now(),
		Err:              err,
	}
}

func (s *Service) reportReconciliation(ctx context.Context, rerr *domcheckout.ReconciliationError) {
	log.Printf("[checkout] RECONCILIATION REQUIRED session=%s attempt=%s payment=%s amount=%d %s key=%s at=%s: %v",
		rerr.SessionID, rerr.AttemptID, rerr.PaymentReference, rerr.AmountMinor, rerr.Currency,
		rerr.IdempotencyKey, rerr.OccurredAt.Format(time.RFC3339), rerr.Err)

	reported := false
	if s.reconciler != nil {
		if err := s.reconciler.Report(ctx, rerr); err != nil {
			log.Printf("[checkout] reconciliation ledger write failed for attempt %s: %v", rerr.AttemptID, err)
		} else {
			reported = true
		}
	}

	s.mu.Lock()
	s.pending[rerr.SessionID] = reported
	s.mu.Unlock()
}

// checkReconciliation refuses a new handshake while a paid order of the
// session is still unreconciled.
func (s *Service) checkReconciliation(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	reported, blocked := s.pending[sessionID]
	s.mu.Unlock()

	if blocked && !reported {
		return domcheckout.ErrReconciliationPending
	}
	if s.reconciler == nil {
		if blocked {
			return domcheckout.ErrReconciliationPending
		}
		return nil
	}

	open, err := s.reconciler.HasOpen(ctx, sessionID)
	if err != nil {
		return &domcheckout.NetworkError{Op: "reconciliation lookup", Err: err}
	}
	if open {
		return domcheckout.ErrReconciliationPending
	}
	if blocked {
		s.mu.Lock()
		delete(s.pending, sessionID)
		s.mu.Unlock()
	}
	return nil
}

func (s *Service) acquire(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight[sessionID] {
		return domcheckout.ErrCheckoutInProgress
	}
	s.inflight[sessionID] = true
	return nil
}

func (s *Service) release(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, sessionID)
}

func (s *Service) remember(a *domcheckout.Attempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[a.SessionID] = a
}

func (s *Service) transition(a *domcheckout.Attempt, to domcheckout.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return a.Transition(to, s.now())
}

func (s *Service) fail(a *domcheckout.Attempt, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if terr := a.Fail(err, s.now()); terr != nil {
		return terr
	}
	return err
}

func (s *Service) cancel(a *domcheckout.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := a.Transition(domcheckout.StateIdle, s.now()); err != nil {
		return err
	}
	a.Err = domcheckout.ErrCanceled
	return domcheckout.ErrCanceled
}

// reject ends an attempt that never left IDLE.
func (s *Service) reject(a *domcheckout.Attempt, reason error) (*domcheckout.Attempt, error) {
	s.mu.Lock()
	a.Err = &domcheckout.ValidationError{Err: reason}
	s.mu.Unlock()
	return s.result(a)
}

func (s *Service) result(a *domcheckout.Attempt) (*domcheckout.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := a.Copy()
	return &cp, a.Err
}

func classifyPaymentError(err error) error {
	var (
		declined *domcheckout.PaymentDeclinedError
		network  *domcheckout.NetworkError
	)
	switch {
	case errors.As(err, &declined), errors.As(err, &network):
		return err
	case errors.Is(err, dompayment.ErrDeclined):
		return &domcheckout.PaymentDeclinedError{Reason: err.Error()}
	default:
		return &domcheckout.NetworkError{Op: "authorize payment", Err: err}
	}
}

func buildRecord(a *domcheckout.Attempt) domorder.Record {
	items := make([]domorder.OrderItem, 0, len(a.Snapshot.Items))
	for _, li := range a.Snapshot.Items {
		items = append(items, domorder.OrderItem{
			ProductID: li.Product.ID,
			Name:      li.Product.Name,
			UnitPrice: li.Product.Price,
			Quantity:  li.Quantity,
			Image:     li.Product.PrimaryImage(),
		})
	}
	return domorder.Record{
		UserID:           a.UserID,
		SessionID:        a.SessionID,
		IdempotencyKey:   a.IdempotencyKey,
		PaymentReference: a.PaymentReference,
		TotalAmount:      a.Snapshot.Totals.TotalPrice,
		Items:            items,
	}
}
