package reconciliation

import (
	"context"
	"log"
	"strings"

	domcheckout "example.com/voltcart/app/internal/domain/checkout"
	domrecon "example.com/voltcart/app/internal/domain/reconciliation"
)

// Notifier fans a new ledger entry out to other systems (event stream,
// operator mail). Failures are logged; the ledger row is what counts.
type Notifier interface {
	NotifyReconciliation(ctx context.Context, e *domrecon.Entry) error
}

// Service is the back office for checkouts whose payment went through while
// the order could not be recorded.
type Service struct {
	repo      domrecon.Repository
	notifiers []Notifier
}

func NewService(repo domrecon.Repository, notifiers ...Notifier) *Service {
	return &Service{repo: repo, notifiers: notifiers}
}

// Report writes rerr to the ledger and notifies operators.
func (s *Service) Report(ctx context.Context, rerr *domcheckout.ReconciliationError) error {
	reason := ""
	if rerr.Err != nil {
		reason = rerr.Err.Error()
	}
	entry, err := s.repo.Create(ctx, &domrecon.Entry{
		AttemptID:        rerr.AttemptID,
		SessionID:        rerr.SessionID,
		UserID:           rerr.UserID,
		IdempotencyKey:   rerr.IdempotencyKey,
		PaymentReference: rerr.PaymentReference,
		AmountMinor:      rerr.AmountMinor,
		Currency:         rerr.Currency,
		Reason:           reason,
		Status:           domrecon.StatusOpen,
		CreatedAt:        rerr.OccurredAt,
	})
	if err != nil {
		return err
	}

	for _, n := range s.notifiers {
		if err := n.NotifyReconciliation(ctx, entry); err != nil {
			log.Printf("[reconciliation] notify entry %d: %v", entry.ID, err)
		}
	}
	return nil
}

func (s *Service) HasOpen(ctx context.Context, sessionID string) (bool, error) {
	return s.repo.HasOpenForSession(ctx, sessionID)
}

func (s *Service) List(ctx context.Context, filter domrecon.ListFilter) ([]*domrecon.Entry, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domrecon.Entry, error) {
	return s.repo.GetByID(ctx, id)
}

// Resolve closes an open entry, which lets its session check out again.
func (s *Service) Resolve(ctx context.Context, id int64, resolvedBy, note string) (*domrecon.Entry, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, domrecon.ErrNoteRequired
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status == domrecon.StatusResolved {
		return nil, domrecon.ErrAlreadyResolved
	}

	entry, err := s.repo.Resolve(ctx, id, resolvedBy, note)
	if err != nil {
		return nil, err
	}
	log.Printf("[reconciliation] entry %d for payment %s resolved by %s", entry.ID, entry.PaymentReference, resolvedBy)
	return entry, nil
}
