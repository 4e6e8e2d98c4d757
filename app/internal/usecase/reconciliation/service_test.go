package reconciliation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domcheckout "example.com/voltcart/app/internal/domain/checkout"
	domrecon "example.com/voltcart/app/internal/domain/reconciliation"
)

type mockLedger struct {
	entries   map[int64]*domrecon.Entry
	nextID    int64
	createErr error
}

func newMockLedger() *mockLedger {
	return &mockLedger{entries: make(map[int64]*domrecon.Entry), nextID: 1}
}

func (m *mockLedger) Create(ctx context.Context, e *domrecon.Entry) (*domrecon.Entry, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	cloned := *e
	cloned.ID = m.nextID
	m.nextID++
	m.entries[cloned.ID] = &cloned
	out := cloned
	return &out, nil
}

func (m *mockLedger) GetByID(ctx context.Context, id int64) (*domrecon.Entry, error) {
	e, ok := m.entries[id]
	if !ok {
		return nil, domrecon.ErrEntryNotFound
	}
	cloned := *e
	return &cloned, nil
}

func (m *mockLedger) List(ctx context.Context, filter domrecon.ListFilter) ([]*domrecon.Entry, error) {
	var result []*domrecon.Entry
	for _, e := range m.entries {
		if filter.Status != nil && e.Status != *filter.Status {
			continue
		}
		cloned := *e
		result = append(result, &cloned)
	}
	return result, nil
}

func (m *mockLedger) Resolve(ctx context.Context, id int64, resolvedBy, note string) (*domrecon.Entry, error) {
	e, ok := m.entries[id]
	if !ok {
		return nil, domrecon.ErrEntryNotFound
	}
	now := time.Now()
	e.Status = domrecon.StatusResolved
	e.ResolvedAt = &now
	e.ResolvedBy = resolvedBy
	e.Note = note
	cloned := *e
	return &cloned, nil
}

func (m *mockLedger) HasOpenForSession(ctx context.Context, sessionID string) (bool, error) {
	for _, e := range m.entries {
		if e.SessionID == sessionID && e.Status == domrecon.StatusOpen {
			return true, nil
		}
	}
	return false, nil
}

type mockNotifier struct {
	notified []*domrecon.Entry
	err      error
}

func (m *mockNotifier) NotifyReconciliation(ctx context.Context, e *domrecon.Entry) error {
	m.notified = append(m.notified, e)
	return m.err
}

func sampleError() *domcheckout.ReconciliationError {
	return &domcheckout.ReconciliationError{
		AttemptID:        "att-1",
		SessionID:        "sess-1",
		UserID:           4,
		IdempotencyKey:   "key-1",
		PaymentReference: "pay_1",
		AmountMinor:      50000,
		Currency:         "INR",
		OccurredAt:       time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC),
		Err:              context.DeadlineExceeded,
	}
}

func TestReport_WritesLedgerAndNotifies(t *testing.T) {
	ledger := newMockLedger()
	events := &mockNotifier{}
	mail := &mockNotifier{err: errors.New("smtp down")}
	svc := NewService(ledger, events, mail)

	err := svc.Report(context.Background(), sampleError())

	require.NoError(t, err, "notifier failures must not fail the report")
	require.Len(t, ledger.entries, 1)
	e := ledger.entries[1]
	require.Equal(t, domrecon.StatusOpen, e.Status)
	require.Equal(t, "pay_1", e.PaymentReference)
	require.Equal(t, int64(50000), e.AmountMinor)
	require.Equal(t, context.DeadlineExceeded.Error(), e.Reason)
	require.Len(t, events.notified, 1)
	require.Len(t, mail.notified, 1)

	open, err := svc.HasOpen(context.Background(), "sess-1")
	require.NoError(t, err)
	require.True(t, open)
}

func TestReport_LedgerFailure(t *testing.T) {
	ledger := newMockLedger()
	ledger.createErr = errors.New("pg down")
	events := &mockNotifier{}
	svc := NewService(ledger, events)

	err := svc.Report(context.Background(), sampleError())

	require.Error(t, err)
	require.Empty(t, events.notified)
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		id      int64
		note    string
		prepare func(l *mockLedger)
		wantErr error
	}{
		{name: "Resolves open entry", id: 1, note: "order 812 created by hand"},
		{name: "Note required", id: 1, note: "   ", wantErr: domrecon.ErrNoteRequired},
		{name: "Unknown entry", id: 9, note: "x", wantErr: domrecon.ErrEntryNotFound},
		{
			name: "Already resolved",
			id:   1,
			note: "again",
			prepare: func(l *mockLedger) {
				l.entries[1].Status = domrecon.StatusResolved
			},
			wantErr: domrecon.ErrAlreadyResolved,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := newMockLedger()
			svc := NewService(ledger)
			require.NoError(t, svc.Report(context.Background(), sampleError()))
			if tt.prepare != nil {
				tt.prepare(ledger)
			}

			e, err := svc.Resolve(context.Background(), tt.id, "ops@example.com", tt.note)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, domrecon.StatusResolved, e.Status)
			require.Equal(t, "ops@example.com", e.ResolvedBy)

			open, err := svc.HasOpen(context.Background(), "sess-1")
			require.NoError(t, err)
			require.False(t, open)
		})
	}
}

func TestList_ByStatus(t *testing.T) {
	ledger := newMockLedger()
	svc := NewService(ledger)
	require.NoError(t, svc.Report(context.Background(), sampleError()))
	require.NoError(t, svc.Report(context.Background(), sampleError()))
	_, err := svc.Resolve(context.Background(), 1, "ops", "done")
	require.NoError(t, err)

	open := domrecon.StatusOpen
	entries, err := svc.List(context.Background(), domrecon.ListFilter{Status: &open})

	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, int64(2), entries[0].ID)
}
