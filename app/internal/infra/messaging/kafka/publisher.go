package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	domcheckout "example.com/voltcart/app/internal/domain/checkout"
	domrecon "example.com/voltcart/app/internal/domain/reconciliation"
)

const (
	EventOrderRecorded          = "checkout.order_recorded"
	EventReconciliationRequired = "checkout.reconciliation_required"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type OrderRecordedEvent struct {
	EventID          string    `json:"event_id"`
	Type             string    `json:"type"`
	AttemptID        string    `json:"attempt_id"`
	SessionID        string    `json:"session_id"`
	UserID           int64     `json:"user_id"`
	OrderID          int64     `json:"order_id"`
	PaymentReference string    `json:"payment_reference"`
	AmountMinor      int64     `json:"amount_minor"`
	Currency         string    `json:"currency"`
	TotalItems       int64     `json:"total_items"`
	OccurredAt       time.Time `json:"occurred_at"`
}

type ReconciliationRequiredEvent struct {
	EventID          string    `json:"event_id"`
	Type             string    `json:"type"`
	EntryID          int64     `json:"entry_id"`
	AttemptID        string    `json:"attempt_id"`
	SessionID        string    `json:"session_id"`
	UserID           int64     `json:"user_id"`
	IdempotencyKey   string    `json:"idempotency_key"`
	PaymentReference string    `json:"payment_reference"`
	AmountMinor      int64     `json:"amount_minor"`
	Currency         string    `json:"currency"`
	Reason           string    `json:"reason"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// Publisher writes checkout events to two topics, keyed so that all events
// of one session land on the same partition.
type Publisher struct {
	orders          messageWriter
	reconciliations messageWriter
	now             func() time.Time
}

func NewPublisher(brokers []string, orderTopic, reconciliationTopic string) *Publisher {
	return &Publisher{
		orders:          newWriter(brokers, orderTopic),
		reconciliations: newWriter(brokers, reconciliationTopic),
		now:             time.Now,
	}
}

func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}

func (p *Publisher) PublishOrderRecorded(ctx context.Context, a domcheckout.Attempt) error {
	if a.Order == nil {
		return errors.New("attempt has no recorded order")
	}
	event := OrderRecordedEvent{
		EventID:          uuid.NewString(),
		Type:             EventOrderRecorded,
		AttemptID:        a.ID,
		SessionID:        a.SessionID,
		UserID:           a.UserID,
		OrderID:          a.Order.ID,
		PaymentReference: a.PaymentReference,
		AmountMinor:      a.AmountMinor,
		Currency:         a.Currency,
		TotalItems:       a.Snapshot.Totals.TotalItems,
		OccurredAt:       p.now().UTC(),
	}
	return p.write(ctx, p.orders, a.SessionID, event)
}

func (p *Publisher) NotifyReconciliation(ctx context.Context, e *domrecon.Entry) error {
	event := ReconciliationRequiredEvent{
		EventID:          uuid.NewString(),
		Type:             EventReconciliationRequired,
		EntryID:          e.ID,
		AttemptID:        e.AttemptID,
		SessionID:        e.SessionID,
		UserID:           e.UserID,
		IdempotencyKey:   e.IdempotencyKey,
		PaymentReference: e.PaymentReference,
		AmountMinor:      e.AmountMinor,
		Currency:         e.Currency,
		Reason:           e.Reason,
		OccurredAt:       e.CreatedAt,
	}
	return p.write(ctx, p.reconciliations, e.SessionID, event)
}

func (p *Publisher) write(ctx context.Context, w messageWriter, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  p.now(),
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
			{Key: "schema-version", Value: []byte("1")},
		},
	}
	if err := w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return errors.Join(p.orders.Close(), p.reconciliations.Close())
}
