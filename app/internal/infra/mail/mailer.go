package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	dompayment "example.com/voltcart/app/internal/domain/payment"
	domrecon "example.com/voltcart/app/internal/domain/reconciliation"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends plain-text mail through an SMTP relay (Mailpit in development).
type Mailer struct {
	addr string
	from string
	to   []string
	auth smtp.Auth
	send sendFunc
}

func NewMailer(addr, from string, to ...string) *Mailer {
	return &Mailer{
		addr: addr,
		from: from,
		to:   to,
		send: smtp.SendMail,
	}
}

// WithPlainAuth enables PLAIN authentication against the relay host.
func (m *Mailer) WithPlainAuth(username, password string) *Mailer {
	host := m.addr
	if i := strings.LastIndex(host, ":"); i >= 0 {
		host = host[:i]
	}
	m.auth = smtp.PlainAuth("", username, password, host)
	return m
}

func (m *Mailer) Send(ctx context.Context, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(m.to) == 0 {
		return fmt.Errorf("mail %q: no recipients", subject)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(m.to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))

	if err := m.send(m.addr, m.auth, m.from, m.to, []byte(b.String())); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// NotifyReconciliation mails the operator everything needed to match the
// captured payment to an order by hand.
func (m *Mailer) NotifyReconciliation(ctx context.Context, e *domrecon.Entry) error {
	subject := fmt.Sprintf("[voltcart] Reconciliation required: payment %s", e.PaymentReference)

	var b strings.Builder
	b.WriteString("A payment was captured but its order could not be recorded.\n\n")
	fmt.Fprintf(&b, "Entry:             #%d\n", e.ID)
	fmt.Fprintf(&b, "Payment reference: %s\n", e.PaymentReference)
	fmt.Fprintf(&b, "Amount:            %s %s\n", dompayment.FromMinorUnits(e.AmountMinor).StringFixed(2), e.Currency)
	fmt.Fprintf(&b, "Idempotency key:   %s\n", e.IdempotencyKey)
	fmt.Fprintf(&b, "Attempt:           %s\n", e.AttemptID)
	fmt.Fprintf(&b, "Session:           %s\n", e.SessionID)
	fmt.Fprintf(&b, "User:              %d\n", e.UserID)
	fmt.Fprintf(&b, "Occurred at:       %s\n", e.CreatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Reason:            %s\n", e.Reason)
	b.WriteString("\nResolve it from the back office once the order has been created or the payment refunded.\n")

	return m.Send(ctx, subject, b.String())
}
