// Command sendmail checks the SMTP relay used for operator alerts. By default
// it sends a short test message; -reconciliation sends a sample
// reconciliation alert so the operator template can be previewed in Mailpit.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	domrecon "example.com/voltcart/app/internal/domain/reconciliation"
	"example.com/voltcart/app/internal/infra/mail"
)

func main() {
	addr := flag.String("addr", "localhost:2025", "SMTP relay address")
	from := flag.String("from", "test@example.com", "sender address")
	to := flag.String("to", "hello@yopmail.com", "recipient address")
	user := flag.String("user", "", "SMTP username (PLAIN auth when set)")
	pass := flag.String("pass", "", "SMTP password")
	sample := flag.Bool("reconciliation", false, "send a sample reconciliation alert")
	flag.Parse()

	m := mail.NewMailer(*addr, *from, *to)
	if *user != "" {
		m = m.WithPlainAuth(*user, *pass)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	if *sample {
		err = m.NotifyReconciliation(ctx, &domrecon.Entry{
			ID:               1,
			AttemptID:        "sample-attempt",
			SessionID:        "sample-session",
			UserID:           1,
			IdempotencyKey:   "sample-key",
			PaymentReference: "pay_sample",
			AmountMinor:      50000,
			Currency:         "INR",
			Reason:           "order service timeout",
			Status:           domrecon.StatusOpen,
			CreatedAt:        time.Now().UTC(),
		})
	} else {
		err = m.Send(ctx, "Mailpit Test", "This is a test email sent via Mailpit SMTP.\r\n")
	}
	if err != nil {
		log.Fatal(err)
	}
	log.Println("Mail sent successfully!")
}
