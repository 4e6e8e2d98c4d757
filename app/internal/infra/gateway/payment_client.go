package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	domcheckout "example.com/voltcart/app/internal/domain/checkout"
	dompayment "example.com/voltcart/app/internal/domain/payment"
)

type authorizeRequest struct {
	AmountMinor    int64  `json:"amount_minor"`
	Currency       string `json:"currency"`
	MethodToken    string `json:"payment_method_token"`
	IdempotencyKey string `json:"idempotency_key"`
	Description    string `json:"description,omitempty"`
}

type authorizeResponse struct {
	Reference     string `json:"reference"`
	Status        string `json:"status"`
	FailureReason string `json:"failure_reason"`
	AmountMinor   int64  `json:"amount_minor"`
}

// PaymentClient authorizes charges with the payment provider.
type PaymentClient struct {
	c *client
}

func NewPaymentClient(opts Options) *PaymentClient {
	return &PaymentClient{c: newClient("payment", opts)}
}

// Authorize returns an Authorization for both approved and declined charges;
// a decline is only an error when the provider answers 402 or rejects the
// request outright.
func (pc *PaymentClient) Authorize(ctx context.Context, req dompayment.Request) (*dompayment.Authorization, error) {
	const op = "authorize payment"
	if req.AmountMinor <= 0 {
		return nil, dompayment.ErrInvalidAmount
	}
	if req.MethodToken == "" {
		return nil, dompayment.ErrMissingMethodToken
	}

	r, err := pc.c.do(ctx, op, http.MethodPost, "/payments/authorize",
		map[string]string{"Idempotency-Key": req.IdempotencyKey},
		authorizeRequest{
			AmountMinor:    req.AmountMinor,
			Currency:       req.Currency,
			MethodToken:    req.MethodToken,
			IdempotencyKey: req.IdempotencyKey,
			Description:    req.Description,
		})
	if err != nil {
		return nil, err
	}

	switch {
	case r.status == http.StatusOK || r.status == http.StatusCreated:
	case r.status == http.StatusPaymentRequired:
		var body authorizeResponse
		_ = decode(op, r, &body)
		msg := body.FailureReason
		if msg == "" {
			msg = reason(r)
		}
		return nil, &domcheckout.PaymentDeclinedError{Reason: msg, Reference: body.Reference}
	case r.status >= 400:
		return nil, fmt.Errorf("%w: provider rejected request (%d): %s", dompayment.ErrDeclined, r.status, reason(r))
	default:
		return nil, &domcheckout.NetworkError{Op: op, Err: fmt.Errorf("unexpected status %d", r.status)}
	}

	var body authorizeResponse
	if err := decode(op, r, &body); err != nil {
		return nil, err
	}

	auth := &dompayment.Authorization{
		Reference:     body.Reference,
		FailureReason: body.FailureReason,
		AmountMinor:   body.AmountMinor,
	}
	switch strings.ToLower(body.Status) {
	case "succeeded", "authorized", "captured":
		auth.Status = dompayment.StatusSucceeded
	default:
		auth.Status = dompayment.StatusDeclined
	}
	if auth.Succeeded() && auth.AmountMinor != 0 && auth.AmountMinor != req.AmountMinor {
		return nil, &dompayment.AmountMismatchError{
			Reference:  auth.Reference,
			Requested:  req.AmountMinor,
			Authorized: auth.AmountMinor,
		}
	}
	return auth, nil
}
