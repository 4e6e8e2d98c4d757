package http

import (
	"errors"
	"net/http"

	domcheckout "example.com/voltcart/app/internal/domain/checkout"
	checkoutuc "example.com/voltcart/app/internal/usecase/checkout"
)

var errNoCheckout = errors.New("no checkout attempt for this session")

type checkoutRequest struct {
	PaymentMethodToken string `json:"payment_method_token" validate:"required"`
}

type checkoutErrorResponse struct {
	Error     string           `json:"error"`
	Kind      domcheckout.Kind `json:"kind"`
	Retryable bool             `json:"retryable"`
	Attempt   map[string]any   `json:"attempt,omitempty"`
}

func (a *API) handleCheckout(w http.ResponseWriter, r *http.Request) {
	user := getAuthUser(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, errUnauthenticated)
		return
	}

	var req checkoutRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	attempt, err := a.checkoutSvc.Checkout(r.Context(), checkoutuc.Input{
		SessionID:          user.SessionID,
		UserID:             user.UserID,
		PaymentMethodToken: req.PaymentMethodToken,
	})
	if err != nil {
		respondCheckoutError(w, attempt, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapAttempt(attempt))
}

func (a *API) handleGetCheckout(w http.ResponseWriter, r *http.Request) {
	user := getAuthUser(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, errUnauthenticated)
		return
	}

	attempt, ok := a.checkoutSvc.LastAttempt(user.SessionID)
	if !ok {
		respondError(w, http.StatusNotFound, errNoCheckout)
		return
	}
	writeJSON(w, http.StatusOK, mapAttempt(attempt))
}

func respondCheckoutError(w http.ResponseWriter, attempt *domcheckout.Attempt, err error) {
	kind := domcheckout.KindOf(err)
	resp := checkoutErrorResponse{
		Error:     err.Error(),
		Kind:      kind,
		Retryable: domcheckout.IsRetryable(err),
	}
	if attempt != nil {
		resp.Attempt = mapAttempt(attempt)
	}
	writeJSON(w, checkoutStatus(kind, err), resp)
}

func checkoutStatus(kind domcheckout.Kind, err error) int {
	switch kind {
	case domcheckout.KindValidation:
		if errors.Is(err, domcheckout.ErrCheckoutInProgress) || errors.Is(err, domcheckout.ErrReconciliationPending) {
			return http.StatusConflict
		}
		return http.StatusUnprocessableEntity
	case domcheckout.KindPaymentDeclined:
		return http.StatusPaymentRequired
	case domcheckout.KindNetwork:
		return http.StatusServiceUnavailable
	case domcheckout.KindCanceled:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}
