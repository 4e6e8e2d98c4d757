package http

import (
	"net/http"
)

// addCartItemRequest adjusts a line item by Quantity, which may be negative.
// A missing quantity adds one unit.
type addCartItemRequest struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	Quantity  *int64 `json:"quantity" validate:"omitempty,ne=0"`
}

type updateCartItemRequest struct {
	Quantity *int64 `json:"quantity" validate:"required"`
}

func (a *API) handleGetCart(w http.ResponseWriter, r *http.Request) {
	user := getAuthUser(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, errUnauthenticated)
		return
	}

	view := a.cartSvc.GetCart(r.Context(), user.SessionID)
	writeJSON(w, http.StatusOK, mapCart(view))
}

func (a *API) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	user := getAuthUser(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, errUnauthenticated)
		return
	}

	var req addCartItemRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	delta := int64(1)
	if req.Quantity != nil {
		delta = *req.Quantity
	}

	view, err := a.cartSvc.AddItem(r.Context(), user.SessionID, req.ProductID, delta)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(view))
}

func (a *API) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	user := getAuthUser(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, errUnauthenticated)
		return
	}

	productID, err := parseIDParam(r, "productID")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var req updateCartItemRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	view, err := a.cartSvc.UpdateQuantity(r.Context(), user.SessionID, productID, *req.Quantity)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(view))
}

func (a *API) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	user := getAuthUser(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, errUnauthenticated)
		return
	}

	productID, err := parseIDParam(r, "productID")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	view := a.cartSvc.RemoveItem(r.Context(), user.SessionID, productID)
	writeJSON(w, http.StatusOK, mapCart(view))
}

func (a *API) handleClearCart(w http.ResponseWriter, r *http.Request) {
	user := getAuthUser(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, errUnauthenticated)
		return
	}

	view := a.cartSvc.Clear(r.Context(), user.SessionID)
	writeJSON(w, http.StatusOK, mapCart(view))
}
