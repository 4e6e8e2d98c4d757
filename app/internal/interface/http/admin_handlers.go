package http

import (
	"net/http"
	"strings"

	domorder "example.com/voltcart/app/internal/domain/order"
	domrecon "example.com/voltcart/app/internal/domain/reconciliation"
)

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type resolveReconciliationRequest struct {
	Note string `json:"note" validate:"required"`
}

func (a *API) handleListOrders(w http.ResponseWriter, r *http.Request) {
	var filter domorder.ListFilter
	if s := r.URL.Query().Get("status"); s != "" {
		status := domorder.Status(strings.ToUpper(s))
		filter.Status = &status
	}

	orders, err := a.orderSvc.List(r.Context(), filter)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, mapOrder(o))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": resp})
}

func (a *API) handleOrderStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.orderSvc.Stats(r.Context())
	if err != nil {
		handleDomainError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(stats))
	for _, s := range stats {
		resp = append(resp, map[string]any{
			"status":  s.Status,
			"count":   s.Count,
			"revenue": s.Revenue.StringFixed(2),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": resp})
}

func (a *API) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	order, err := a.orderSvc.GetByID(r.Context(), id)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(order))
}

func (a *API) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var req updateOrderStatusRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	status := domorder.Status(strings.ToUpper(req.Status))
	order, err := a.orderSvc.UpdateStatus(r.Context(), id, status)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(order))
}

// handleListReconciliations lists open entries unless ?status= asks for
// another state; status=all lists every entry.
func (a *API) handleListReconciliations(w http.ResponseWriter, r *http.Request) {
	var filter domrecon.ListFilter
	switch s := strings.ToUpper(r.URL.Query().Get("status")); s {
	case "ALL":
	case "":
		open := domrecon.StatusOpen
		filter.Status = &open
	default:
		status := domrecon.Status(s)
		filter.Status = &status
	}

	entries, err := a.reconSvc.List(r.Context(), filter)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, mapReconciliation(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": resp})
}

func (a *API) handleGetReconciliation(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	entry, err := a.reconSvc.GetByID(r.Context(), id)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapReconciliation(entry))
}

func (a *API) handleResolveReconciliation(w http.ResponseWriter, r *http.Request) {
	user := getAuthUser(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, errUnauthenticated)
		return
	}

	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var req resolveReconciliationRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	entry, err := a.reconSvc.Resolve(r.Context(), id, user.Email, req.Note)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapReconciliation(entry))
}
