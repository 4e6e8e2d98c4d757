package http

import (
	"errors"
	"net/http"
	"strconv"

	domproduct "example.com/voltcart/app/internal/domain/product"
)

var errInvalidCategoryID = errors.New("category_id must be a positive integer")

// parseProductFilter reads the q and category_id query parameters.
func parseProductFilter(r *http.Request) (domproduct.ListFilter, error) {
	filter := domproduct.ListFilter{Search: r.URL.Query().Get("q")}
	if cid := r.URL.Query().Get("category_id"); cid != "" {
		id, err := strconv.ParseInt(cid, 10, 64)
		if err != nil || id <= 0 {
			return filter, errInvalidCategoryID
		}
		filter.CategoryID = &id
	}
	return filter, nil
}

func (a *API) handleListProducts(w http.ResponseWriter, r *http.Request) {
	filter, err := parseProductFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	filter.OnlyActive = true

	products, err := a.productSvc.List(r.Context(), filter)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	resp := make([]map[string]any, 0, len(products))
	for _, p := range products {
		resp = append(resp, mapProduct(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": resp})
}

func (a *API) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	p, err := a.productSvc.GetByID(r.Context(), id)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProduct(p))
}

func (a *API) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := a.categorySvc.List(r.Context())
	if err != nil {
		handleDomainError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(categories))
	for _, c := range categories {
		resp = append(resp, mapCategory(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": resp})
}

func (a *API) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	c, err := a.categorySvc.GetByID(r.Context(), id)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCategory(c))
}
