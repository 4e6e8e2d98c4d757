package http

import (
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	domcategory "example.com/voltcart/app/internal/domain/category"
	domproduct "example.com/voltcart/app/internal/domain/product"
	categoryuc "example.com/voltcart/app/internal/usecase/category"
	productuc "example.com/voltcart/app/internal/usecase/product"
)

var errInvalidPriceFormat = errors.New("price must be a decimal string such as \"19.90\"")

type createCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Slug        string `json:"slug" validate:"omitempty,max=255"`
	Description string `json:"description"`
	Image       string `json:"image" validate:"omitempty,max=500"`
	Position    int    `json:"position" validate:"gte=0"`
	IsActive    *bool  `json:"is_active"`
}

type updateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=255"`
	Slug        *string `json:"slug" validate:"omitempty,max=255"`
	Description *string `json:"description"`
	Image       *string `json:"image" validate:"omitempty,max=500"`
	Position    *int    `json:"position" validate:"omitempty,gte=0"`
	IsActive    *bool   `json:"is_active"`
}

// Prices travel as strings so no float ever touches money.
type createProductRequest struct {
	Name        string   `json:"name" validate:"required,max=255"`
	Description string   `json:"description"`
	Price       string   `json:"price" validate:"required"`
	Stock       int64    `json:"stock" validate:"gte=0"`
	CategoryID  int64    `json:"category_id" validate:"required,gt=0"`
	Images      []string `json:"images" validate:"omitempty,dive,required,max=500"`
	IsActive    *bool    `json:"is_active"`
}

type updateProductRequest struct {
	Name        *string  `json:"name" validate:"omitempty,max=255"`
	Description *string  `json:"description"`
	Price       *string  `json:"price"`
	Stock       *int64   `json:"stock"`
	CategoryID  *int64   `json:"category_id" validate:"omitempty,gt=0"`
	Images      []string `json:"images" validate:"omitempty,dive,required,max=500"`
	IsActive    *bool    `json:"is_active"`
}

func mapAdminCategory(c *domcategory.Category) map[string]any {
	out := mapCategory(c)
	out["is_active"] = c.IsActive
	return out
}

func mapAdminProduct(p *domproduct.Product) map[string]any {
	out := mapProduct(p)
	out["is_active"] = p.IsActive
	return out
}

func parsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errInvalidPriceFormat
	}
	return d, nil
}

func (a *API) handleAdminListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := a.categoryAdmin.List(r.Context())
	if err != nil {
		handleDomainError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(categories))
	for _, c := range categories {
		resp = append(resp, mapAdminCategory(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": resp})
}

func (a *API) handleAdminGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	c, err := a.categoryAdmin.GetByID(r.Context(), id)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapAdminCategory(c))
}

func (a *API) handleAdminCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	c, err := a.categoryAdmin.Create(r.Context(), categoryuc.CreateInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		ImageRef:    req.Image,
		Position:    req.Position,
		IsActive:    req.IsActive,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapAdminCategory(c))
}

func (a *API) handleAdminUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var req updateCategoryRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	c, err := a.categoryAdmin.Update(r.Context(), categoryuc.UpdateInput{
		ID:          id,
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		ImageRef:    req.Image,
		Position:    req.Position,
		IsActive:    req.IsActive,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapAdminCategory(c))
}

func (a *API) handleAdminDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.categoryAdmin.Delete(r.Context(), id); err != nil {
		handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleAdminListProducts(w http.ResponseWriter, r *http.Request) {
	filter, err := parseProductFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	products, err := a.productAdmin.List(r.Context(), filter)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(products))
	for _, p := range products {
		resp = append(resp, mapAdminProduct(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": resp})
}

func (a *API) handleAdminGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	p, err := a.productAdmin.GetByID(r.Context(), id)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapAdminProduct(p))
}

func (a *API) handleAdminCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	price, err := parsePrice(req.Price)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	p, err := a.productAdmin.Create(r.Context(), productuc.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
		ImageRefs:   req.Images,
		IsActive:    req.IsActive,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapAdminProduct(p))
}

func (a *API) handleAdminUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var req updateProductRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	in := productuc.UpdateInput{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
		ImageRefs:   req.Images,
		IsActive:    req.IsActive,
	}
	if req.Price != nil {
		price, err := parsePrice(*req.Price)
		if err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		in.Price = &price
	}

	p, err := a.productAdmin.Update(r.Context(), in)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapAdminProduct(p))
}

func (a *API) handleAdminDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.productAdmin.Delete(r.Context(), id); err != nil {
		handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
