package http

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	productuc "example.com/voltcart/app/internal/usecase/product"
)

func TestAdminCategoryCRUDFlow(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, testAdmin, "admin-session")

	rec := env.do(newAuthenticatedRequest(http.MethodPost, "/api/v1/admin/categories", token, map[string]any{
		"name":        "Fans & Coolers",
		"description": "Keep it cool",
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody(t, rec)
	require.Equal(t, "fans-coolers", created["slug"])
	require.Equal(t, true, created["is_active"])
	path := "/api/v1/admin/categories/" + strconv.Itoa(int(created["id"].(float64)))

	rec = env.do(newAuthenticatedRequest(http.MethodGet, "/api/v1/admin/categories", token, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decodeBody(t, rec)["data"], 4)

	rec = env.do(newAuthenticatedRequest(http.MethodPut, path, token, map[string]any{
		"slug":      "cooling",
		"is_active": false,
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeBody(t, rec)
	require.Equal(t, "Fans & Coolers", updated["name"])
	require.Equal(t, "cooling", updated["slug"])
	require.Equal(t, false, updated["is_active"])

	rec = env.do(newAuthenticatedRequest(http.MethodGet, "/api/v1/categories", "", nil))
	require.Len(t, decodeBody(t, rec)["data"], 2)

	rec = env.do(newAuthenticatedRequest(http.MethodDelete, path, token, nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(newAuthenticatedRequest(http.MethodGet, path, token, nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminCategory_Errors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{name: "Duplicate slug", method: http.MethodPost, path: "/api/v1/admin/categories", body: map[string]any{"name": "Lighting"}, status: http.StatusConflict},
		{name: "Invalid slug", method: http.MethodPost, path: "/api/v1/admin/categories", body: map[string]any{"name": "Tools", "slug": "Tools!"}, status: http.StatusUnprocessableEntity},
		{name: "Missing name", method: http.MethodPost, path: "/api/v1/admin/categories", body: map[string]any{"slug": "tools"}, status: http.StatusBadRequest},
		{name: "Rename onto taken slug", method: http.MethodPut, path: "/api/v1/admin/categories/2", body: map[string]any{"slug": "lighting"}, status: http.StatusConflict},
		{name: "Update missing", method: http.MethodPut, path: "/api/v1/admin/categories/99", body: map[string]any{"name": "X"}, status: http.StatusNotFound},
		{name: "Delete in use", method: http.MethodDelete, path: "/api/v1/admin/categories/2", status: http.StatusConflict},
		{name: "Delete unused", method: http.MethodDelete, path: "/api/v1/admin/categories/3", status: http.StatusNoContent},
		{name: "Bad id", method: http.MethodGet, path: "/api/v1/admin/categories/abc", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			token := env.token(t, testAdmin, "admin-session")
			rec := env.do(newAuthenticatedRequest(tt.method, tt.path, token, tt.body))
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestAdminCatalog_CustomerForbidden(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, testCustomer, "sess-1")

	for _, path := range []string{"/api/v1/admin/categories", "/api/v1/admin/products", "/api/v1/admin/users"} {
		rec := env.do(newAuthenticatedRequest(http.MethodGet, path, token, nil))
		require.Equal(t, http.StatusForbidden, rec.Code, path)
	}
}

func TestAdminProductCRUDFlow(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, testAdmin, "admin-session")

	rec := env.do(newAuthenticatedRequest(http.MethodPost, "/api/v1/admin/products", token, map[string]any{
		"name":        "Smart Plug",
		"price":       "19.90",
		"stock":       25,
		"category_id": 2,
		"images":      []string{"plug.png"},
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody(t, rec)
	require.Equal(t, "19.90", created["price"])
	require.Equal(t, true, created["is_active"])
	id := int64(created["id"].(float64))
	path := "/api/v1/admin/products/" + strconv.FormatInt(id, 10)

	rec = env.do(newAuthenticatedRequest(http.MethodPut, path, token, map[string]any{
		"price":     "17.50",
		"is_active": false,
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.True(t, env.products.products[id].Price.Equal(decimal.RequireFromString("17.50")))
	require.Equal(t, []string{"plug.png"}, env.products.products[id].ImageRefs)

	rec = env.do(newAuthenticatedRequest(http.MethodGet, "/api/v1/products/"+strconv.FormatInt(id, 10), "", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(newAuthenticatedRequest(http.MethodGet, path, token, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, false, decodeBody(t, rec)["is_active"])

	rec = env.do(newAuthenticatedRequest(http.MethodDelete, path, token, nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotContains(t, env.products.products, id)
}

func TestAdminListProducts_IncludesInactive(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		status int
		count  int
	}{
		{name: "All", query: "", status: http.StatusOK, count: 3},
		{name: "Lighting", query: "?category_id=1", status: http.StatusOK, count: 2},
		{name: "Search", query: "?q=fan", status: http.StatusOK, count: 1},
		{name: "Bad category", query: "?category_id=x", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			token := env.token(t, testAdmin, "admin-session")

			rec := env.do(newAuthenticatedRequest(http.MethodGet, "/api/v1/admin/products"+tt.query, token, nil))

			require.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				require.Len(t, decodeBody(t, rec)["data"], tt.count)
			}
		})
	}
}

func TestAdminProduct_Errors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{name: "Float price rejected", method: http.MethodPost, path: "/api/v1/admin/products", body: map[string]any{"name": "Lamp", "price": 9.5, "category_id": 1}, status: http.StatusBadRequest},
		{name: "Malformed price", method: http.MethodPost, path: "/api/v1/admin/products", body: map[string]any{"name": "Lamp", "price": "nine", "category_id": 1}, status: http.StatusBadRequest},
		{name: "Negative price", method: http.MethodPost, path: "/api/v1/admin/products", body: map[string]any{"name": "Lamp", "price": "-1", "category_id": 1}, status: http.StatusUnprocessableEntity},
		{name: "Unknown category", method: http.MethodPost, path: "/api/v1/admin/products", body: map[string]any{"name": "Lamp", "price": "5", "category_id": 42}, status: http.StatusUnprocessableEntity},
		{name: "Negative stock on update", method: http.MethodPut, path: "/api/v1/admin/products/1", body: map[string]any{"stock": -3}, status: http.StatusUnprocessableEntity},
		{name: "Update missing", method: http.MethodPut, path: "/api/v1/admin/products/99", body: map[string]any{"name": "X"}, status: http.StatusNotFound},
		{name: "Delete missing", method: http.MethodDelete, path: "/api/v1/admin/products/99", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			token := env.token(t, testAdmin, "admin-session")
			rec := env.do(newAuthenticatedRequest(tt.method, tt.path, token, tt.body))
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestAdminProduct_ReadOnlyCatalogConflicts(t *testing.T) {
	env := newTestEnv(t)
	env.api.productAdmin = productuc.NewAdminService(env.products, nil, env.categories)
	env.router = env.api.Router()
	token := env.token(t, testAdmin, "admin-session")

	rec := env.do(newAuthenticatedRequest(http.MethodPost, "/api/v1/admin/products", token, map[string]any{
		"name": "Lamp", "price": "5", "category_id": 1,
	}))
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(newAuthenticatedRequest(http.MethodDelete, "/api/v1/admin/products/1", token, nil))
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, env.products.products, int64(1))

	rec = env.do(newAuthenticatedRequest(http.MethodGet, "/api/v1/admin/products/3", token, nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
