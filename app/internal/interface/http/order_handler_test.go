package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	domorder "example.com/voltcart/app/internal/domain/order"
)

func seedOrders(env *testEnv) {
	env.orders.seed(&domorder.Order{ID: 1, UserID: testCustomer.ID, Status: domorder.StatusPaid, TotalAmount: decimal.RequireFromString("100"), CreatedAt: time.Now()})
	env.orders.seed(&domorder.Order{ID: 2, UserID: 999, Status: domorder.StatusShipped, TotalAmount: decimal.RequireFromString("50"), CreatedAt: time.Now()})
	env.orders.seed(&domorder.Order{ID: 3, UserID: testCustomer.ID, Status: domorder.StatusShipped, TotalAmount: decimal.RequireFromString("25.50"), CreatedAt: time.Now()})
}

func TestListMyOrders_OnlyOwnOrders(t *testing.T) {
	env := newTestEnv(t)
	seedOrders(env)
	token := env.token(t, testCustomer, "s1")

	rec := env.do(newAuthenticatedRequest(http.MethodGet, "/api/v1/me/orders", token, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].([]any)
	require.Len(t, data, 2)
	require.Equal(t, float64(3), data[0].(map[string]any)["id"])
}

func TestGetMyOrder(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		status int
	}{
		{name: "Own order", path: "/api/v1/me/orders/1", status: http.StatusOK},
		{name: "Other user's order", path: "/api/v1/me/orders/2", status: http.StatusNotFound},
		{name: "Missing", path: "/api/v1/me/orders/77", status: http.StatusNotFound},
		{name: "Bad id", path: "/api/v1/me/orders/abc", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			seedOrders(env)
			token := env.token(t, testCustomer, "s1")

			rec := env.do(newAuthenticatedRequest(http.MethodGet, tt.path, token, nil))

			require.Equal(t, tt.status, rec.Code)
		})
	}
}
