package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	domorder "example.com/voltcart/app/internal/domain/order"
)

type orderItemDTO struct {
	ID        int64           `json:"id,omitempty"`
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int64           `json:"quantity"`
	Image     string          `json:"image,omitempty"`
}

type recordOrderRequest struct {
	UserID           int64           `json:"user_id"`
	SessionID        string          `json:"session_id"`
	PaymentReference string          `json:"payment_reference"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	Items            []orderItemDTO  `json:"items"`
}

type orderDTO struct {
	ID               int64           `json:"id"`
	UserID           int64           `json:"user_id"`
	SessionID        string          `json:"session_id"`
	IdempotencyKey   string          `json:"idempotency_key"`
	PaymentReference string          `json:"payment_reference"`
	Status           string          `json:"status"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	Items            []orderItemDTO  `json:"items"`
	CreatedAt        time.Time       `json:"created_at"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type statusStatsDTO struct {
	Status  string          `json:"status"`
	Count   int64           `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

// OrderClient records paid orders with the storefront backend and reads them
// back for order history. The backend deduplicates on the Idempotency-Key
// header.
type OrderClient struct {
	c *client
}

func NewOrderClient(opts Options) *OrderClient {
	return &OrderClient{c: newClient("orders", opts)}
}

func (oc *OrderClient) RecordOrder(ctx context.Context, rec domorder.Record) (*domorder.Order, error) {
	const op = "record order"
	if rec.IdempotencyKey == "" {
		return nil, domorder.ErrMissingIdempotency
	}
	if len(rec.Items) == 0 {
		return nil, domorder.ErrEmptyOrderItems
	}

	items := make([]orderItemDTO, 0, len(rec.Items))
	for _, it := range rec.Items {
		items = append(items, orderItemDTO{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Image:     it.Image,
		})
	}

	r, err := oc.c.do(ctx, op, http.MethodPost, "/orders",
		map[string]string{"Idempotency-Key": rec.IdempotencyKey},
		recordOrderRequest{
			UserID:           rec.UserID,
			SessionID:        rec.SessionID,
			PaymentReference: rec.PaymentReference,
			TotalAmount:      rec.TotalAmount,
			Items:            items,
		})
	if err != nil {
		return nil, err
	}
	if r.status != http.StatusOK && r.status != http.StatusCreated {
		return nil, fmt.Errorf("%s: backend refused order (%d): %s", op, r.status, reason(r))
	}

	var dto orderDTO
	if err := decode(op, r, &dto); err != nil {
		return nil, err
	}
	return dto.toDomain(rec.IdempotencyKey), nil
}

func (oc *OrderClient) List(ctx context.Context, filter domorder.ListFilter) ([]*domorder.Order, error) {
	const op = "list orders"
	q := url.Values{}
	if filter.UserID != nil {
		q.Set("user_id", strconv.FormatInt(*filter.UserID, 10))
	}
	if filter.Status != nil {
		q.Set("status", string(*filter.Status))
	}
	path := "/orders"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	r, err := oc.c.do(ctx, op, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	if r.status != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %d: %s", op, r.status, reason(r))
	}

	var dtos []orderDTO
	if err := decode(op, r, &dtos); err != nil {
		return nil, err
	}
	orders := make([]*domorder.Order, 0, len(dtos))
	for _, d := range dtos {
		orders = append(orders, d.toDomain(""))
	}
	return orders, nil
}

func (oc *OrderClient) GetByID(ctx context.Context, id int64) (*domorder.Order, error) {
	const op = "get order"
	r, err := oc.c.do(ctx, op, http.MethodGet, orderPath(id), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeOrder(op, r)
}

func (oc *OrderClient) UpdateStatus(ctx context.Context, id int64, status domorder.Status) (*domorder.Order, error) {
	const op = "update order status"
	r, err := oc.c.do(ctx, op, http.MethodPatch, orderPath(id), nil, updateStatusRequest{Status: string(status)})
	if err != nil {
		return nil, err
	}
	if r.status == http.StatusUnprocessableEntity || r.status == http.StatusBadRequest {
		return nil, fmt.Errorf("%w: %s", domorder.ErrInvalidStatus, reason(r))
	}
	return decodeOrder(op, r)
}

func (oc *OrderClient) Stats(ctx context.Context) ([]domorder.StatusStats, error) {
	const op = "order stats"
	r, err := oc.c.do(ctx, op, http.MethodGet, "/orders/stats", nil, nil)
	if err != nil {
		return nil, err
	}
	if r.status != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %d: %s", op, r.status, reason(r))
	}

	var dtos []statusStatsDTO
	if err := decode(op, r, &dtos); err != nil {
		return nil, err
	}
	stats := make([]domorder.StatusStats, 0, len(dtos))
	for _, d := range dtos {
		stats = append(stats, domorder.StatusStats{
			Status:  domorder.Status(d.Status),
			Count:   d.Count,
			Revenue: d.Revenue,
		})
	}
	return stats, nil
}

func orderPath(id int64) string {
	return "/orders/" + strconv.FormatInt(id, 10)
}

func decodeOrder(op string, r response) (*domorder.Order, error) {
	switch r.status {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, domorder.ErrOrderNotFound
	default:
		return nil, fmt.Errorf("%s: unexpected status %d: %s", op, r.status, reason(r))
	}

	var dto orderDTO
	if err := decode(op, r, &dto); err != nil {
		return nil, err
	}
	return dto.toDomain(""), nil
}

func (d orderDTO) toDomain(key string) *domorder.Order {
	o := &domorder.Order{
		ID:               d.ID,
		UserID:           d.UserID,
		SessionID:        d.SessionID,
		IdempotencyKey:   d.IdempotencyKey,
		PaymentReference: d.PaymentReference,
		Status:           domorder.Status(d.Status),
		TotalAmount:      d.TotalAmount,
		CreatedAt:        d.CreatedAt,
	}
	if o.IdempotencyKey == "" {
		o.IdempotencyKey = key
	}
	if !o.Status.IsValid() {
		o.Status = domorder.StatusPaid
	}
	for _, it := range d.Items {
		o.Items = append(o.Items, domorder.OrderItem{
			ID:        it.ID,
			OrderID:   d.ID,
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Image:     it.Image,
		})
	}
	return o
}
