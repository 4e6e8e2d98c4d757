package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCanceled  Status = "CANCELED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusShipped, StatusDelivered, StatusCanceled:
		return true
	default:
		return false
	}
}

type Order struct {
	ID               int64
	UserID           int64
	SessionID        string
	IdempotencyKey   string
	PaymentReference string
	Status           Status
	TotalAmount      decimal.Decimal
	Items            []OrderItem
	CreatedAt        time.Time
}

type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int64
	Image     string
}

// Record is what the checkout hands the order gateway once payment is
// confirmed. IdempotencyKey makes a replayed request return the first order
// instead of creating a second one.
type Record struct {
	UserID           int64
	SessionID        string
	IdempotencyKey   string
	PaymentReference string
	TotalAmount      decimal.Decimal
	Items            []OrderItem
}

type ListFilter struct {
	UserID *int64
	Status *Status
}

type StatusStats struct {
	Status  Status
	Count   int64
	Revenue decimal.Decimal
}
