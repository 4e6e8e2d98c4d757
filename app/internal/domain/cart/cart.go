package cart

import (
	"time"

	"github.com/shopspring/decimal"

	domproduct "example.com/voltcart/app/internal/domain/product"
)

// LineItem is one product snapshot plus how many of it the session wants.
// Quantity is always >= 1 while the item is in a cart.
type LineItem struct {
	Product  domproduct.Product
	Quantity int64
}

func (li LineItem) Subtotal() decimal.Decimal {
	return li.Product.Price.Mul(decimal.NewFromInt(li.Quantity))
}

type Totals struct {
	TotalItems int64
	TotalPrice decimal.Decimal
}

// Snapshot is a frozen copy of a cart. It shares no memory with the Store it
// was taken from, so later edits to the cart never reach it.
type Snapshot struct {
	Items      []LineItem
	Totals     Totals
	CapturedAt time.Time
}

func (s Snapshot) IsEmpty() bool {
	return len(s.Items) == 0
}

// Clone returns a copy of s that shares no slices with it.
func (s Snapshot) Clone() Snapshot {
	cp := s
	if s.Items != nil {
		cp.Items = cloneItems(s.Items)
	}
	return cp
}

func computeTotals(items []LineItem) Totals {
	t := Totals{TotalPrice: decimal.Zero}
	for _, item := range items {
		t.TotalItems += item.Quantity
		t.TotalPrice = t.TotalPrice.Add(item.Subtotal())
	}
	return t
}

func cloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	for i, item := range items {
		out[i] = LineItem{
			Product:  item.Product.Clone(),
			Quantity: item.Quantity,
		}
	}
	return out
}
