package cart

import (
	"sync"
	"time"

	domproduct "example.com/voltcart/app/internal/domain/product"
)

// Store holds the line items of one session's cart and is the only way to
// mutate them. Totals are derived on every read.
type Store struct {
	mu    sync.Mutex
	items []LineItem
	now   func() time.Time
}

func NewStore() *Store {
	return &Store{
		items: []LineItem{},
		now:   time.Now,
	}
}

// AddItem applies delta to the line item for p. A product not yet in the cart
// is only added for a positive delta; an item whose quantity drops to zero or
// below is removed.
func (s *Store) AddItem(p domproduct.Product, delta int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(p.ID)
	if idx < 0 {
		if delta <= 0 {
			return
		}
		s.items = append(s.items, LineItem{
			Product:  p.Clone(),
			Quantity: max(delta, 1),
		})
		return
	}

	next := s.items[idx].Quantity + delta
	if next <= 0 {
		s.removeAt(idx)
		return
	}
	s.items[idx].Quantity = next
}

func (s *Store) RemoveItem(productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx := s.indexOf(productID); idx >= 0 {
		s.removeAt(idx)
	}
}

// UpdateQuantity sets an absolute quantity. Zero removes the item; a negative
// value is rejected and leaves the cart as it was.
func (s *Store) UpdateQuantity(productID int64, quantity int64) error {
	if quantity < 0 {
		return ErrNegativeQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(productID)
	if idx < 0 {
		return nil
	}
	if quantity == 0 {
		s.removeAt(idx)
		return nil
	}
	s.items[idx].Quantity = quantity
	return nil
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = []LineItem{}
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.items)
}

func (s *Store) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return computeTotals(s.items)
}

func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) == 0
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := cloneItems(s.items)
	return Snapshot{
		Items:      items,
		Totals:     computeTotals(items),
		CapturedAt: s.now().UTC(),
	}
}

func (s *Store) indexOf(productID int64) int {
	for i, item := range s.items {
		if item.Product.ID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) removeAt(idx int) {
	s.items = append(s.items[:idx], s.items[idx+1:]...)
}
