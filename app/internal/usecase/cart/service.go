package cart

import (
	"context"
	"sync"
	"time"

	domcart "example.com/voltcart/app/internal/domain/cart"
	domproduct "example.com/voltcart/app/internal/domain/product"
)

type ProductCatalog interface {
	GetByID(ctx context.Context, id int64) (*domproduct.Product, error)
}

type View struct {
	SessionID string
	Items     []domcart.LineItem
	Totals    domcart.Totals
}

type session struct {
	store    *domcart.Store
	lastSeen time.Time
}

// Service owns one cart Store per browser session. Carts live only in memory
// and disappear with the session.
type Service struct {
	catalog ProductCatalog
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

func NewService(catalog ProductCatalog) *Service {
	return &Service{
		catalog:  catalog,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// Store returns the cart of sessionID, creating an empty one on first use.
func (s *Service) Store(sessionID string) *domcart.Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &session{store: domcart.NewStore()}
		s.sessions[sessionID] = sess
	}
	sess.lastSeen = s.now()
	return sess.store
}

// AddItem applies delta to the product's line item. Products already in the
// cart keep the snapshot taken when they were first added; only new products
// are looked up in the catalog.
func (s *Service) AddItem(ctx context.Context, sessionID string, productID int64, delta int64) (*View, error) {
	store := s.Store(sessionID)

	if existing, ok := findItem(store.Items(), productID); ok {
		store.AddItem(existing.Product, delta)
		return s.view(sessionID, store), nil
	}
	if delta <= 0 {
		return s.view(sessionID, store), nil
	}

	p, err := s.catalog.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, domproduct.ErrProductNotFound
	}
	if p.Price.IsNegative() {
		return nil, domproduct.ErrInvalidPrice
	}

	store.AddItem(*p, delta)
	return s.view(sessionID, store), nil
}

func (s *Service) UpdateQuantity(ctx context.Context, sessionID string, productID int64, quantity int64) (*View, error) {
	store := s.Store(sessionID)
	if err := store.UpdateQuantity(productID, quantity); err != nil {
		return nil, err
	}
	return s.view(sessionID, store), nil
}

func (s *Service) RemoveItem(ctx context.Context, sessionID string, productID int64) *View {
	store := s.Store(sessionID)
	store.RemoveItem(productID)
	return s.view(sessionID, store)
}

func (s *Service) Clear(ctx context.Context, sessionID string) *View {
	store := s.Store(sessionID)
	store.Clear()
	return s.view(sessionID, store)
}

func (s *Service) GetCart(ctx context.Context, sessionID string) *View {
	store := s.Store(sessionID)
	return s.view(sessionID, store)
}

// Sweep forgets sessions idle for longer than maxIdle and reports how many
// were dropped.
func (s *Service) Sweep(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxIdle)
	dropped := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			dropped++
		}
	}
	return dropped
}

func (s *Service) view(sessionID string, store *domcart.Store) *View {
	snap := store.Snapshot()
	return &View{
		SessionID: sessionID,
		Items:     snap.Items,
		Totals:    snap.Totals,
	}
}

func findItem(items []domcart.LineItem, productID int64) (domcart.LineItem, bool) {
	for _, item := range items {
		if item.Product.ID == productID {
			return item, true
		}
	}
	return domcart.LineItem{}, false
}
