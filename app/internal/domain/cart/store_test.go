package cart

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	domproduct "example.com/voltcart/app/internal/domain/product"
)

func newProduct(id int64, price string) domproduct.Product {
	return domproduct.Product{
		ID:        id,
		Name:      "Product",
		Price:     decimal.RequireFromString(price),
		ImageRefs: []string{"img/front.png", "img/back.png"},
		IsActive:  true,
	}
}

func TestAddItem_SameProductRepeatedly_KeepsSingleLineItem(t *testing.T) {
	store := NewStore()
	p := newProduct(1, "100")

	for i := 0; i < 7; i++ {
		store.AddItem(p, 1)
	}

	items := store.Items()
	require.Len(t, items, 1)
	require.Equal(t, int64(1), items[0].Product.ID)
	require.Equal(t, int64(7), items[0].Quantity)
}

func TestAddItem_ThenUpdateToZero_EmptiesCart(t *testing.T) {
	store := NewStore()
	p := newProduct(1, "100")

	store.AddItem(p, 1)
	store.AddItem(p, 1)

	items := store.Items()
	require.Len(t, items, 1)
	require.Equal(t, int64(2), items[0].Quantity)
	require.True(t, decimal.NewFromInt(200).Equal(store.Totals().TotalPrice))

	require.NoError(t, store.UpdateQuantity(1, 0))

	require.True(t, store.IsEmpty())
	require.Equal(t, int64(0), store.Totals().TotalItems)
	require.True(t, store.Totals().TotalPrice.IsZero())
}

func TestAddItem_NegativeDeltaOnAbsentProduct_IsNoop(t *testing.T) {
	store := NewStore()

	store.AddItem(newProduct(1, "10"), -1)
	store.AddItem(newProduct(1, "10"), 0)

	require.True(t, store.IsEmpty())
}

func TestAddItem_DecrementBelowOne_RemovesItem(t *testing.T) {
	store := NewStore()
	p := newProduct(1, "10")

	store.AddItem(p, 2)
	store.AddItem(p, -1)
	require.Equal(t, int64(1), store.Items()[0].Quantity)

	store.AddItem(p, -5)
	require.True(t, store.IsEmpty())
}

func TestAddItem_UpdatePreservesInsertionOrder(t *testing.T) {
	store := NewStore()

	store.AddItem(newProduct(1, "10"), 1)
	store.AddItem(newProduct(2, "20"), 1)
	store.AddItem(newProduct(3, "30"), 1)
	store.AddItem(newProduct(1, "10"), 4)
	require.NoError(t, store.UpdateQuantity(2, 9))

	items := store.Items()
	require.Len(t, items, 3)
	require.Equal(t, []int64{1, 2, 3}, []int64{items[0].Product.ID, items[1].Product.ID, items[2].Product.ID})
	require.Equal(t, int64(5), items[0].Quantity)
	require.Equal(t, int64(9), items[1].Quantity)
}

func TestRemoveItem_IsIdempotent(t *testing.T) {
	store := NewStore()
	store.AddItem(newProduct(2, "50"), 3)

	store.RemoveItem(2)
	require.True(t, store.IsEmpty())

	store.RemoveItem(2)
	require.True(t, store.IsEmpty())
	require.Equal(t, int64(0), store.Totals().TotalItems)
}

func TestUpdateQuantity(t *testing.T) {
	tests := []struct {
		name         string
		quantity     int64
		wantErr      error
		wantItems    int
		wantQuantity int64
	}{
		{name: "Absolute set", quantity: 4, wantItems: 1, wantQuantity: 4},
		{name: "Zero removes", quantity: 0, wantItems: 0},
		{name: "Negative rejected", quantity: -2, wantErr: ErrNegativeQuantity, wantItems: 1, wantQuantity: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore()
			store.AddItem(newProduct(1, "5"), 3)

			err := store.UpdateQuantity(1, tt.quantity)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			items := store.Items()
			require.Len(t, items, tt.wantItems)
			if tt.wantItems > 0 {
				require.Equal(t, tt.wantQuantity, items[0].Quantity)
			}
		})
	}
}

func TestUpdateQuantity_AbsentProduct_IsNoop(t *testing.T) {
	store := NewStore()

	require.NoError(t, store.UpdateQuantity(42, 3))
	require.True(t, store.IsEmpty())
}

func TestTotals_RecomputedAfterEveryMutation(t *testing.T) {
	store := NewStore()
	store.AddItem(newProduct(1, "19.99"), 2)
	store.AddItem(newProduct(2, "0.01"), 3)

	totals := store.Totals()
	require.Equal(t, int64(5), totals.TotalItems)
	require.Equal(t, "40.01", totals.TotalPrice.StringFixed(2))

	store.RemoveItem(1)
	totals = store.Totals()
	require.Equal(t, int64(3), totals.TotalItems)
	require.Equal(t, "0.03", totals.TotalPrice.StringFixed(2))

	require.NoError(t, store.UpdateQuantity(2, 10))
	totals = store.Totals()
	require.Equal(t, int64(10), totals.TotalItems)
	require.Equal(t, "0.10", totals.TotalPrice.StringFixed(2))
}

func TestTotals_FreeProductKeepsNonNegativeTotal(t *testing.T) {
	store := NewStore()
	store.AddItem(newProduct(1, "0"), 3)

	totals := store.Totals()
	require.Equal(t, int64(3), totals.TotalItems)
	require.False(t, totals.TotalPrice.IsNegative())
}

func TestClear_EmptiesAnyCart(t *testing.T) {
	store := NewStore()
	for id := int64(1); id <= 5; id++ {
		store.AddItem(newProduct(id, "3.50"), id)
	}

	store.Clear()

	require.True(t, store.IsEmpty())
	require.Len(t, store.Items(), 0)
	require.Equal(t, int64(0), store.Totals().TotalItems)
}

func TestSnapshot_IsIsolatedFromLaterEdits(t *testing.T) {
	store := NewStore()
	store.AddItem(newProduct(1, "100"), 5)

	snap := store.Snapshot()

	store.AddItem(newProduct(1, "100"), 10)
	store.AddItem(newProduct(2, "1"), 1)
	store.Clear()

	require.Len(t, snap.Items, 1)
	require.Equal(t, int64(5), snap.Items[0].Quantity)
	require.Equal(t, "500", snap.Totals.TotalPrice.String())
	require.False(t, snap.CapturedAt.IsZero())
}

func TestSnapshot_DoesNotShareImageSlices(t *testing.T) {
	store := NewStore()
	p := newProduct(1, "1")
	store.AddItem(p, 1)

	p.ImageRefs[0] = "mutated-by-caller"
	snap := store.Snapshot()
	snap.Items[0].Product.ImageRefs[0] = "mutated-in-snapshot"

	require.Equal(t, "img/front.png", store.Items()[0].Product.ImageRefs[0])
}

func TestStore_ConcurrentMutationsKeepInvariants(t *testing.T) {
	store := NewStore()
	p := newProduct(1, "2")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.AddItem(p, 1)
		}()
		go func() {
			defer wg.Done()
			_ = store.Totals()
		}()
	}
	wg.Wait()

	items := store.Items()
	require.Len(t, items, 1)
	require.Equal(t, int64(50), items[0].Quantity)
	require.Equal(t, "100", store.Totals().TotalPrice.String())
}
