package cart

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omidvar1986/smartoffice/internal/domain"
	"github.com/omidvar1986/smartoffice/internal/storage"
)

func newTestService(t *testing.T) (*Service, storage.Store) {
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return NewService(NewRepository(store, zerolog.Nop())), store
}

func TestGetCart_EmptyStore(t *testing.T) {
	svc, _ := newTestService(t)

	cart := svc.GetCart(context.Background())
	assert.NotNil(t, cart.Items)
	assert.Empty(t, cart.Items)
	assert.Zero(t, cart.TotalItems)
	assert.Zero(t, cart.TotalPrice)
}

func TestAddItem_AppendsAndMerges(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	notebook := domain.Product{ID: 1, Name: "Notebook", Price: 1000}
	pen := domain.Product{ID: 2, Name: "Pen", Price: 500}

	cart := svc.AddItem(ctx, notebook, 2)
	assert.Len(t, cart.Items, 1)

	cart = svc.AddItem(ctx, pen, 1)
	assert.Len(t, cart.Items, 2)

	// Same product merges by incrementing quantity.
	cart = svc.AddItem(ctx, notebook, 3)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, 6, cart.TotalItems)
	assert.Equal(t, 5500.0, cart.TotalPrice)
}

func TestAddItem_DefaultsQuantityToOne(t *testing.T) {
	svc, _ := newTestService(t)

	cart := svc.AddItem(context.Background(), domain.Product{ID: 1, Name: "Pen", Price: 500}, 0)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity)
}

func TestSetQuantity_Updates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	svc.AddItem(ctx, domain.Product{ID: 1, Name: "Notebook", Price: 1000}, 2)
	cart := svc.SetQuantity(ctx, 1, 7)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 7, cart.Items[0].Quantity)
	assert.Equal(t, 7000.0, cart.TotalPrice)
}

func TestSetQuantity_ZeroEqualsRemove(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	svc.AddItem(ctx, domain.Product{ID: 1, Name: "Notebook", Price: 1000}, 2)
	svc.AddItem(ctx, domain.Product{ID: 2, Name: "Pen", Price: 500}, 1)

	cart := svc.SetQuantity(ctx, 1, 0)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(2), cart.Items[0].Product.ID)

	// RemoveItem and SetQuantity(..., 0) end in the same state.
	cart = svc.RemoveItem(ctx, 2)
	assert.Empty(t, cart.Items)
}

func TestSetQuantity_AbsentIDIsNoOp(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	svc.AddItem(ctx, domain.Product{ID: 1, Name: "Notebook", Price: 1000}, 2)
	cart := svc.SetQuantity(ctx, 42, 5)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

func TestRemoveItem_AbsentIDIsNoOp(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	svc.AddItem(ctx, domain.Product{ID: 1, Name: "Notebook", Price: 1000}, 2)
	cart := svc.RemoveItem(ctx, 42)

	assert.Len(t, cart.Items, 1)
}

// Totals are always recomputed from the line items, never drifting,
// regardless of the mutation sequence.
func TestTotals_RecomputedAfterEveryMutation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	svc.AddItem(ctx, domain.Product{ID: 1, Name: "Notebook", Price: 1000}, 2)
	svc.AddItem(ctx, domain.Product{ID: 2, Name: "Pen", Price: 500}, 4)
	svc.SetQuantity(ctx, 2, 1)
	svc.AddItem(ctx, domain.Product{ID: 3, Name: "Folder", Price: 250}, 2)
	svc.RemoveItem(ctx, 1)

	cart := svc.GetCart(ctx)
	wantItems, wantPrice := 0, 0.0
	for _, item := range cart.Items {
		wantItems += item.Quantity
		wantPrice += item.Product.Price * float64(item.Quantity)
	}
	assert.Equal(t, wantItems, cart.TotalItems)
	assert.Equal(t, wantPrice, cart.TotalPrice)
	assert.Equal(t, 3, cart.TotalItems)
	assert.Equal(t, 1000.0, cart.TotalPrice)
}

// A second service over the same store simulates a page reload: the cart
// must round-trip with identical id/quantity pairs.
func TestCart_RoundTripAcrossInstances(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	first := NewService(NewRepository(store, zerolog.Nop()))
	first.AddItem(ctx, domain.Product{ID: 1, Name: "Notebook", Price: 1000}, 2)
	first.AddItem(ctx, domain.Product{ID: 2, Name: "Pen", Price: 500}, 3)

	second := NewService(NewRepository(store, zerolog.Nop()))
	cart := second.GetCart(ctx)

	got := map[int64]int{}
	for _, item := range cart.Items {
		got[item.Product.ID] = item.Quantity
	}
	assert.Equal(t, map[int64]int{1: 2, 2: 3}, got)
}

func TestClear_EmptiesCart(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	svc.AddItem(ctx, domain.Product{ID: 1, Name: "Notebook", Price: 1000}, 2)
	svc.Clear(ctx)

	cart := svc.GetCart(ctx)
	assert.Empty(t, cart.Items)
	assert.Zero(t, cart.TotalItems)
	assert.Zero(t, cart.TotalPrice)

	_, err := store.Get(ctx, CountKey)
	assert.ErrorIs(t, err, storage.ErrKeyNotFound)
}
