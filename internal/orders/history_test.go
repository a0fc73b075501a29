package orders

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omidvar1986/smartoffice/internal/domain"
	"github.com/omidvar1986/smartoffice/internal/storage"
)

func newTestHistory(t *testing.T) (*HistoryRepository, storage.Store) {
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return NewHistoryRepository(store, zerolog.Nop()), store
}

func testOrder(id int64) domain.Order {
	return domain.Order{
		ID:          id,
		OrderNumber: "ORD-1",
		TotalAmount: 2000,
		Status:      domain.OrderStatusPendingPayment,
		CreatedAt:   time.Now(),
	}
}

func TestHistory_ListEmpty(t *testing.T) {
	repo, _ := newTestHistory(t)
	assert.Empty(t, repo.List(context.Background()))
}

func TestHistory_PrependNewestFirst(t *testing.T) {
	repo, _ := newTestHistory(t)
	ctx := context.Background()

	require.NoError(t, repo.Prepend(ctx, testOrder(1)))
	require.NoError(t, repo.Prepend(ctx, testOrder(2)))

	orders := repo.List(ctx)
	require.Len(t, orders, 2)
	assert.Equal(t, int64(2), orders[0].ID)
	assert.Equal(t, int64(1), orders[1].ID)
}

func TestHistory_ListCorruptData(t *testing.T) {
	repo, store := newTestHistory(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, historyKey, []byte("{broken")))
	assert.Empty(t, repo.List(ctx))
}

func TestHistory_UpdateStatusTouchesOnlyMatchingOrder(t *testing.T) {
	repo, _ := newTestHistory(t)
	ctx := context.Background()

	require.NoError(t, repo.Prepend(ctx, testOrder(1)))
	require.NoError(t, repo.Prepend(ctx, testOrder(2)))
	require.NoError(t, repo.Prepend(ctx, testOrder(3)))

	err := repo.UpdateStatus(ctx, 2, domain.OrderStatusPendingPayment, domain.PaymentStatusSubmitted)
	require.NoError(t, err)

	orders := repo.List(ctx)
	require.Len(t, orders, 3)
	for _, order := range orders {
		if order.ID == 2 {
			assert.Equal(t, domain.PaymentStatusSubmitted, order.PaymentStatus)
		} else {
			assert.Empty(t, order.PaymentStatus)
		}
	}
}

func TestHistory_UpdateStatusUnknownOrder(t *testing.T) {
	repo, _ := newTestHistory(t)
	ctx := context.Background()

	require.NoError(t, repo.Prepend(ctx, testOrder(1)))

	err := repo.UpdateStatus(ctx, 99, domain.OrderStatusPendingPayment, domain.PaymentStatusSubmitted)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestHistory_UpdateStatusRefusesTerminalOrders(t *testing.T) {
	repo, _ := newTestHistory(t)
	ctx := context.Background()

	cancelled := testOrder(1)
	cancelled.Status = domain.OrderStatusCancelled
	require.NoError(t, repo.Prepend(ctx, cancelled))

	err := repo.UpdateStatus(ctx, 1, domain.OrderStatusPendingPayment, domain.PaymentStatusSubmitted)
	assert.ErrorIs(t, err, ErrIllegalStatusTransition)
}

func TestHistory_CurrentSlot(t *testing.T) {
	repo, _ := newTestHistory(t)
	ctx := context.Background()

	_, err := repo.Current(ctx)
	assert.ErrorIs(t, err, ErrNoCurrentOrder)

	require.NoError(t, repo.SetCurrent(ctx, testOrder(5)))

	current, err := repo.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), current.ID)

	require.NoError(t, repo.ClearCurrent(ctx))
	_, err = repo.Current(ctx)
	assert.ErrorIs(t, err, ErrNoCurrentOrder)
}

func TestHistory_CurrentCorruptData(t *testing.T) {
	repo, store := newTestHistory(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, currentOrderKey, []byte("{broken")))

	_, err := repo.Current(ctx)
	assert.ErrorIs(t, err, ErrNoCurrentOrder)
}
