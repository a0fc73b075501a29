package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/omidvar1986/smartoffice/internal/domain"
	"github.com/omidvar1986/smartoffice/internal/storage"
)

const (
	historyKey      = "orders"
	currentOrderKey = "currentOrder"
)

var (
	ErrNoCurrentOrder          = errors.New("no current order")
	ErrOrderNotFound           = errors.New("order not found in history")
	ErrIllegalStatusTransition = errors.New("illegal order status transition")
)

// HistoryRepository keeps the locally mirrored order list (newest first) and
// the single current-order slot the payment step operates on.
type HistoryRepository struct {
	store  storage.Store
	logger zerolog.Logger
	mu     sync.Mutex
}

func NewHistoryRepository(store storage.Store, logger zerolog.Logger) *HistoryRepository {
	return &HistoryRepository{store: store, logger: logger}
}

// List returns the mirrored orders, newest first. Missing or corrupt data
// reads as empty.
func (r *HistoryRepository) List(ctx context.Context) []domain.Order {
	data, err := r.store.Get(ctx, historyKey)
	if err != nil {
		if !errors.Is(err, storage.ErrKeyNotFound) {
			r.logger.Warn().Err(err).Msg("order history read failed, treating as empty")
		}
		return nil
	}

	var orders []domain.Order
	if err := json.Unmarshal(data, &orders); err != nil {
		r.logger.Warn().Err(err).Msg("corrupt order history, treating as empty")
		return nil
	}
	return orders
}

func (r *HistoryRepository) Prepend(ctx context.Context, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	orders := append([]domain.Order{order}, r.List(ctx)...)
	return r.save(ctx, orders)
}

// UpdateStatus updates exactly the one matching order. Other entries are
// untouched; terminal orders refuse the transition.
func (r *HistoryRepository) UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus, payment domain.PaymentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	orders := r.List(ctx)
	for i := range orders {
		if orders[i].ID != orderID {
			continue
		}
		if !domain.CanTransitionTo(orders[i].Status, status) {
			return fmt.Errorf("%w: %s -> %s", ErrIllegalStatusTransition, orders[i].Status, status)
		}
		orders[i].Status = status
		orders[i].PaymentStatus = payment
		return r.save(ctx, orders)
	}
	return ErrOrderNotFound
}

func (r *HistoryRepository) save(ctx context.Context, orders []domain.Order) error {
	data, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("failed to marshal order history: %w", err)
	}
	if err := r.store.Set(ctx, historyKey, data); err != nil {
		return fmt.Errorf("failed to store order history: %w", err)
	}
	return nil
}

// Current returns the order the payment step should attach a receipt to.
func (r *HistoryRepository) Current(ctx context.Context) (*domain.Order, error) {
	data, err := r.store.Get(ctx, currentOrderKey)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil, ErrNoCurrentOrder
		}
		return nil, fmt.Errorf("failed to read current order: %w", err)
	}

	var order domain.Order
	if err := json.Unmarshal(data, &order); err != nil {
		r.logger.Warn().Err(err).Msg("corrupt current order")
		return nil, ErrNoCurrentOrder
	}
	return &order, nil
}

func (r *HistoryRepository) SetCurrent(ctx context.Context, order domain.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to marshal current order: %w", err)
	}
	if err := r.store.Set(ctx, currentOrderKey, data); err != nil {
		return fmt.Errorf("failed to store current order: %w", err)
	}
	return nil
}

func (r *HistoryRepository) ClearCurrent(ctx context.Context) error {
	if err := r.store.Delete(ctx, currentOrderKey); err != nil {
		return fmt.Errorf("failed to clear current order: %w", err)
	}
	return nil
}
