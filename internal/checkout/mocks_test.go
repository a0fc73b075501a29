package checkout

import (
	"context"

	"github.com/omidvar1986/smartoffice/internal/backend"
	"github.com/omidvar1986/smartoffice/internal/domain"
)

// MockCart implements CartAccess for testing
type MockCart struct {
	Cart    domain.Cart
	Cleared bool
}

func (m *MockCart) GetCart(context.Context) domain.Cart {
	return m.Cart
}

func (m *MockCart) Clear(context.Context) {
	m.Cleared = true
	m.Cart = domain.Cart{Items: []domain.CartItem{}}
}

// MockOrderCreator implements OrderCreator for testing
type MockOrderCreator struct {
	Resp    *backend.CreateOrderResponse
	Err     error
	GotReq  *backend.CreateOrderRequest
	GotKeys []string
}

func (m *MockOrderCreator) CreateOrder(_ context.Context, req *backend.CreateOrderRequest, idempotencyKey string) (*backend.CreateOrderResponse, error) {
	m.GotReq = req
	m.GotKeys = append(m.GotKeys, idempotencyKey)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Resp, nil
}

// MockHistory implements HistoryWriter for testing
type MockHistory struct {
	Orders     []domain.Order
	Current    *domain.Order
	PrependErr error
	CurrentErr error
}

func (m *MockHistory) Prepend(_ context.Context, order domain.Order) error {
	if m.PrependErr != nil {
		return m.PrependErr
	}
	m.Orders = append([]domain.Order{order}, m.Orders...)
	return nil
}

func (m *MockHistory) SetCurrent(_ context.Context, order domain.Order) error {
	if m.CurrentErr != nil {
		return m.CurrentErr
	}
	m.Current = &order
	return nil
}
