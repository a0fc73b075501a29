package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/omidvar1986/smartoffice/internal/backend"
	"github.com/omidvar1986/smartoffice/internal/domain"
)

// Consumer-defined slices of the collaborators checkout depends on.

type CartAccess interface {
	GetCart(ctx context.Context) domain.Cart
	Clear(ctx context.Context)
}

type OrderCreator interface {
	CreateOrder(ctx context.Context, order *backend.CreateOrderRequest, idempotencyKey string) (*backend.CreateOrderResponse, error)
}

type HistoryWriter interface {
	Prepend(ctx context.Context, order domain.Order) error
	SetCurrent(ctx context.Context, order domain.Order) error
}

// OrderSource tells the caller whether the backend accepted the order or the
// offline fallback fired. Messaging only, both are a successful checkout.
type OrderSource string

const (
	OrderSourceServer OrderSource = "server"
	OrderSourceLocal  OrderSource = "local"
)

type Request struct {
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	CustomerNotes   string
}

type Result struct {
	Order  domain.Order
	Source OrderSource
}

type Service struct {
	cart    CartAccess
	backend OrderCreator
	history HistoryWriter
	logger  zerolog.Logger
}

func NewService(cart CartAccess, backend OrderCreator, history HistoryWriter, logger zerolog.Logger) *Service {
	return &Service{
		cart:    cart,
		backend: backend,
		history: history,
		logger:  logger,
	}
}

// Submit turns the current cart plus customer fields into an order, records
// it in local history, marks it current for the payment step and clears the
// cart. An unreachable backend degrades to a client-generated order so the
// user is never blocked from reaching payment; an explicit rejection from the
// backend is surfaced as an error with no side effects.
func (s *Service) Submit(ctx context.Context, req *Request) (*Result, error) {
	cart := s.cart.GetCart(ctx)
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if strings.TrimSpace(req.CustomerName) == "" ||
		strings.TrimSpace(req.CustomerPhone) == "" ||
		strings.TrimSpace(req.CustomerAddress) == "" {
		return nil, ErrMissingCustomerFields
	}

	payload := &backend.CreateOrderRequest{
		Items:           make([]backend.CreateOrderItem, 0, len(cart.Items)),
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		CustomerNotes:   req.CustomerNotes,
	}
	for _, item := range cart.Items {
		payload.Items = append(payload.Items, backend.CreateOrderItem{
			ProductID: item.Product.ID,
			Quantity:  item.Quantity,
		})
	}

	resp, err := s.backend.CreateOrder(ctx, payload, uuid.NewString())

	var rejected *backend.RejectedError
	if errors.As(err, &rejected) {
		return nil, fmt.Errorf("order was not accepted: %w", err)
	}

	now := time.Now()
	order := domain.Order{
		Items:           cart.Items,
		TotalAmount:     cart.TotalPrice,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		CustomerNotes:   req.CustomerNotes,
		Status:          domain.OrderStatusPendingPayment,
		CreatedAt:       now,
	}

	source := OrderSourceServer
	if err == nil && resp != nil && resp.Success && resp.OrderID != 0 {
		order.ID = resp.OrderID
		order.OrderNumber = resp.OrderNumber
	} else {
		if err != nil {
			s.logger.Warn().Err(err).Msg("order creation failed, recording local order")
		} else {
			s.logger.Warn().Msg("create-order response incomplete, recording local order")
		}
		order.ID = now.UnixMilli()
		order.OrderNumber = fmt.Sprintf("ORD-%d", now.UnixMilli())
		source = OrderSourceLocal
	}

	// The mirror is best-effort, a degraded store must not undo the checkout.
	if err := s.history.Prepend(ctx, order); err != nil {
		s.logger.Warn().Err(err).Int64("order_id", order.ID).Msg("failed to record order history")
	}
	if err := s.history.SetCurrent(ctx, order); err != nil {
		s.logger.Warn().Err(err).Int64("order_id", order.ID).Msg("failed to set current order")
	}
	s.cart.Clear(ctx)

	s.logger.Info().
		Int64("order_id", order.ID).
		Str("order_number", order.OrderNumber).
		Str("source", string(source)).
		Float64("total_amount", order.TotalAmount).
		Msg("checkout submitted")

	return &Result{Order: order, Source: source}, nil
}
