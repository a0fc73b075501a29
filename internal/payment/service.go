package payment

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/omidvar1986/smartoffice/internal/backend"
	"github.com/omidvar1986/smartoffice/internal/domain"
)

var ErrReceiptRequired = errors.New("payment receipt file is required")

type ReceiptUploader interface {
	UploadReceipt(ctx context.Context, orderID int64, upload *backend.ReceiptUpload) error
}

type History interface {
	Current(ctx context.Context) (*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus, payment domain.PaymentStatus) error
	ClearCurrent(ctx context.Context) error
}

type Submission struct {
	Receipt  io.Reader
	Filename string
	Notes    string
}

// Service attaches a payment receipt to the current order. There is no local
// fallback here, a receipt cannot be faked: an upload failure leaves every
// piece of local state untouched so the user can retry from scratch.
type Service struct {
	backend ReceiptUploader
	history History
	logger  zerolog.Logger
}

func NewService(backend ReceiptUploader, history History, logger zerolog.Logger) *Service {
	return &Service{backend: backend, history: history, logger: logger}
}

func (s *Service) Submit(ctx context.Context, sub *Submission) (*domain.Order, error) {
	if sub == nil || sub.Receipt == nil {
		return nil, ErrReceiptRequired
	}

	order, err := s.history.Current(ctx)
	if err != nil {
		return nil, err
	}

	filename := sub.Filename
	if filename == "" {
		filename = "receipt"
	}
	upload := &backend.ReceiptUpload{
		File:       sub.Receipt,
		Filename:   filename,
		AmountPaid: order.TotalAmount,
		Notes:      sub.Notes,
	}
	if err := s.backend.UploadReceipt(ctx, order.ID, upload); err != nil {
		return nil, fmt.Errorf("receipt upload failed: %w", err)
	}

	// Mirror updates are best-effort once the backend has the receipt.
	if err := s.history.UpdateStatus(ctx, order.ID, domain.OrderStatusPendingPayment, domain.PaymentStatusSubmitted); err != nil {
		s.logger.Warn().Err(err).Int64("order_id", order.ID).Msg("failed to update mirrored order")
	}
	if err := s.history.ClearCurrent(ctx); err != nil {
		s.logger.Warn().Err(err).Int64("order_id", order.ID).Msg("failed to clear current order")
	}

	order.Status = domain.OrderStatusPendingPayment
	order.PaymentStatus = domain.PaymentStatusSubmitted

	s.logger.Info().
		Int64("order_id", order.ID).
		Float64("amount_paid", order.TotalAmount).
		Msg("payment receipt submitted")

	return order, nil
}
