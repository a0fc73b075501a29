package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/omidvar1986/smartoffice/internal/backend"
	"github.com/omidvar1986/smartoffice/internal/domain"
	"github.com/omidvar1986/smartoffice/internal/orders"
	"github.com/omidvar1986/smartoffice/internal/payment"
)

type PaymentService interface {
	Submit(ctx context.Context, sub *payment.Submission) (*domain.Order, error)
}

type PaymentHandler struct {
	payment        PaymentService
	timeout        time.Duration
	maxReceiptSize int64
}

func NewPaymentHandler(payment PaymentService, timeout time.Duration, maxReceiptSize int64) *PaymentHandler {
	return &PaymentHandler{
		payment:        payment,
		timeout:        timeout,
		maxReceiptSize: maxReceiptSize,
	}
}

// POST /api/v1/payment/receipt (multipart: receipt_image, payment_notes)
func (h *PaymentHandler) SubmitReceipt(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxReceiptSize)
	if err := r.ParseMultipartForm(h.maxReceiptSize); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid or oversized multipart body")
		return
	}

	sub := &payment.Submission{
		Notes: r.FormValue("payment_notes"),
	}
	file, header, err := r.FormFile("receipt_image")
	if err == nil {
		defer file.Close()
		sub.Receipt = file
		sub.Filename = header.Filename
	}

	order, err := h.payment.Submit(ctx, sub)
	if err != nil {
		handlePaymentError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, order)
}

func handlePaymentError(w http.ResponseWriter, err error) {
	var rejected *backend.RejectedError
	switch {
	case errors.Is(err, payment.ErrReceiptRequired):
		respondError(w, http.StatusBadRequest, "receipt_required", err.Error())
	case errors.Is(err, orders.ErrNoCurrentOrder):
		respondError(w, http.StatusConflict, "no_current_order", "no order awaiting payment")
	case errors.As(err, &rejected):
		respondError(w, http.StatusUnprocessableEntity, "receipt_rejected", rejected.Message)
	case errors.Is(err, backend.ErrUnavailable):
		respondError(w, http.StatusBadGateway, "backend_unavailable", "payment submission failed, try again")
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to submit payment")
	}
}
