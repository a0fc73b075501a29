package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/omidvar1986/smartoffice/internal/backend"
	"github.com/omidvar1986/smartoffice/internal/checkout"
	"github.com/omidvar1986/smartoffice/internal/domain"
)

type CheckoutService interface {
	Submit(ctx context.Context, req *checkout.Request) (*checkout.Result, error)
}

type CheckoutHandler struct {
	checkout CheckoutService
	timeout  time.Duration
}

func NewCheckoutHandler(checkout CheckoutService, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, timeout: timeout}
}

type CheckoutRequestDTO struct {
	CustomerName    string `json:"customer_name"`
	CustomerPhone   string `json:"customer_phone"`
	CustomerAddress string `json:"customer_address"`
	CustomerNotes   string `json:"customer_notes,omitempty"`
}

type CheckoutResponseDTO struct {
	Order  domain.Order `json:"order"`
	Source string       `json:"source"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	result, err := h.checkout.Submit(ctx, &checkout.Request{
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		CustomerNotes:   req.CustomerNotes,
	})
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, CheckoutResponseDTO{
		Order:  result.Order,
		Source: string(result.Source),
	})
}

func handleCheckoutError(w http.ResponseWriter, err error) {
	var rejected *backend.RejectedError
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", err.Error())
	case errors.Is(err, checkout.ErrMissingCustomerFields):
		respondError(w, http.StatusBadRequest, "missing_customer_fields", err.Error())
	case errors.As(err, &rejected):
		respondError(w, http.StatusUnprocessableEntity, "order_rejected", rejected.Message)
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to submit order")
	}
}
