package domain

import "time"

type OrderStatus string

const (
	OrderStatusPendingPayment OrderStatus = "pending_payment"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusConfirmed || s == OrderStatusCancelled
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo reports whether an order may move from one status to
// another. pending_payment allows a self-transition so the payment mirror
// update can re-assert it while attaching the payment marker. Confirmation
// and cancellation are driven by the backend side.
func CanTransitionTo(from, to OrderStatus) bool {
	if from.IsTerminal() {
		return false
	}
	switch to {
	case OrderStatusPendingPayment, OrderStatusConfirmed, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// PaymentStatus is a client-only marker set once a receipt has been attached.
type PaymentStatus string

const PaymentStatusSubmitted PaymentStatus = "submitted"

// Order is an immutable snapshot of the cart plus customer fields, created at
// checkout. The ID and order number come from the backend when it accepted the
// order, or are client-generated on the offline fallback path.
type Order struct {
	ID              int64         `json:"id"`
	OrderNumber     string        `json:"order_number"`
	Items           []CartItem    `json:"items"`
	TotalAmount     float64       `json:"total_amount"`
	CustomerName    string        `json:"customer_name"`
	CustomerPhone   string        `json:"customer_phone"`
	CustomerAddress string        `json:"customer_address"`
	CustomerNotes   string        `json:"customer_notes,omitempty"`
	Status          OrderStatus   `json:"status"`
	PaymentStatus   PaymentStatus `json:"payment_status,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}
