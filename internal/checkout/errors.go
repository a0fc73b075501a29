package checkout

import "errors"

var (
	ErrEmptyCart             = errors.New("cart is empty, nothing to checkout")
	ErrMissingCustomerFields = errors.New("customer name, phone and address are required")
)
