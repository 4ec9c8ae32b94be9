package order

import "errors"

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrInvalidStatus     = errors.New("unknown order status")
	ErrEmptyOrder        = errors.New("order has no items")
	ErrInvalidLine       = errors.New("invalid order line")
	ErrInvalidShipping   = errors.New("recipient name and address are required")
	ErrCartEmpty         = errors.New("cart is empty")
)
