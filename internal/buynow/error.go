package buynow

import "errors"

var (
	ErrSessionNotFound = errors.New("buy-now session not found")
	ErrSessionExpired  = errors.New("buy-now session expired")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidSize     = errors.New("size not offered for this product")
)
