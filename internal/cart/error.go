package cart

import "errors"

var (
	// -- Validation & Input --
	ErrInvalidQuantity = errors.New("invalid cart quantity")
	ErrInvalidSize     = errors.New("size not offered for this product")

	// -- Resource State --
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrItemUnavailable  = errors.New("cart contains unavailable products")
)
