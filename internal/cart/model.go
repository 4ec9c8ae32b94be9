package cart

import (
	"time"

	"storefront-be/internal/product"

	"github.com/shopspring/decimal"
)

type CartItem struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	ProductID uint      `json:"product_id"`
	Size      string    `json:"size"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Filled by the service from the current catalog.
	Product   *product.Product `json:"product,omitempty"`
	Available bool             `json:"available"`
	Subtotal  decimal.Decimal  `json:"subtotal"`
}

type Cart struct {
	Items     []*CartItem     `json:"items"`
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
}

type AddToCartParams struct {
	UserID    uint   `json:"-"`
	ProductID uint   `json:"product_id"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}
