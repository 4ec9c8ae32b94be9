package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPlaced     OrderStatus = "PLACED"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusShipped    OrderStatus = "SHIPPED"
	StatusDelivered  OrderStatus = "DELIVERED"
	StatusCancelled  OrderStatus = "CANCELLED"
)

var transitions = map[OrderStatus][]OrderStatus{
	StatusPlaced:     {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPlaced, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether an order may move from one status to another.
// DELIVERED and CANCELLED are terminal.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Shipping struct {
	RecipientName string `json:"recipient_name"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
}

type Order struct {
	ID          uint            `json:"id"`
	OrderNumber string          `json:"order_number"`
	UserID      uint            `json:"user_id"`
	Status      OrderStatus     `json:"status"`
	Total       decimal.Decimal `json:"total"`
	Shipping    Shipping        `json:"shipping"`
	Items       []*OrderItem    `json:"items"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// OrderItem keeps the product name and unit price as they were at purchase time.
type OrderItem struct {
	ID          uint            `json:"id"`
	OrderID     uint            `json:"order_id"`
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	Size        string          `json:"size"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

func (o *Order) ProductIDs() []uint {
	seen := map[uint]bool{}
	ids := []uint{}
	for _, item := range o.Items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}
	return ids
}

// Line is a requested purchase. UnitPrice pins a previously quoted price; nil
// uses the current catalog price.
type Line struct {
	ProductID uint             `json:"product_id"`
	Size      string           `json:"size"`
	Quantity  int              `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"-"`
}

type PlaceOrderParams struct {
	UserID    uint
	Lines     []Line
	Shipping  Shipping
	ClearCart bool
}

type ListFilter struct {
	UserID uint
	Status OrderStatus
	Page   int
	Limit  int
}

type ListResult struct {
	Items      []*Order `json:"items"`
	Page       int      `json:"page"`
	Limit      int      `json:"limit"`
	TotalCount int      `json:"total_count"`
}
