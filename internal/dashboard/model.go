package dashboard

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidRange = errors.New("days must be between 1 and 365")

type Overview struct {
	Revenue        decimal.Decimal `json:"revenue"`
	Orders         int             `json:"orders"`
	Customers      int             `json:"customers"`
	Products       int             `json:"products"`
	LowStock       int             `json:"low_stock"`
	OrdersByStatus map[string]int  `json:"orders_by_status"`
}

type DailySales struct {
	Day     time.Time       `json:"day"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

type TopProduct struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}
