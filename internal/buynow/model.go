package buynow

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Session is a single-product checkout draft. The unit price is fixed when the
// session is created and honoured at checkout until ExpiresAt.
type Session struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uint            `json:"user_id"`
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	Size        string          `json:"size"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	ExpiresAt   time.Time       `json:"expires_at"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

func (s *Session) Total() decimal.Decimal {
	return s.UnitPrice.Mul(decimal.NewFromInt(int64(s.Quantity)))
}

type CreateParams struct {
	UserID    uint   `json:"-"`
	ProductID uint   `json:"product_id"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}
