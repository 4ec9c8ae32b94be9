package events

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type EventType string

const (
	ProductCreated      EventType = "product.created"
	ProductUpdated      EventType = "product.updated"
	ProductDeleted      EventType = "product.deleted"
	ProductStockChanged EventType = "product.stock_changed"
)

type ProductEvent struct {
	Type      EventType        `json:"type"`
	ProductID uint             `json:"product_id"`
	Name      string           `json:"name,omitempty"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	Stock     *int             `json:"stock,omitempty"`
	At        time.Time        `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, event ProductEvent) error
}

// Fanout publishes every event to all publishers and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, event ProductEvent) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Nop struct{}

func (Nop) Publish(context.Context, ProductEvent) error { return nil }
