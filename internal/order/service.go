package order

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"storefront-be/internal/cart"
	"storefront-be/internal/logger"
	"storefront-be/internal/product"
	"storefront-be/internal/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductCatalog is the subset of the product service orders depend on.
type ProductCatalog interface {
	GetMany(ctx context.Context, ids []uint) ([]*product.Product, error)
	StockChanged(ctx context.Context, ids []uint)
}

type CartReader interface {
	GetCart(ctx context.Context, userID uint) (*cart.Cart, error)
}

type Service interface {
	Place(ctx context.Context, params PlaceOrderParams) (*Order, error)
	CheckoutCart(ctx context.Context, userID uint, shipping Shipping) (*Order, error)
	List(ctx context.Context, filter ListFilter) (*ListResult, error)
	Get(ctx context.Context, id uint) (*Order, error)
	UpdateStatus(ctx context.Context, id uint, to OrderStatus) (*Order, error)
	Cancel(ctx context.Context, userID, id uint) (*Order, error)
}

type service struct {
	repo     Repository
	products ProductCatalog
	carts    CartReader
}

func NewService(repo Repository, products ProductCatalog, carts CartReader) Service {
	return &service{repo: repo, products: products, carts: carts}
}

func normalizeShipping(s Shipping) (Shipping, error) {
	s.RecipientName = strings.TrimSpace(s.RecipientName)
	s.Phone = strings.TrimSpace(s.Phone)
	s.Address = strings.TrimSpace(s.Address)
	if s.RecipientName == "" || s.Address == "" {
		return s, ErrInvalidShipping
	}
	return s, nil
}

// mergeLines folds duplicate (product, size) lines together and orders them by
// product id so concurrent orders lock product rows in the same order.
func mergeLines(lines []Line) ([]Line, error) {
	type key struct {
		productID uint
		size      string
	}

	merged := []Line{}
	index := map[key]int{}
	for _, l := range lines {
		if l.ProductID == 0 || l.Quantity <= 0 {
			return nil, fmt.Errorf("%w: product and positive quantity required", ErrInvalidLine)
		}
		l.Size = strings.TrimSpace(l.Size)
		k := key{l.ProductID, strings.ToUpper(l.Size)}
		if i, ok := index[k]; ok {
			merged[i].Quantity += l.Quantity
			continue
		}
		index[k] = len(merged)
		merged = append(merged, l)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].ProductID < merged[j].ProductID
	})
	return merged, nil
}

func (s *service) Place(ctx context.Context, params PlaceOrderParams) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "PlaceOrder"),
		zap.Uint("user_id", params.UserID),
	)

	if len(params.Lines) == 0 {
		return nil, ErrEmptyOrder
	}
	shipping, err := normalizeShipping(params.Shipping)
	if err != nil {
		return nil, err
	}
	lines, err := mergeLines(params.Lines)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	products, err := s.products.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]*product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	o := &Order{
		OrderNumber: utils.GenerateOrderNumber(),
		UserID:      params.UserID,
		Status:      StatusPlaced,
		Total:       decimal.Zero,
		Shipping:    shipping,
	}
	for _, l := range lines {
		p, ok := byID[l.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: %d", product.ErrProductNotFound, l.ProductID)
		}
		if !p.HasSize(l.Size) {
			return nil, fmt.Errorf("%w: size %q not offered for product %d", ErrInvalidLine, l.Size, p.ID)
		}
		if l.Quantity > p.Stock {
			return nil, fmt.Errorf("%w: product %d", product.ErrInsufficientStock, p.ID)
		}

		unit := p.Price
		if l.UnitPrice != nil {
			unit = *l.UnitPrice
		}
		subtotal := unit.Mul(decimal.NewFromInt(int64(l.Quantity)))

		o.Items = append(o.Items, &OrderItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Size:        canonicalSize(p, l.Size),
			Quantity:    l.Quantity,
			UnitPrice:   unit,
			Subtotal:    subtotal,
		})
		o.Total = o.Total.Add(subtotal)
	}

	placed, err := s.repo.Place(ctx, o, params.ClearCart)
	if err != nil {
		log.Warn("place order failed", zap.Error(err))
		return nil, err
	}

	s.products.StockChanged(ctx, placed.ProductIDs())

	log.Info("order placed",
		zap.Uint("order_id", placed.ID),
		zap.String("order_number", placed.OrderNumber),
		zap.String("total", placed.Total.StringFixed(2)),
	)
	return placed, nil
}

func canonicalSize(p *product.Product, size string) string {
	for _, s := range p.Sizes {
		if strings.EqualFold(s, size) {
			return s
		}
	}
	return size
}

func (s *service) CheckoutCart(ctx context.Context, userID uint, shipping Shipping) (*Order, error) {
	c, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(c.Items) == 0 {
		return nil, ErrCartEmpty
	}

	lines := make([]Line, 0, len(c.Items))
	for _, item := range c.Items {
		if !item.Available {
			return nil, cart.ErrItemUnavailable
		}
		lines = append(lines, Line{ProductID: item.ProductID, Size: item.Size, Quantity: item.Quantity})
	}

	return s.Place(ctx, PlaceOrderParams{
		UserID:    userID,
		Lines:     lines,
		Shipping:  shipping,
		ClearCart: true,
	})
}

// List scopes non-admin callers to their own orders.
func (s *service) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	if !utils.IsAdmin(ctx) {
		userID, ok := utils.GetUserIDFromContext(ctx)
		if !ok {
			return nil, ErrOrderNotFound
		}
		filter.UserID = userID
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	filter.Page, filter.Limit, _ = utils.Pagination(filter.Page, filter.Limit, 20, 100)

	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ListResult{Items: orders, Page: filter.Page, Limit: filter.Limit, TotalCount: total}, nil
}

// Get returns an order to its owner or an admin. Other callers see ErrOrderNotFound.
func (s *service) Get(ctx context.Context, id uint) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	userID, _ := utils.GetUserIDFromContext(ctx)
	if o.UserID != userID && !utils.IsAdmin(ctx) {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (s *service) UpdateStatus(ctx context.Context, id uint, to OrderStatus) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateOrderStatus"),
		zap.Uint("order_id", id),
	)

	if !to.Valid() {
		return nil, ErrInvalidStatus
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(current.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, to)
	}

	return s.transition(ctx, log, current, to)
}

func (s *service) transition(ctx context.Context, log *zap.Logger, current *Order, to OrderStatus) (*Order, error) {
	cancelling := to == StatusCancelled

	o, err := s.repo.UpdateStatus(ctx, current.ID, current.Status, to, cancelling)
	if err != nil {
		log.Warn("order status update failed", zap.Error(err))
		return nil, err
	}

	if cancelling {
		s.products.StockChanged(ctx, o.ProductIDs())
	}

	log.Info("order status updated",
		zap.String("from", string(current.Status)),
		zap.String("to", string(to)),
	)
	return o, nil
}

// Cancel lets the owner withdraw an order that has not been picked up yet.
func (s *service) Cancel(ctx context.Context, userID, id uint) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CancelOrder"),
		zap.Uint("order_id", id),
	)

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.UserID != userID {
		return nil, ErrOrderNotFound
	}
	if current.Status != StatusPlaced {
		return nil, fmt.Errorf("%w: only placed orders can be cancelled", ErrInvalidTransition)
	}

	return s.transition(ctx, log, current, StatusCancelled)
}
