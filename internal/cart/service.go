package cart

import (
	"context"
	"strings"

	"storefront-be/internal/logger"
	"storefront-be/internal/product"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductCatalog is the subset of the product service the cart needs.
type ProductCatalog interface {
	Get(ctx context.Context, id uint) (*product.Product, error)
	GetMany(ctx context.Context, ids []uint) ([]*product.Product, error)
}

// Service defines the business logic for carts.
type Service interface {
	AddToCart(ctx context.Context, params AddToCartParams) (*CartItem, error)
	GetCart(ctx context.Context, userID uint) (*Cart, error)
	UpdateQuantity(ctx context.Context, userID, itemID uint, quantity int) (*CartItem, error)
	RemoveFromCart(ctx context.Context, userID, itemID uint) error
	ClearCart(ctx context.Context, userID uint) error
}

type service struct {
	repo     Repository
	products ProductCatalog
}

func NewService(repo Repository, products ProductCatalog) Service {
	return &service{repo: repo, products: products}
}

// canonicalSize maps size onto the product's own spelling of it.
func canonicalSize(p *product.Product, size string) (string, error) {
	size = strings.TrimSpace(size)
	if !p.HasSize(size) {
		return "", ErrInvalidSize
	}
	for _, s := range p.Sizes {
		if strings.EqualFold(s, size) {
			return s, nil
		}
	}
	return size, nil
}

// AddToCart adds a product to a user's cart, merging with an existing line of the same size.
func (s *service) AddToCart(ctx context.Context, params AddToCartParams) (*CartItem, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AddToCart"),
		zap.Uint("user_id", params.UserID),
		zap.Uint("product_id", params.ProductID),
	)

	if params.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	p, err := s.products.Get(ctx, params.ProductID)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, product.ErrProductNotFound
	}

	params.Size, err = canonicalSize(p, params.Size)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.Find(ctx, params.UserID, params.ProductID, params.Size)
	if err != nil {
		return nil, err
	}

	finalQty := params.Quantity
	if existing != nil {
		finalQty += existing.Quantity
	}
	if finalQty > p.Stock {
		log.Info("add to cart rejected: insufficient stock", zap.Int("requested", finalQty), zap.Int("stock", p.Stock))
		return nil, product.ErrInsufficientStock
	}

	var item *CartItem
	if existing == nil {
		item, err = s.repo.Create(ctx, params)
	} else {
		item, err = s.repo.SetQuantity(ctx, params.UserID, existing.ID, finalQty)
	}
	if err != nil {
		return nil, err
	}

	price(item, p)
	log.Info("cart updated", zap.Int("quantity", item.Quantity))
	return item, nil
}

func price(item *CartItem, p *product.Product) {
	item.Product = p
	item.Available = p != nil && p.Active && p.Stock >= item.Quantity && p.HasSize(item.Size)
	if p != nil {
		item.Subtotal = p.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
	}
}

// GetCart prices every line at the current catalog price. Lines whose product is
// gone or short on stock are returned but marked unavailable and left out of the total.
func (s *service) GetCart(ctx context.Context, userID uint) (*Cart, error) {
	items, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.products.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]*product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	cart := &Cart{Items: items, Total: decimal.Zero}
	for _, item := range items {
		price(item, byID[item.ProductID])
		if item.Available {
			cart.ItemCount += item.Quantity
			cart.Total = cart.Total.Add(item.Subtotal)
		}
	}
	return cart, nil
}

// UpdateQuantity sets a line's quantity; zero or less removes the line.
func (s *service) UpdateQuantity(ctx context.Context, userID, itemID uint, quantity int) (*CartItem, error) {
	if quantity <= 0 {
		return nil, s.repo.Remove(ctx, userID, itemID)
	}

	item, err := s.repo.Get(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	p, err := s.products.Get(ctx, item.ProductID)
	if err != nil {
		return nil, err
	}
	if quantity > p.Stock {
		return nil, product.ErrInsufficientStock
	}

	item, err = s.repo.SetQuantity(ctx, userID, itemID, quantity)
	if err != nil {
		return nil, err
	}
	price(item, p)
	return item, nil
}

func (s *service) RemoveFromCart(ctx context.Context, userID, itemID uint) error {
	return s.repo.Remove(ctx, userID, itemID)
}

func (s *service) ClearCart(ctx context.Context, userID uint) error {
	return s.repo.Clear(ctx, userID)
}
