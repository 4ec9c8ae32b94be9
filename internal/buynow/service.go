package buynow

import (
	"context"
	"strings"
	"time"

	"storefront-be/internal/logger"
	"storefront-be/internal/order"
	"storefront-be/internal/product"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultTTL = 15 * time.Minute

type ProductLookup interface {
	Get(ctx context.Context, id uint) (*product.Product, error)
}

type OrderPlacer interface {
	Place(ctx context.Context, params order.PlaceOrderParams) (*order.Order, error)
}

type Service interface {
	Create(ctx context.Context, params CreateParams) (*Session, error)
	Get(ctx context.Context, userID uint, id uuid.UUID) (*Session, error)
	Checkout(ctx context.Context, userID uint, id uuid.UUID, shipping order.Shipping) (*order.Order, error)
	Cancel(ctx context.Context, userID uint, id uuid.UUID) error
	PurgeExpired(ctx context.Context) (int64, error)
	Run(ctx context.Context, interval time.Duration)
}

type service struct {
	repo     Repository
	products ProductLookup
	orders   OrderPlacer
	ttl      time.Duration
	now      func() time.Time
}

func NewService(repo Repository, products ProductLookup, orders OrderPlacer, ttl time.Duration) Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &service{repo: repo, products: products, orders: orders, ttl: ttl, now: time.Now}
}

func (s *service) Create(ctx context.Context, params CreateParams) (*Session, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateBuyNow"),
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

	size := strings.TrimSpace(params.Size)
	if !p.HasSize(size) {
		return nil, ErrInvalidSize
	}
	for _, offered := range p.Sizes {
		if strings.EqualFold(offered, size) {
			size = offered
		}
	}

	if params.Quantity > p.Stock {
		return nil, product.ErrInsufficientStock
	}

	now := s.now()
	sess := &Session{
		ID:          uuid.New(),
		UserID:      params.UserID,
		ProductID:   p.ID,
		ProductName: p.Name,
		Size:        size,
		Quantity:    params.Quantity,
		UnitPrice:   p.Price,
		ExpiresAt:   now.Add(s.ttl),
		CreatedAt:   now,
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, err
	}

	log.Info("buy-now session created",
		zap.String("session_id", sess.ID.String()),
		zap.Time("expires_at", sess.ExpiresAt),
	)
	return sess, nil
}

func (s *service) Get(ctx context.Context, userID uint, id uuid.UUID) (*Session, error) {
	sess, err := s.repo.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if sess.Expired(s.now()) {
		return nil, ErrSessionExpired
	}
	return sess, nil
}

// Checkout turns the session into an order at the snapshot price. The session is
// consumed first; if placing the order fails it is put back.
func (s *service) Checkout(ctx context.Context, userID uint, id uuid.UUID, shipping order.Shipping) (*order.Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CheckoutBuyNow"),
		zap.String("session_id", id.String()),
	)

	sess, err := s.repo.Claim(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if sess.Expired(s.now()) {
		log.Info("checkout of expired session")
		return nil, ErrSessionExpired
	}

	price := sess.UnitPrice
	o, err := s.orders.Place(ctx, order.PlaceOrderParams{
		UserID: userID,
		Lines: []order.Line{{
			ProductID: sess.ProductID,
			Size:      sess.Size,
			Quantity:  sess.Quantity,
			UnitPrice: &price,
		}},
		Shipping: shipping,
	})
	if err != nil {
		if restoreErr := s.repo.Create(ctx, sess); restoreErr != nil {
			log.Error("failed to restore buy-now session", zap.Error(restoreErr))
		}
		return nil, err
	}

	log.Info("buy-now checkout completed", zap.Uint("order_id", o.ID))
	return o, nil
}

func (s *service) Cancel(ctx context.Context, userID uint, id uuid.UUID) error {
	return s.repo.Delete(ctx, id, userID)
}

func (s *service) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.FromCtx(ctx).Info("purged expired buy-now sessions", zap.Int64("count", n))
	}
	return n, nil
}

// Run purges expired sessions every interval until ctx is done.
func (s *service) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.PurgeExpired(ctx); err != nil && ctx.Err() == nil {
				logger.FromCtx(ctx).Warn("buy-now janitor failed", zap.Error(err))
			}
		}
	}
}
