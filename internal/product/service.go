package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront-be/internal/cache"
	"storefront-be/internal/events"
	"storefront-be/internal/logger"
	"storefront-be/internal/utils"

	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxNameLength   = 200
	cacheTTL        = 5 * time.Minute
)

type Service interface {
	List(ctx context.Context, opts ListOptions) (*ListResult, error)
	Get(ctx context.Context, id uint) (*Product, error)
	GetMany(ctx context.Context, ids []uint) ([]*Product, error)
	Create(ctx context.Context, params CreateParams) (*Product, error)
	Update(ctx context.Context, id uint, params UpdateParams) (*Product, error)
	Delete(ctx context.Context, id uint) error
	AdjustStock(ctx context.Context, id uint, delta int) (*Product, error)
	LowStock(ctx context.Context, threshold, limit int) ([]*Product, error)
	Purchased(ctx context.Context, userID uint) ([]*PurchasedProduct, error)
	StockChanged(ctx context.Context, ids []uint)
}

type service struct {
	repo      Repository
	cache     cache.Cache
	publisher events.Publisher
}

func NewService(repo Repository, c cache.Cache, publisher events.Publisher) Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &service{repo: repo, cache: c, publisher: publisher}
}

func cacheKey(id uint) string {
	return fmt.Sprintf("product:%d", id)
}

func (s *service) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ListProducts"),
	)
	start := time.Now()

	opts.Page, opts.Limit, _ = utils.Pagination(opts.Page, opts.Limit, defaultPageSize, maxPageSize)
	opts.IncludeInactive = opts.IncludeInactive && utils.IsAdmin(ctx)

	if opts.MinPrice != nil && opts.MaxPrice != nil && opts.MinPrice.GreaterThan(*opts.MaxPrice) {
		return nil, fmt.Errorf("%w: min_price greater than max_price", ErrInvalidProduct)
	}

	products, total, err := s.repo.List(ctx, opts)
	if err != nil {
		log.Error("failed to fetch product list", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return nil, err
	}

	log.Info("get product list success",
		zap.Int("count", len(products)),
		zap.Int("page", opts.Page),
		zap.Int("limit", opts.Limit),
		zap.String("search", opts.Search),
		zap.Duration("duration", time.Since(start)),
	)

	return &ListResult{
		Items:      products,
		Page:       opts.Page,
		Limit:      opts.Limit,
		TotalCount: total,
	}, nil
}

// Get serves from cache when possible. Inactive products are visible to admins only.
func (s *service) Get(ctx context.Context, id uint) (*Product, error) {
	log := logger.FromCtx(ctx).With(zap.Uint("product_id", id))

	var p *Product
	if s.cache != nil {
		var cached Product
		found, err := s.cache.Get(ctx, cacheKey(id), &cached)
		if err != nil {
			log.Warn("product cache read failed", zap.Error(err))
		}
		if found {
			p = &cached
		}
	}

	if p == nil {
		var err error
		p, err = s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Set(ctx, cacheKey(id), p, cacheTTL); err != nil {
				log.Warn("product cache write failed", zap.Error(err))
			}
		}
	}

	if !p.Active && !utils.IsAdmin(ctx) {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *service) GetMany(ctx context.Context, ids []uint) ([]*Product, error) {
	return s.repo.GetMany(ctx, ids)
}

func validateLists(images, sizes []string) ([]string, []string, error) {
	if _, err := utils.JoinList(images, imageSeparator); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidProduct, err)
	}
	if _, err := utils.JoinList(sizes, sizeSeparator); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidProduct, err)
	}
	return utils.SplitList(strings.Join(images, imageSeparator), imageSeparator),
		utils.SplitList(strings.Join(sizes, sizeSeparator), sizeSeparator), nil
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidProduct)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: name is too long", ErrInvalidProduct)
	}
	return nil
}

func (s *service) Create(ctx context.Context, params CreateParams) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateProduct"),
	)

	if err := validateName(params.Name); err != nil {
		return nil, err
	}
	if !params.Price.IsPositive() {
		return nil, fmt.Errorf("%w: price must be positive", ErrInvalidProduct)
	}
	if params.Stock < 0 {
		return nil, fmt.Errorf("%w: stock cannot be negative", ErrInvalidProduct)
	}

	images, sizes, err := validateLists(params.Images, params.Sizes)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.Create(ctx, &Product{
		Name:        strings.TrimSpace(params.Name),
		Description: params.Description,
		Category:    strings.TrimSpace(params.Category),
		Price:       params.Price.Round(2),
		Stock:       params.Stock,
		Images:      images,
		Sizes:       sizes,
	})
	if err != nil {
		log.Error("failed to create product", zap.Error(err))
		return nil, err
	}

	log.Info("product created", zap.Uint("product_id", p.ID))
	s.publish(ctx, events.ProductCreated, p)
	return p, nil
}

func (s *service) Update(ctx context.Context, id uint, params UpdateParams) (*Product, error) {
	if params.empty() {
		return nil, ErrNoFieldsToUpdate
	}
	if params.Name != nil {
		if err := validateName(*params.Name); err != nil {
			return nil, err
		}
	}
	if params.Price != nil {
		if !params.Price.IsPositive() {
			return nil, fmt.Errorf("%w: price must be positive", ErrInvalidProduct)
		}
		rounded := params.Price.Round(2)
		params.Price = &rounded
	}
	if params.Images != nil || params.Sizes != nil {
		var images, sizes []string
		if params.Images != nil {
			images = *params.Images
		}
		if params.Sizes != nil {
			sizes = *params.Sizes
		}
		images, sizes, err := validateLists(images, sizes)
		if err != nil {
			return nil, err
		}
		if params.Images != nil {
			params.Images = &images
		}
		if params.Sizes != nil {
			params.Sizes = &sizes
		}
	}

	p, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	s.publish(ctx, events.ProductUpdated, p)
	return p, nil
}

func (s *service) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, id)
	s.publish(ctx, events.ProductDeleted, &Product{ID: id})
	return nil
}

func (s *service) AdjustStock(ctx context.Context, id uint, delta int) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AdjustStock"),
		zap.Uint("product_id", id),
		zap.Int("delta", delta),
	)

	if delta == 0 {
		return nil, fmt.Errorf("%w: delta cannot be zero", ErrInvalidProduct)
	}

	stock, err := s.repo.AdjustStock(ctx, id, delta)
	if err != nil {
		log.Warn("stock adjustment rejected", zap.Error(err))
		return nil, err
	}
	log.Info("stock adjusted", zap.Int("stock", stock))

	s.invalidate(ctx, id)

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.ProductStockChanged, p)
	return p, nil
}

func (s *service) LowStock(ctx context.Context, threshold, limit int) ([]*Product, error) {
	if threshold < 0 {
		threshold = 0
	}
	_, limit, _ = utils.Pagination(1, limit, 50, 200)
	return s.repo.LowStock(ctx, threshold, limit)
}

func (s *service) Purchased(ctx context.Context, userID uint) ([]*PurchasedProduct, error) {
	if userID == 0 {
		return nil, errors.New("user ID is required")
	}
	return s.repo.Purchased(ctx, userID)
}

// StockChanged refreshes cache and notifies subscribers after stock moved outside
// this service, e.g. when an order is placed or cancelled.
func (s *service) StockChanged(ctx context.Context, ids []uint) {
	for _, id := range ids {
		s.invalidate(ctx, id)

		p, err := s.repo.GetByID(ctx, id)
		if err != nil {
			logger.FromCtx(ctx).Warn("reload product after stock change failed",
				zap.Uint("product_id", id), zap.Error(err))
			continue
		}
		s.publish(ctx, events.ProductStockChanged, p)
	}
}

func (s *service) invalidate(ctx context.Context, id uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKey(id)); err != nil {
		logger.FromCtx(ctx).Warn("product cache invalidation failed", zap.Uint("product_id", id), zap.Error(err))
	}
}

func (s *service) publish(ctx context.Context, typ events.EventType, p *Product) {
	event := events.ProductEvent{
		Type:      typ,
		ProductID: p.ID,
		Name:      p.Name,
		At:        time.Now().UTC(),
	}
	if typ != events.ProductDeleted {
		price, stock := p.Price, p.Stock
		event.Price = &price
		event.Stock = &stock
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.FromCtx(ctx).Warn("publish product event failed",
			zap.String("type", string(typ)), zap.Uint("product_id", p.ID), zap.Error(err))
	}
}
