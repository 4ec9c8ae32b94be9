package rating

import (
	"context"

	"storefront-be/internal/logger"
	"storefront-be/internal/product"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductLookup resolves a visible product; unknown ids yield product.ErrProductNotFound.
type ProductLookup interface {
	Get(ctx context.Context, id uint) (*product.Product, error)
}

type Service interface {
	Rate(ctx context.Context, userID, productID uint, value int) (*Rating, error)
	Summary(ctx context.Context, productID uint) (*Summary, error)
	UserRating(ctx context.Context, userID, productID uint) (*Rating, error)
	Remove(ctx context.Context, userID, productID uint) error
}

type service struct {
	repo     Repository
	products ProductLookup
}

func NewService(repo Repository, products ProductLookup) Service {
	return &service{repo: repo, products: products}
}

func (s *service) Rate(ctx context.Context, userID, productID uint, value int) (*Rating, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Rate"),
		zap.Uint("product_id", productID),
	)

	if value < MinValue || value > MaxValue {
		return nil, ErrInvalidRating
	}
	if _, err := s.products.Get(ctx, productID); err != nil {
		return nil, err
	}

	rt, err := s.repo.Upsert(ctx, userID, productID, value)
	if err != nil {
		return nil, err
	}

	log.Info("product rated", zap.Int("rating", value))
	return rt, nil
}

// Summary averages all ratings of a product, rounded to two decimals.
func (s *service) Summary(ctx context.Context, productID uint) (*Summary, error) {
	counts, err := s.repo.Counts(ctx, productID)
	if err != nil {
		return nil, err
	}

	sum := &Summary{ProductID: productID, Distribution: make(map[int]int, MaxValue)}
	total := 0
	for v := MinValue; v <= MaxValue; v++ {
		n := counts[v]
		sum.Distribution[v] = n
		sum.Count += n
		total += v * n
	}

	if sum.Count > 0 {
		sum.Average, _ = decimal.NewFromInt(int64(total)).
			Div(decimal.NewFromInt(int64(sum.Count))).
			Round(2).
			Float64()
	}
	return sum, nil
}

func (s *service) UserRating(ctx context.Context, userID, productID uint) (*Rating, error) {
	return s.repo.Get(ctx, userID, productID)
}

func (s *service) Remove(ctx context.Context, userID, productID uint) error {
	return s.repo.Delete(ctx, userID, productID)
}
