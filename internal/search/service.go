package search

import (
	"context"
	"net/http"
	"strings"

	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"
	"storefront-be/internal/product"

	"go.uber.org/zap"
)

const MaxImageSize = 5 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

type ProductSearcher interface {
	List(ctx context.Context, opts product.ListOptions) (*product.ListResult, error)
	GetMany(ctx context.Context, ids []uint) ([]*product.Product, error)
}

type Result struct {
	Product *product.Product `json:"product"`
	Score   float64          `json:"score"`
}

type Stats struct {
	KeywordSearches metrics.Counter
	ImageSearches   metrics.Counter
	MatcherFailures metrics.Counter
}

type Service interface {
	Keyword(ctx context.Context, q string, page, limit int) (*product.ListResult, error)
	Image(ctx context.Context, image []byte) ([]*Result, error)
}

type service struct {
	products ProductSearcher
	matcher  ImageMatcher
	stats    *Stats
}

// NewService builds the search service. matcher may be nil, which disables image search.
func NewService(products ProductSearcher, matcher ImageMatcher, stats *Stats) Service {
	if stats == nil {
		stats = &Stats{}
	}
	return &service{products: products, matcher: matcher, stats: stats}
}

func (s *service) Keyword(ctx context.Context, q string, page, limit int) (*product.ListResult, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, ErrEmptyQuery
	}
	s.stats.KeywordSearches.Inc()

	return s.products.List(ctx, product.ListOptions{
		Search:       q,
		Page:         page,
		Limit:        limit,
		IncludeCount: true,
	})
}

// Image sniffs and size-checks the upload, asks the matcher for similar
// products and returns them in match order with their scores.
func (s *service) Image(ctx context.Context, image []byte) ([]*Result, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ImageSearch"),
	)

	if s.matcher == nil {
		return nil, ErrImageSearchUnavailable
	}
	if len(image) == 0 {
		return nil, ErrUnsupportedImage
	}
	if len(image) > MaxImageSize {
		return nil, ErrImageTooLarge
	}

	contentType := http.DetectContentType(image)
	if !allowedImageTypes[contentType] {
		return nil, ErrUnsupportedImage
	}
	s.stats.ImageSearches.Inc()

	timer := metrics.StartTimer()
	matches, err := s.matcher.Match(ctx, image, contentType)
	if err != nil {
		s.stats.MatcherFailures.Inc()
		log.Error("image match failed", zap.Error(err), zap.Duration("duration", timer.Duration()))
		return nil, err
	}

	ids := make([]uint, 0, len(matches))
	scores := make(map[uint]float64, len(matches))
	for _, m := range matches {
		if _, dup := scores[m.ProductID]; dup {
			continue
		}
		scores[m.ProductID] = m.Score
		ids = append(ids, m.ProductID)
	}

	products, err := s.products.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	results := make([]*Result, 0, len(products))
	for _, p := range products {
		results = append(results, &Result{Product: p, Score: scores[p.ID]})
	}

	log.Info("image search completed",
		zap.String("content_type", contentType),
		zap.Int("matches", len(matches)),
		zap.Int("results", len(results)),
		zap.Duration("duration", timer.Duration()),
	)
	return results, nil
}
