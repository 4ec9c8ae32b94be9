package category

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront-be/internal/cache"
	"storefront-be/internal/logger"
	"storefront-be/internal/utils"

	"go.uber.org/zap"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
	maxSearchLength = 100
	cacheTTL        = time.Minute
)

type Service interface {
	List(ctx context.Context, search string, page, limit int) (*ListResult, error)
}

type service struct {
	repo  Repository
	cache cache.Cache
}

// NewService returns a category service. c may be nil to disable caching.
func NewService(repo Repository, c cache.Cache) Service {
	return &service{repo: repo, cache: c}
}

func (s *service) List(ctx context.Context, search string, page, limit int) (*ListResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ListCategories"),
	)

	search = strings.TrimSpace(search)
	if len(search) > maxSearchLength {
		return nil, fmt.Errorf("%w: search too long", ErrInvalidQuery)
	}

	page, limit, offset := utils.Pagination(page, limit, defaultPageSize, maxPageSize)
	key := fmt.Sprintf("categories:%s:%d:%d", strings.ToLower(search), page, limit)

	if s.cache != nil {
		var cached ListResult
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			log.Warn("category cache read failed", zap.Error(err))
		} else if found {
			return &cached, nil
		}
	}

	items, total, err := s.repo.List(ctx, search, limit, offset)
	if err != nil {
		log.Error("failed to list categories", zap.Error(err))
		return nil, err
	}

	res := &ListResult{Items: items, Total: total, Page: page, Limit: limit}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, res, cacheTTL); err != nil {
			log.Warn("category cache write failed", zap.Error(err))
		}
	}

	log.Info("list categories success", zap.Int("count", len(items)), zap.Int("total", total))
	return res, nil
}
