package comment

import (
	"context"
	"strings"
	"unicode/utf8"

	"storefront-be/internal/logger"
	"storefront-be/internal/product"
	"storefront-be/internal/utils"

	"go.uber.org/zap"
)

type ProductLookup interface {
	Get(ctx context.Context, id uint) (*product.Product, error)
}

type Service interface {
	List(ctx context.Context, productID uint, page, limit int) (*ListResult, error)
	Create(ctx context.Context, userID, productID uint, body string) (*Comment, error)
	Delete(ctx context.Context, commentID uint) error
}

type service struct {
	repo     Repository
	products ProductLookup
}

func NewService(repo Repository, products ProductLookup) Service {
	return &service{repo: repo, products: products}
}

func (s *service) List(ctx context.Context, productID uint, page, limit int) (*ListResult, error) {
	page, limit, offset := utils.Pagination(page, limit, 20, 100)

	items, total, err := s.repo.List(ctx, productID, limit, offset)
	if err != nil {
		return nil, err
	}
	return &ListResult{Items: items, Page: page, Limit: limit, TotalCount: total}, nil
}

func (s *service) Create(ctx context.Context, userID, productID uint, body string) (*Comment, error) {
	body = strings.TrimSpace(body)
	if n := utf8.RuneCountInString(body); n == 0 || n > MaxLength {
		return nil, ErrInvalidComment
	}
	if _, err := s.products.Get(ctx, productID); err != nil {
		return nil, err
	}

	c, err := s.repo.Create(ctx, &Comment{ProductID: productID, UserID: userID, Body: body})
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("comment created",
		zap.Uint("comment_id", c.ID),
		zap.Uint("product_id", productID),
		zap.Uint("user_id", userID),
	)
	return c, nil
}

// Delete removes a comment on behalf of the caller in ctx: its author or an admin.
func (s *service) Delete(ctx context.Context, commentID uint) error {
	actorID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return ErrForbidden
	}

	c, err := s.repo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if c.UserID != actorID && !utils.IsAdmin(ctx) {
		return ErrForbidden
	}

	return s.repo.Delete(ctx, commentID)
}
