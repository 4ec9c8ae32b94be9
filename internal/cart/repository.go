package cart

import (
	"context"
	"database/sql"
	"errors"

	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	Find(ctx context.Context, userID, productID uint, size string) (*CartItem, error)
	Get(ctx context.Context, userID, itemID uint) (*CartItem, error)
	List(ctx context.Context, userID uint) ([]*CartItem, error)
	Create(ctx context.Context, params AddToCartParams) (*CartItem, error)
	SetQuantity(ctx context.Context, userID, itemID uint, quantity int) (*CartItem, error)
	Remove(ctx context.Context, userID, itemID uint) error
	Clear(ctx context.Context, userID uint) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const cartColumns = "id, user_id, product_id, size, quantity, created_at, updated_at"

func scanItem(s interface{ Scan(...any) error }) (*CartItem, error) {
	var item CartItem
	err := s.Scan(&item.ID, &item.UserID, &item.ProductID, &item.Size, &item.Quantity, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Find returns the line for (user, product, size), or nil when there is none.
func (r *repository) Find(ctx context.Context, userID, productID uint, size string) (*CartItem, error) {
	item, err := scanItem(r.db.QueryRowContext(ctx,
		"SELECT "+cartColumns+" FROM carts WHERE user_id = $1 AND product_id = $2 AND size = $3",
		userID, productID, size,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return item, err
}

func (r *repository) Get(ctx context.Context, userID, itemID uint) (*CartItem, error) {
	item, err := scanItem(r.db.QueryRowContext(ctx,
		"SELECT "+cartColumns+" FROM carts WHERE id = $1 AND user_id = $2",
		itemID, userID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCartItemNotFound
	}
	return item, err
}

func (r *repository) List(ctx context.Context, userID uint) ([]*CartItem, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+cartColumns+" FROM carts WHERE user_id = $1 ORDER BY created_at ASC, id ASC",
		userID,
	)
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to list cart", zap.Uint("user_id", userID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	items := []*CartItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Create inserts a line; a concurrent insert of the same line adds to its quantity.
func (r *repository) Create(ctx context.Context, params AddToCartParams) (*CartItem, error) {
	item, err := scanItem(r.db.QueryRowContext(ctx, `
		INSERT INTO carts (user_id, product_id, size, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, product_id, size)
		DO UPDATE SET quantity = carts.quantity + EXCLUDED.quantity, updated_at = NOW()
		RETURNING `+cartColumns,
		params.UserID, params.ProductID, params.Size, params.Quantity,
	))
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to create cart item",
			zap.Uint("user_id", params.UserID),
			zap.Uint("product_id", params.ProductID),
			zap.Error(err),
		)
		return nil, err
	}
	return item, nil
}

func (r *repository) SetQuantity(ctx context.Context, userID, itemID uint, quantity int) (*CartItem, error) {
	item, err := scanItem(r.db.QueryRowContext(ctx, `
		UPDATE carts
		SET quantity = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
		RETURNING `+cartColumns,
		quantity, itemID, userID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCartItemNotFound
	}
	return item, err
}

func (r *repository) Remove(ctx context.Context, userID, itemID uint) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM carts WHERE id = $1 AND user_id = $2", itemID, userID)
	if err != nil {
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

func (r *repository) Clear(ctx context.Context, userID uint) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM carts WHERE user_id = $1", userID)
	return err
}
