package rating

import (
	"context"
	"database/sql"
	"errors"

	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	Upsert(ctx context.Context, userID, productID uint, value int) (*Rating, error)
	Get(ctx context.Context, userID, productID uint) (*Rating, error)
	Delete(ctx context.Context, userID, productID uint) error
	// Counts returns the number of ratings per value for a product.
	Counts(ctx context.Context, productID uint) (map[int]int, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Upsert(ctx context.Context, userID, productID uint, value int) (*Rating, error) {
	rt := Rating{UserID: userID, ProductID: productID}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO product_ratings (user_id, product_id, rating)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET rating = EXCLUDED.rating, updated_at = NOW()
		RETURNING rating, created_at, updated_at
	`, userID, productID, value).Scan(&rt.Value, &rt.CreatedAt, &rt.UpdatedAt)
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to upsert rating",
			zap.Uint("user_id", userID),
			zap.Uint("product_id", productID),
			zap.Error(err),
		)
		return nil, err
	}
	return &rt, nil
}

func (r *repository) Get(ctx context.Context, userID, productID uint) (*Rating, error) {
	rt := Rating{UserID: userID, ProductID: productID}
	err := r.db.QueryRowContext(ctx, `
		SELECT rating, created_at, updated_at
		FROM product_ratings
		WHERE user_id = $1 AND product_id = $2
	`, userID, productID).Scan(&rt.Value, &rt.CreatedAt, &rt.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRatingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

func (r *repository) Delete(ctx context.Context, userID, productID uint) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM product_ratings WHERE user_id = $1 AND product_id = $2",
		userID, productID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRatingNotFound
	}
	return nil
}

func (r *repository) Counts(ctx context.Context, productID uint) (map[int]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT rating, COUNT(*)
		FROM product_ratings
		WHERE product_id = $1
		GROUP BY rating
	`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[int]int{}
	for rows.Next() {
		var value, n int
		if err := rows.Scan(&value, &n); err != nil {
			return nil, err
		}
		counts[value] = n
	}
	return counts, rows.Err()
}
