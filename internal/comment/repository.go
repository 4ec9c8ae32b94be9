package comment

import (
	"context"
	"database/sql"
	"errors"

	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	List(ctx context.Context, productID uint, limit, offset int) ([]*Comment, int, error)
	GetByID(ctx context.Context, id uint) (*Comment, error)
	Create(ctx context.Context, c *Comment) (*Comment, error)
	Delete(ctx context.Context, id uint) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// Author name falls back to the email when the user has no display name.
const commentColumns = `c.id, c.product_id, c.user_id,
	COALESCE(NULLIF(u.name, ''), u.email), c.body, c.created_at`

func scanComment(s interface{ Scan(...any) error }) (*Comment, error) {
	var c Comment
	if err := s.Scan(&c.ID, &c.ProductID, &c.UserID, &c.AuthorName, &c.Body, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) List(ctx context.Context, productID uint, limit, offset int) ([]*Comment, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM comments WHERE product_id = $1", productID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, "SELECT "+commentColumns+`
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.product_id = $1
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT $2 OFFSET $3`,
		productID, limit, offset,
	)
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to list comments", zap.Uint("product_id", productID), zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	comments := []*Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, 0, err
		}
		comments = append(comments, c)
	}
	return comments, total, rows.Err()
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Comment, error) {
	c, err := scanComment(r.db.QueryRowContext(ctx, "SELECT "+commentColumns+`
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.id = $1`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCommentNotFound
	}
	return c, err
}

func (r *repository) Create(ctx context.Context, c *Comment) (*Comment, error) {
	err := r.db.QueryRowContext(ctx, `
		WITH inserted AS (
			INSERT INTO comments (product_id, user_id, body)
			VALUES ($1, $2, $3)
			RETURNING id, created_at, user_id
		)
		SELECT i.id, i.created_at, COALESCE(NULLIF(u.name, ''), u.email)
		FROM inserted i
		JOIN users u ON u.id = i.user_id
	`, c.ProductID, c.UserID, c.Body).Scan(&c.ID, &c.CreatedAt, &c.AuthorName)
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to insert comment", zap.Uint("product_id", c.ProductID), zap.Error(err))
		return nil, err
	}
	return c, nil
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM comments WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCommentNotFound
	}
	return nil
}
