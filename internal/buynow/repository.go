package buynow

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"storefront-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id uuid.UUID, userID uint) (*Session, error)
	// Claim deletes the session and returns it, so only one checkout can consume it.
	Claim(ctx context.Context, id uuid.UUID, userID uint) (*Session, error)
	Delete(ctx context.Context, id uuid.UUID, userID uint) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const sessionColumns = "id, user_id, product_id, product_name, size, quantity, unit_price, expires_at, created_at"

func scanSession(s interface{ Scan(...any) error }) (*Session, error) {
	var bn Session
	err := s.Scan(&bn.ID, &bn.UserID, &bn.ProductID, &bn.ProductName, &bn.Size,
		&bn.Quantity, &bn.UnitPrice, &bn.ExpiresAt, &bn.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &bn, nil
}

func (r *repository) Create(ctx context.Context, s *Session) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO buy_now_sessions (
			id, user_id, product_id, product_name, size,
			quantity, unit_price, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`,
		s.ID,
		s.UserID,
		s.ProductID,
		s.ProductName,
		s.Size,
		s.Quantity,
		s.UnitPrice,
		s.ExpiresAt,
	).Scan(&s.CreatedAt)
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to insert buy-now session",
			zap.String("session_id", s.ID.String()),
			zap.Error(err),
		)
	}
	return err
}

func (r *repository) Get(ctx context.Context, id uuid.UUID, userID uint) (*Session, error) {
	return scanSession(r.db.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM buy_now_sessions WHERE id = $1 AND user_id = $2",
		id, userID,
	))
}

func (r *repository) Claim(ctx context.Context, id uuid.UUID, userID uint) (*Session, error) {
	return scanSession(r.db.QueryRowContext(ctx,
		"DELETE FROM buy_now_sessions WHERE id = $1 AND user_id = $2 RETURNING "+sessionColumns,
		id, userID,
	))
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID, userID uint) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM buy_now_sessions WHERE id = $1 AND user_id = $2", id, userID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *repository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM buy_now_sessions WHERE expires_at <= $1", now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
