package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, u *User) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uint) (*User, error)
	List(ctx context.Context, filter ListFilter) ([]*User, int, error)
	SetStatus(ctx context.Context, id uint, blocked, suspended bool) (*User, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const userColumns = "u.id, u.email, u.name, u.password, u.role, u.blocked, u.suspended, u.created_at"

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*User, error) {
	var u User
	err := s.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.Blocked, &u.Suspended, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) Create(ctx context.Context, u *User) (*User, error) {
	log := logger.FromCtx(ctx)

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (email, name, password, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, blocked, suspended, created_at
	`, u.Email, u.Name, u.PasswordHash, u.Role,
	).Scan(&u.ID, &u.Blocked, &u.Suspended, &u.CreatedAt)

	if isUniqueViolation(err) {
		return nil, ErrEmailExists
	}
	if err != nil {
		log.Error("db: failed to insert user",
			zap.String("email", u.Email),
			zap.Error(err),
		)
		return nil, err
	}

	return u, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users u WHERE u.email = $1", email,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (r *repository) GetByID(ctx context.Context, id uint) (*User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users u WHERE u.id = $1", id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]*User, int, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListUsers"),
	)

	where := []string{}
	args := []any{}

	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		where = append(where, fmt.Sprintf("(u.email ILIKE $%d OR u.name ILIKE $%d)", len(args), len(args)))
	}

	switch filter.Status {
	case StatusActive:
		where = append(where, "u.blocked = FALSE AND u.suspended = FALSE")
	case StatusBlocked:
		where = append(where, "u.blocked = TRUE")
	case StatusSuspended:
		where = append(where, "u.suspended = TRUE")
	}

	if filter.Role != "" {
		args = append(args, filter.Role)
		where = append(where, fmt.Sprintf("u.role = $%d", len(args)))
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users u"+whereClause, args...).Scan(&total); err != nil {
		log.Error("count users failed", zap.Error(err))
		return nil, 0, err
	}

	query := "SELECT " + userColumns + " FROM users u" + whereClause +
		fmt.Sprintf(" ORDER BY u.created_at DESC, u.id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("list users failed", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	users := []*User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

func (r *repository) SetStatus(ctx context.Context, id uint, blocked, suspended bool) (*User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `
		UPDATE users AS u SET blocked = $1, suspended = $2, updated_at = NOW()
		WHERE u.id = $3
		RETURNING `+userColumns,
		blocked, suspended, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to update user status", zap.Uint("user_id", id), zap.Error(err))
		return nil, err
	}
	return u, nil
}
