package category

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	List(ctx context.Context, search string, limit, offset int) ([]*Category, int, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *repository) List(ctx context.Context, search string, limit, offset int) ([]*Category, int, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListCategories"),
	)

	where := "WHERE p.is_active = TRUE AND p.category <> ''"
	args := []any{}
	if search != "" {
		args = append(args, "%"+likeEscaper.Replace(search)+"%")
		where += " AND p.category ILIKE $1"
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(DISTINCT LOWER(p.category)) FROM products p "+where, args...,
	).Scan(&total); err != nil {
		log.Error("count categories failed", zap.Error(err))
		return nil, 0, err
	}

	query := `SELECT MIN(p.category), COUNT(*), COUNT(*) FILTER (WHERE p.stock > 0)
		FROM products p ` + where + `
		GROUP BY LOWER(p.category)
		ORDER BY LOWER(p.category) ASC` +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("list categories failed", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	items := []*Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.Name, &c.ProductCount, &c.InStockCount); err != nil {
			return nil, 0, err
		}
		items = append(items, &c)
	}
	return items, total, rows.Err()
}
