package dashboard

import (
	"context"
	"database/sql"
	"time"

	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	Overview(ctx context.Context, lowStockThreshold int) (*Overview, error)
	Sales(ctx context.Context, since time.Time) ([]DailySales, error)
	TopProducts(ctx context.Context, limit int) ([]TopProduct, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Overview(ctx context.Context, lowStockThreshold int) (*Overview, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Overview"),
	)

	o := Overview{OrdersByStatus: map[string]int{}}
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COALESCE(SUM(total), 0) FROM orders WHERE status <> 'CANCELLED'),
			(SELECT COUNT(*) FROM orders),
			(SELECT COUNT(*) FROM users WHERE role = 'USER'),
			(SELECT COUNT(*) FROM products WHERE is_active = TRUE),
			(SELECT COUNT(*) FROM products WHERE is_active = TRUE AND stock <= $1)
	`, lowStockThreshold).Scan(&o.Revenue, &o.Orders, &o.Customers, &o.Products, &o.LowStock)
	if err != nil {
		log.Error("overview query failed", zap.Error(err))
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM orders GROUP BY status")
	if err != nil {
		log.Error("orders by status query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		o.OrdersByStatus[status] = n
	}
	return &o, rows.Err()
}

func (r *repository) Sales(ctx context.Context, since time.Time) ([]DailySales, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DATE_TRUNC('day', created_at AT TIME ZONE 'UTC') AT TIME ZONE 'UTC' AS day,
			COALESCE(SUM(total), 0), COUNT(*)
		FROM orders
		WHERE status <> 'CANCELLED' AND created_at >= $1
		GROUP BY day
		ORDER BY day
	`, since)
	if err != nil {
		logger.FromCtx(ctx).Error("sales query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	sales := []DailySales{}
	for rows.Next() {
		var d DailySales
		if err := rows.Scan(&d.Day, &d.Revenue, &d.Orders); err != nil {
			return nil, err
		}
		sales = append(sales, d)
	}
	return sales, rows.Err()
}

func (r *repository) TopProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT oi.product_id, MAX(oi.product_name), SUM(oi.quantity), SUM(oi.subtotal)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.status <> 'CANCELLED'
		GROUP BY oi.product_id
		ORDER BY SUM(oi.quantity) DESC, oi.product_id ASC
		LIMIT $1
	`, limit)
	if err != nil {
		logger.FromCtx(ctx).Error("top products query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	top := []TopProduct{}
	for rows.Next() {
		var p TopProduct
		if err := rows.Scan(&p.ProductID, &p.Name, &p.Quantity, &p.Revenue); err != nil {
			return nil, err
		}
		top = append(top, p)
	}
	return top, rows.Err()
}
