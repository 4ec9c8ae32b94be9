package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"storefront-be/internal/logger"
	"storefront-be/internal/product"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	Place(ctx context.Context, o *Order, clearCart bool) (*Order, error)
	GetByID(ctx context.Context, id uint) (*Order, error)
	List(ctx context.Context, filter ListFilter) ([]*Order, int, error)
	// UpdateStatus moves an order from one status to another. When restoreStock is
	// set the ordered quantities go back to the products in the same transaction.
	UpdateStatus(ctx context.Context, id uint, from, to OrderStatus, restoreStock bool) (*Order, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const orderColumns = `o.id, o.order_number, o.user_id, o.status, o.total,
	o.shipping_name, o.shipping_phone, o.shipping_address, o.created_at, o.updated_at`

func scanOrder(s interface{ Scan(...any) error }) (*Order, error) {
	var o Order
	err := s.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.Status, &o.Total,
		&o.Shipping.RecipientName, &o.Shipping.Phone, &o.Shipping.Address,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Items = []*OrderItem{}
	return &o, nil
}

func (r *repository) Place(ctx context.Context, o *Order, clearCart bool) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "PlaceOrder"),
		zap.Uint("user_id", o.UserID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// 1. Deduct stock; a short product aborts the whole order
	for _, item := range o.Items {
		res, err := tx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock - $1, updated_at = NOW()
			WHERE id = $2 AND is_active = TRUE AND stock >= $1
		`, item.Quantity, item.ProductID)
		if err != nil {
			return nil, err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			log.Info("order rejected: insufficient stock", zap.Uint("product_id", item.ProductID))
			return nil, fmt.Errorf("%w: product %d", product.ErrInsufficientStock, item.ProductID)
		}
	}

	// 2. Insert order
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (
			order_number, user_id, status, total,
			shipping_name, shipping_phone, shipping_address
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`,
		o.OrderNumber,
		o.UserID,
		o.Status,
		o.Total,
		o.Shipping.RecipientName,
		o.Shipping.Phone,
		o.Shipping.Address,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return nil, err
	}

	// 3. Insert snapshot items
	for _, item := range o.Items {
		item.OrderID = o.ID
		err = tx.QueryRowContext(ctx, `
			INSERT INTO order_items (
				order_id, product_id, product_name, size,
				quantity, unit_price, subtotal
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`,
			o.ID,
			item.ProductID,
			item.ProductName,
			item.Size,
			item.Quantity,
			item.UnitPrice,
			item.Subtotal,
		).Scan(&item.ID)
		if err != nil {
			log.Error("failed to insert order item", zap.Error(err))
			return nil, err
		}
	}

	// 4. Empty the cart the order came from
	if clearCart {
		if _, err := tx.ExecContext(ctx, "DELETE FROM carts WHERE user_id = $1", o.UserID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders o WHERE o.id = $1", id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadItems(ctx, r.db, []*Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (r *repository) loadItems(ctx context.Context, q querier, orders []*Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]int64, len(orders))
	byID := make(map[uint]*Order, len(orders))
	for i, o := range orders {
		ids[i] = int64(o.ID)
		byID[o.ID] = o
	}

	rows, err := q.QueryContext(ctx, `
		SELECT id, order_id, product_id, product_name, size, quantity, unit_price, subtotal
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, id
	`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&item.Size, &item.Quantity, &item.UnitPrice, &item.Subtotal); err != nil {
			return err
		}
		if o, ok := byID[item.OrderID]; ok {
			o.Items = append(o.Items, &item)
		}
	}
	return rows.Err()
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]*Order, int, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListOrders"),
	)

	where := []string{}
	args := []any{}

	if filter.UserID != 0 {
		args = append(args, filter.UserID)
		where = append(where, fmt.Sprintf("o.user_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("o.status = $%d", len(args)))
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders o"+whereClause, args...).Scan(&total); err != nil {
		log.Error("count orders failed", zap.Error(err))
		return nil, 0, err
	}

	query := "SELECT " + orderColumns + " FROM orders o" + whereClause +
		fmt.Sprintf(" ORDER BY o.created_at DESC, o.id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("list orders failed", zap.Error(err))
		return nil, 0, err
	}

	orders := []*Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := r.loadItems(ctx, r.db, orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uint, from, to OrderStatus, restoreStock bool) (*Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Compare-and-set on the current status so concurrent updates cannot both win.
	o, err := scanOrder(tx.QueryRowContext(ctx, `
		UPDATE orders AS o SET status = $1, updated_at = NOW()
		WHERE o.id = $2 AND o.status = $3
		RETURNING `+orderColumns,
		to, id, from,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidTransition
	}
	if err != nil {
		return nil, err
	}

	if restoreStock {
		_, err := tx.ExecContext(ctx, `
			UPDATE products AS p
			SET stock = p.stock + oi.qty, updated_at = NOW()
			FROM (
				SELECT product_id, SUM(quantity) AS qty
				FROM order_items
				WHERE order_id = $1
				GROUP BY product_id
			) AS oi
			WHERE p.id = oi.product_id
		`, id)
		if err != nil {
			return nil, err
		}
	}

	if err := r.loadItems(ctx, tx, []*Order{o}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return o, nil
}
