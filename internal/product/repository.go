package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"storefront-be/internal/logger"
	"storefront-be/internal/utils"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	List(ctx context.Context, opts ListOptions) ([]*Product, *int, error)
	GetByID(ctx context.Context, id uint) (*Product, error)
	GetMany(ctx context.Context, ids []uint) ([]*Product, error)
	Create(ctx context.Context, p *Product) (*Product, error)
	Update(ctx context.Context, id uint, params UpdateParams) (*Product, error)
	Deactivate(ctx context.Context, id uint) error
	AdjustStock(ctx context.Context, id uint, delta int) (int, error)
	LowStock(ctx context.Context, threshold, limit int) ([]*Product, error)
	Purchased(ctx context.Context, userID uint) ([]*PurchasedProduct, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const productColumns = `p.id, p.name, p.description, p.category, p.price, p.stock,
	p.images, p.sizes, p.is_active, p.created_at, p.updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner, extra ...any) (*Product, error) {
	var (
		p      Product
		images string
		sizes  string
	)

	dest := []any{
		&p.ID, &p.Name, &p.Description, &p.Category, &p.Price, &p.Stock,
		&images, &sizes, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	p.Images = utils.SplitList(images, imageSeparator)
	p.Sizes = utils.SplitList(sizes, sizeSeparator)
	return &p, nil
}

func scanProducts(rows *sql.Rows) ([]*Product, error) {
	defer rows.Close()

	products := []*Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func sortColumn(f SortField) string {
	switch f {
	case SortFieldPrice:
		return "p.price"
	case SortFieldName:
		return "p.name"
	default:
		return "p.created_at"
	}
}

func (r *repository) List(ctx context.Context, opts ListOptions) ([]*Product, *int, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListProducts"),
	)

	where := []string{}
	args := []any{}

	if !opts.IncludeInactive {
		where = append(where, "p.is_active = TRUE")
	}

	if search := strings.TrimSpace(opts.Search); search != "" {
		args = append(args, "%"+likeEscaper.Replace(search)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(p.name ILIKE $%d OR p.description ILIKE $%d OR p.category ILIKE $%d)", n, n, n,
		))
	}

	if opts.Category != "" {
		args = append(args, opts.Category)
		where = append(where, fmt.Sprintf("LOWER(p.category) = LOWER($%d)", len(args)))
	}

	if opts.MinPrice != nil {
		args = append(args, *opts.MinPrice)
		where = append(where, fmt.Sprintf("p.price >= $%d", len(args)))
	}

	if opts.MaxPrice != nil {
		args = append(args, *opts.MaxPrice)
		where = append(where, fmt.Sprintf("p.price <= $%d", len(args)))
	}

	if opts.InStock {
		where = append(where, "p.stock > 0")
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total *int
	if opts.IncludeCount {
		var count int
		countQuery := "SELECT COUNT(*) FROM products p" + whereClause
		if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
			log.Error("count products failed", zap.Error(err))
			return nil, nil, err
		}
		total = &count
	}

	dir := "DESC"
	if opts.SortDirection == SortDirectionAsc {
		dir = "ASC"
	}

	query := "SELECT " + productColumns + " FROM products p" + whereClause +
		fmt.Sprintf(" ORDER BY %s %s, p.id DESC", sortColumn(opts.SortField), dir) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, opts.Limit, (opts.Page-1)*opts.Limit)

	log.Debug("executing product list query", zap.String("query", query), zap.Any("args", args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("list products failed", zap.Error(err))
		return nil, nil, err
	}

	products, err := scanProducts(rows)
	if err != nil {
		log.Error("scan products failed", zap.Error(err))
		return nil, nil, err
	}

	return products, total, nil
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Product, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products p WHERE p.id = $1", id,
	)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to get product", zap.Uint("product_id", id), zap.Error(err))
		return nil, err
	}
	return p, nil
}

// GetMany returns the active products among ids, in the order of ids.
func (r *repository) GetMany(ctx context.Context, ids []uint) ([]*Product, error) {
	if len(ids) == 0 {
		return []*Product{}, nil
	}

	arg := make([]int64, len(ids))
	for i, id := range ids {
		arg[i] = int64(id)
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+productColumns+" FROM products p WHERE p.id = ANY($1) AND p.is_active = TRUE",
		pq.Array(arg),
	)
	if err != nil {
		return nil, err
	}

	found, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]*Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	ordered := make([]*Product, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
			delete(byID, id)
		}
	}
	return ordered, nil
}

func (r *repository) Create(ctx context.Context, p *Product) (*Product, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO products (name, description, category, price, stock, images, sizes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, is_active, created_at, updated_at
	`,
		p.Name,
		p.Description,
		p.Category,
		p.Price,
		p.Stock,
		strings.Join(p.Images, imageSeparator),
		strings.Join(p.Sizes, sizeSeparator),
	).Scan(&p.ID, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to insert product", zap.String("name", p.Name), zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (r *repository) Update(ctx context.Context, id uint, params UpdateParams) (*Product, error) {
	set := []string{}
	args := []any{}

	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.Name != nil {
		add("name", strings.TrimSpace(*params.Name))
	}
	if params.Description != nil {
		add("description", *params.Description)
	}
	if params.Category != nil {
		add("category", strings.TrimSpace(*params.Category))
	}
	if params.Price != nil {
		add("price", *params.Price)
	}
	if params.Images != nil {
		add("images", strings.Join(*params.Images, imageSeparator))
	}
	if params.Sizes != nil {
		add("sizes", strings.Join(*params.Sizes, sizeSeparator))
	}
	if params.Active != nil {
		add("is_active", *params.Active)
	}

	if len(set) == 0 {
		return nil, ErrNoFieldsToUpdate
	}

	args = append(args, id)
	query := "UPDATE products AS p SET " + strings.Join(set, ", ") +
		fmt.Sprintf(", updated_at = NOW() WHERE p.id = $%d RETURNING ", len(args)) + productColumns

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to update product", zap.Uint("product_id", id), zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (r *repository) Deactivate(ctx context.Context, id uint) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE products SET is_active = FALSE, updated_at = NOW() WHERE id = $1", id,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProductNotFound
	}
	return nil
}

// AdjustStock applies delta atomically; stock never drops below zero.
func (r *repository) AdjustStock(ctx context.Context, id uint, delta int) (int, error) {
	var stock int
	err := r.db.QueryRowContext(ctx, `
		UPDATE products
		SET stock = stock + $1, updated_at = NOW()
		WHERE id = $2 AND stock + $1 >= 0
		RETURNING stock
	`, delta, id).Scan(&stock)

	if errors.Is(err, sql.ErrNoRows) {
		var exists bool
		if err := r.db.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)", id,
		).Scan(&exists); err != nil {
			return 0, err
		}
		if !exists {
			return 0, ErrProductNotFound
		}
		return 0, ErrInsufficientStock
	}
	if err != nil {
		return 0, err
	}
	return stock, nil
}

func (r *repository) LowStock(ctx context.Context, threshold, limit int) ([]*Product, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+productColumns+` FROM products p
		WHERE p.is_active = TRUE AND p.stock <= $1
		ORDER BY p.stock ASC, p.id ASC
		LIMIT $2`,
		threshold, limit,
	)
	if err != nil {
		return nil, err
	}
	return scanProducts(rows)
}

func (r *repository) Purchased(ctx context.Context, userID uint) ([]*PurchasedProduct, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+productColumns+`, SUM(oi.quantity), MAX(o.created_at)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN products p ON p.id = oi.product_id
		WHERE o.user_id = $1 AND o.status <> 'CANCELLED'
		GROUP BY p.id
		ORDER BY MAX(o.created_at) DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*PurchasedProduct{}
	for rows.Next() {
		var item PurchasedProduct
		p, err := scanProduct(rows, &item.TotalQuantity, &item.LastPurchasedAt)
		if err != nil {
			return nil, err
		}
		item.Product = p
		items = append(items, &item)
	}
	return items, rows.Err()
}
