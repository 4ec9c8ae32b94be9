package product

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productRowColumns = []string{
	"id", "name", "description", "category", "price", "stock",
	"images", "sizes", "is_active", "created_at", "updated_at",
}

func productRow(rows *sqlmock.Rows, id int64, name string, stock int) *sqlmock.Rows {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return rows.AddRow(id, name, "desc", "Shirts", "49.90", stock,
		"a.jpg|b.jpg", "S,M,L", true, now, now)
}

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewRepository(db), mock, func() { db.Close() }
}

func TestRepository_List(t *testing.T) {
	ctx := context.Background()

	t.Run("Default active only", func(t *testing.T) {
		repo, mock, done := newMockRepo(t)
		defer done()

		rows := productRow(sqlmock.NewRows(productRowColumns), 1, "Linen Shirt", 4)
		mock.ExpectQuery(`(?s)SELECT .* FROM products p WHERE p.is_active = TRUE ORDER BY p.created_at DESC, p.id DESC LIMIT \$1 OFFSET \$2`).
			WithArgs(20, 0).
			WillReturnRows(rows)

		items, total, err := repo.List(ctx, ListOptions{Page: 1, Limit: 20})
		require.NoError(t, err)
		assert.Nil(t, total)
		if assert.Len(t, items, 1) {
			assert.Equal(t, []string{"a.jpg", "b.jpg"}, items[0].Images)
			assert.Equal(t, []string{"S", "M", "L"}, items[0].Sizes)
			assert.True(t, items[0].Price.Equal(decimal.RequireFromString("49.9")))
		}
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("With filters and count", func(t *testing.T) {
		repo, mock, done := newMockRepo(t)
		defer done()

		min := decimal.NewFromInt(10)
		max := decimal.NewFromInt(100)

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM products p WHERE .*ILIKE \$1.*LOWER\(p.category\) = LOWER\(\$2\).*p.price >= \$3.*p.price <= \$4.*p.stock > 0`).
			WithArgs(`%50\%%`, "shirts", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

		mock.ExpectQuery(`(?s)SELECT .* ORDER BY p.price ASC, p.id DESC LIMIT \$5 OFFSET \$6`).
			WithArgs(`%50\%%`, "shirts", sqlmock.AnyArg(), sqlmock.AnyArg(), 5, 5).
			WillReturnRows(sqlmock.NewRows(productRowColumns))

		items, total, err := repo.List(ctx, ListOptions{
			Search:        "50%",
			Category:      "shirts",
			MinPrice:      &min,
			MaxPrice:      &max,
			InStock:       true,
			SortField:     SortFieldPrice,
			SortDirection: SortDirectionAsc,
			Page:          2,
			Limit:         5,
			IncludeCount:  true,
		})
		require.NoError(t, err)
		assert.Empty(t, items)
		require.NotNil(t, total)
		assert.Equal(t, 7, *total)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Query error", func(t *testing.T) {
		repo, mock, done := newMockRepo(t)
		defer done()

		mock.ExpectQuery(`(?s)SELECT .*`).WillReturnError(errors.New("db error"))
		_, _, err := repo.List(ctx, ListOptions{Page: 1, Limit: 20})
		assert.Error(t, err)
	})
}

func TestRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		repo, mock, done := newMockRepo(t)
		defer done()

		mock.ExpectQuery(`SELECT .* FROM products p WHERE p.id = \$1`).
			WithArgs(uint(1)).
			WillReturnRows(productRow(sqlmock.NewRows(productRowColumns), 1, "Linen Shirt", 4))

		p, err := repo.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Linen Shirt", p.Name)
		assert.Equal(t, 4, p.Stock)
	})

	t.Run("Not found", func(t *testing.T) {
		repo, mock, done := newMockRepo(t)
		defer done()

		mock.ExpectQuery(`SELECT .* FROM products p WHERE p.id = \$1`).
			WithArgs(uint(2)).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(ctx, 2)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestRepository_GetMany(t *testing.T) {
	ctx := context.Background()
	repo, mock, done := newMockRepo(t)
	defer done()

	rows := sqlmock.NewRows(productRowColumns)
	productRow(rows, 1, "First", 1)
	productRow(rows, 3, "Third", 1)

	mock.ExpectQuery(`SELECT .* WHERE p.id = ANY\(\$1\) AND p.is_active = TRUE`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(rows)

	items, err := repo.GetMany(ctx, []uint{3, 2, 1})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, uint(3), items[0].ID)
	assert.Equal(t, uint(1), items[1].ID)

	empty, err := repo.GetMany(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRepository_Create(t *testing.T) {
	ctx := context.Background()
	repo, mock, done := newMockRepo(t)
	defer done()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO products`).
		WithArgs("Hoodie", "", "Tops", sqlmock.AnyArg(), 3, "x.png", "M,L").
		WillReturnRows(sqlmock.NewRows([]string{"id", "is_active", "created_at", "updated_at"}).
			AddRow(9, true, now, now))

	p, err := repo.Create(ctx, &Product{
		Name:     "Hoodie",
		Category: "Tops",
		Price:    decimal.RequireFromString("59.99"),
		Stock:    3,
		Images:   []string{"x.png"},
		Sizes:    []string{"M", "L"},
	})
	require.NoError(t, err)
	assert.Equal(t, uint(9), p.ID)
	assert.True(t, p.Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("Partial update", func(t *testing.T) {
		repo, mock, done := newMockRepo(t)
		defer done()

		name := "Oxford"
		active := false
		mock.ExpectQuery(`UPDATE products AS p SET name = \$1, is_active = \$2, updated_at = NOW\(\) WHERE p.id = \$3 RETURNING`).
			WithArgs("Oxford", false, uint(1)).
			WillReturnRows(productRow(sqlmock.NewRows(productRowColumns), 1, "Oxford", 2))

		p, err := repo.Update(ctx, 1, UpdateParams{Name: &name, Active: &active})
		require.NoError(t, err)
		assert.Equal(t, "Oxford", p.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not found", func(t *testing.T) {
		repo, mock, done := newMockRepo(t)
		defer done()

		desc := "x"
		mock.ExpectQuery(`UPDATE products AS p SET description = \$1`).
			WithArgs("x", uint(5)).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.Update(ctx, 5, UpdateParams{Description: &desc})
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("Nothing to update", func(t *testing.T) {
		repo, _, done := newMockRepo(t)
		defer done()

		_, err := repo.Update(ctx, 1, UpdateParams{})
		assert.ErrorIs(t, err, ErrNoFieldsToUpdate)
	})
}

func TestRepository_Deactivate(t *testing.T) {
	ctx := context.Background()
	repo, mock, done := newMockRepo(t)
	defer done()

	mock.ExpectExec(`UPDATE products SET is_active = FALSE`).
		WithArgs(uint(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE products SET is_active = FALSE`).
		WithArgs(uint(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Deactivate(ctx, 1))
	assert.ErrorIs(t, repo.Deactivate(ctx, 2), ErrProductNotFound)
}

func TestRepository_AdjustStock(t *testing.T) {
	ctx := context.Background()

	t.Run("Applied", func(t *testing.T) {
		repo, mock, done := newMockRepo(t)
		defer done()

		mock.ExpectQuery(`UPDATE products\s+SET stock = stock \+ \$1`).
			WithArgs(-2, uint(1)).
			WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(3))

		stock, err := repo.AdjustStock(ctx, 1, -2)
		require.NoError(t, err)
		assert.Equal(t, 3, stock)
	})

	t.Run("Insufficient", func(t *testing.T) {
		repo, mock, done := newMockRepo(t)
		defer done()

		mock.ExpectQuery(`UPDATE products\s+SET stock`).
			WithArgs(-20, uint(1)).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs(uint(1)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		_, err := repo.AdjustStock(ctx, 1, -20)
		assert.ErrorIs(t, err, ErrInsufficientStock)
	})

	t.Run("Missing product", func(t *testing.T) {
		repo, mock, done := newMockRepo(t)
		defer done()

		mock.ExpectQuery(`UPDATE products\s+SET stock`).
			WithArgs(1, uint(8)).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs(uint(8)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		_, err := repo.AdjustStock(ctx, 8, 1)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestRepository_LowStockAndPurchased(t *testing.T) {
	ctx := context.Background()
	repo, mock, done := newMockRepo(t)
	defer done()

	mock.ExpectQuery(`(?s)SELECT .* p.stock <= \$1.*LIMIT \$2`).
		WithArgs(5, 50).
		WillReturnRows(productRow(sqlmock.NewRows(productRowColumns), 1, "Socks", 2))

	low, err := repo.LowStock(ctx, 5, 50)
	require.NoError(t, err)
	assert.Len(t, low, 1)

	bought := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	cols := append(append([]string{}, productRowColumns...), "sum", "max")
	now := time.Now()
	mock.ExpectQuery(`(?s)FROM order_items oi.*o.status <> 'CANCELLED'`).
		WithArgs(uint(7)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			1, "Socks", "", "", "9.99", 2, "", "", true, now, now, 4, bought,
		))

	items, err := repo.Purchased(ctx, 7)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].TotalQuantity)
	assert.Equal(t, bought, items[0].LastPurchasedAt)
	assert.Empty(t, items[0].Product.Sizes)
	assert.NoError(t, mock.ExpectationsWereMet())
}
