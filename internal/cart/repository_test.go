package cart

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cartRowColumns = []string{"id", "user_id", "product_id", "size", "quantity", "created_at", "updated_at"}

func TestRepository_Find(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT .* FROM carts WHERE user_id = \$1 AND product_id = \$2 AND size = \$3`).
		WithArgs(uint(9), uint(1), "M").
		WillReturnError(sql.ErrNoRows)

	item, err := repo.Find(ctx, 9, 1, "M")
	assert.NoError(t, err)
	assert.Nil(t, item)

	now := time.Now()
	mock.ExpectQuery(`SELECT .* FROM carts WHERE user_id = \$1`).
		WithArgs(uint(9), uint(1), "S").
		WillReturnRows(sqlmock.NewRows(cartRowColumns).AddRow(3, 9, 1, "S", 2, now, now))

	item, err = repo.Find(ctx, 9, 1, "S")
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)
}

func TestRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO carts .* ON CONFLICT \(user_id, product_id, size\)`).
		WithArgs(uint(9), uint(1), "M", 2).
		WillReturnRows(sqlmock.NewRows(cartRowColumns).AddRow(1, 9, 1, "M", 2, now, now))

	item, err := repo.Create(context.Background(), AddToCartParams{UserID: 9, ProductID: 1, Size: "M", Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, uint(1), item.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SetQuantityRemoveClear(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`UPDATE carts\s+SET quantity = \$1`).
		WithArgs(3, uint(1), uint(9)).
		WillReturnError(sql.ErrNoRows)
	_, err = repo.SetQuantity(ctx, 9, 1, 3)
	assert.ErrorIs(t, err, ErrCartItemNotFound)

	mock.ExpectExec(`DELETE FROM carts WHERE id = \$1 AND user_id = \$2`).
		WithArgs(uint(1), uint(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Remove(ctx, 9, 1), ErrCartItemNotFound)

	mock.ExpectExec(`DELETE FROM carts WHERE user_id = \$1`).
		WithArgs(uint(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.NoError(t, repo.Clear(ctx, 9))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	now := time.Now()
	mock.ExpectQuery(`SELECT .* FROM carts WHERE user_id = \$1 ORDER BY created_at ASC`).
		WithArgs(uint(9)).
		WillReturnRows(sqlmock.NewRows(cartRowColumns).
			AddRow(1, 9, 1, "M", 2, now, now).
			AddRow(2, 9, 2, "", 1, now, now))

	items, err := repo.List(context.Background(), 9)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, "", items[1].Size)
}
