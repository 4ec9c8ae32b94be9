package category

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"storefront-be/internal/cache"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context, search string, limit, offset int) ([]*Category, int, error) {
	args := m.Called(ctx, search, limit, offset)
	items, _ := args.Get(0).([]*Category)
	return items, args.Int(1), args.Error(2)
}

func TestRepository_List(t *testing.T) {
	ctx := context.Background()

	t.Run("All categories", func(t *testing.T) {
		db, sqlMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		sqlMock.ExpectQuery(`SELECT COUNT\(DISTINCT LOWER\(p.category\)\) FROM products p WHERE p.is_active = TRUE`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		sqlMock.ExpectQuery(`(?s)GROUP BY LOWER\(p.category\).*LIMIT \$1 OFFSET \$2`).
			WithArgs(50, 0).
			WillReturnRows(sqlmock.NewRows([]string{"min", "count", "count"}).
				AddRow("Pants", 4, 3).
				AddRow("Shirts", 7, 0))

		items, total, err := NewRepository(db).List(ctx, "", 50, 0)
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, items, 2)
		assert.Equal(t, &Category{Name: "Shirts", ProductCount: 7, InStockCount: 0}, items[1])
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})

	t.Run("Search escapes wildcards", func(t *testing.T) {
		db, sqlMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		sqlMock.ExpectQuery(`SELECT COUNT.*p.category ILIKE \$1`).
			WithArgs(`%t\_shirt%`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		sqlMock.ExpectQuery(`(?s)ILIKE \$1.*LIMIT \$2 OFFSET \$3`).
			WithArgs(`%t\_shirt%`, 10, 10).
			WillReturnRows(sqlmock.NewRows([]string{"min", "count", "count"}))

		items, total, err := NewRepository(db).List(ctx, "t_shirt", 10, 10)
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, items)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})

	t.Run("Count error", func(t *testing.T) {
		db, sqlMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		sqlMock.ExpectQuery(`SELECT COUNT`).WillReturnError(errors.New("db down"))

		_, _, err = NewRepository(db).List(ctx, "", 10, 0)
		assert.Error(t, err)
	})
}

func TestService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("Defaults and caching", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, cache.NewMemory(time.Minute))

		repo.On("List", ctx, "Shirts", 50, 0).
			Return([]*Category{{Name: "Shirts", ProductCount: 2}}, 1, nil).Once()

		first, err := svc.List(ctx, "  Shirts ", 0, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, first.Total)
		assert.Equal(t, 1, first.Page)
		assert.Equal(t, 50, first.Limit)

		// served from cache; the repository expectation is Once
		second, err := svc.List(ctx, "shirts", 1, 50)
		require.NoError(t, err)
		assert.Equal(t, first.Items[0].Name, second.Items[0].Name)
		repo.AssertExpectations(t)
	})

	t.Run("Search is passed trimmed", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, nil)

		repo.On("List", ctx, "Tops", 100, 100).Return([]*Category{}, 0, nil)

		res, err := svc.List(ctx, " Tops ", 2, 500)
		require.NoError(t, err)
		assert.Empty(t, res.Items)
		assert.Equal(t, 100, res.Limit)
	})

	t.Run("Search too long", func(t *testing.T) {
		svc := NewService(new(MockRepository), nil)
		_, err := svc.List(ctx, strings.Repeat("x", maxSearchLength+1), 1, 10)
		assert.ErrorIs(t, err, ErrInvalidQuery)
	})

	t.Run("Repository error", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, nil)
		repo.On("List", ctx, "", 50, 0).Return(nil, 0, errors.New("boom"))

		_, err := svc.List(ctx, "", 1, 0)
		assert.EqualError(t, err, "boom")
	})
}
