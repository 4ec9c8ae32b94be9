package rating

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"storefront-be/internal/product"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Upsert(ctx context.Context, userID, productID uint, value int) (*Rating, error) {
	args := m.Called(ctx, userID, productID, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Rating), args.Error(1)
}

func (m *MockRepository) Get(ctx context.Context, userID, productID uint) (*Rating, error) {
	args := m.Called(ctx, userID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Rating), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, userID, productID uint) error {
	return m.Called(ctx, userID, productID).Error(0)
}

func (m *MockRepository) Counts(ctx context.Context, productID uint) (map[int]int, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]int), args.Error(1)
}

type stubProducts map[uint]*product.Product

func (s stubProducts) Get(_ context.Context, id uint) (*product.Product, error) {
	if p, ok := s[id]; ok {
		return p, nil
	}
	return nil, product.ErrProductNotFound
}

func TestService_Rate(t *testing.T) {
	ctx := context.Background()
	products := stubProducts{1: {ID: 1, Active: true}}

	t.Run("Upserts", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, products)

		repo.On("Upsert", ctx, uint(7), uint(1), 4).Return(&Rating{UserID: 7, ProductID: 1, Value: 4}, nil)

		rt, err := svc.Rate(ctx, 7, 1, 4)
		require.NoError(t, err)
		assert.Equal(t, 4, rt.Value)
		repo.AssertExpectations(t)
	})

	for _, v := range []int{0, 6, -1} {
		repo := new(MockRepository)
		svc := NewService(repo, products)

		_, err := svc.Rate(ctx, 7, 1, v)
		assert.ErrorIs(t, err, ErrInvalidRating, "value %d", v)
	}

	t.Run("Unknown product", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, products)

		_, err := svc.Rate(ctx, 7, 99, 3)
		assert.ErrorIs(t, err, product.ErrProductNotFound)
		repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_Summary(t *testing.T) {
	ctx := context.Background()

	t.Run("Average rounded", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, stubProducts{})

		// (5*2 + 4*1) / 3 = 4.666...
		repo.On("Counts", ctx, uint(1)).Return(map[int]int{5: 2, 4: 1}, nil)

		sum, err := svc.Summary(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 3, sum.Count)
		assert.Equal(t, 4.67, sum.Average)
		assert.Equal(t, map[int]int{1: 0, 2: 0, 3: 0, 4: 1, 5: 2}, sum.Distribution)
	})

	t.Run("No ratings", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, stubProducts{})

		repo.On("Counts", ctx, uint(2)).Return(map[int]int{}, nil)

		sum, err := svc.Summary(ctx, 2)
		require.NoError(t, err)
		assert.Zero(t, sum.Count)
		assert.Zero(t, sum.Average)
	})
}

func TestRepository_Upsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO product_ratings .* ON CONFLICT \(user_id, product_id\)\s+DO UPDATE SET rating = EXCLUDED.rating`).
		WithArgs(uint(7), uint(1), 5).
		WillReturnRows(sqlmock.NewRows([]string{"rating", "created_at", "updated_at"}).AddRow(5, now, now))

	rt, err := repo.Upsert(context.Background(), 7, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, rt.Value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetDeleteCounts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT rating, created_at, updated_at\s+FROM product_ratings`).
		WithArgs(uint(7), uint(1)).
		WillReturnError(sql.ErrNoRows)
	_, err = repo.Get(ctx, 7, 1)
	assert.ErrorIs(t, err, ErrRatingNotFound)

	mock.ExpectExec(`DELETE FROM product_ratings`).
		WithArgs(uint(7), uint(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(ctx, 7, 1), ErrRatingNotFound)

	mock.ExpectQuery(`SELECT rating, COUNT\(\*\)`).
		WithArgs(uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{"rating", "count"}).AddRow(5, 3).AddRow(1, 1))
	counts, err := repo.Counts(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{5: 3, 1: 1}, counts)

	assert.NoError(t, mock.ExpectationsWereMet())
}
