package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Overview(ctx context.Context, threshold int) (*Overview, error) {
	args := m.Called(ctx, threshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Overview), args.Error(1)
}

func (m *MockRepository) Sales(ctx context.Context, since time.Time) ([]DailySales, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]DailySales), args.Error(1)
}

func (m *MockRepository) TopProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]TopProduct), args.Error(1)
}

func TestService_Sales(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("Fills missing days", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, 5).(*service)
		svc.now = func() time.Time { return now }

		since := today.AddDate(0, 0, -2)
		repo.On("Sales", ctx, since).Return([]DailySales{
			{Day: today, Revenue: decimal.NewFromInt(50), Orders: 2},
		}, nil)

		sales, err := svc.Sales(ctx, 3)
		require.NoError(t, err)
		require.Len(t, sales, 3)
		assert.Equal(t, since, sales[0].Day)
		assert.True(t, sales[0].Revenue.IsZero())
		assert.Equal(t, 2, sales[2].Orders)
		assert.True(t, sales[2].Revenue.Equal(decimal.NewFromInt(50)))
	})

	t.Run("Default thirty days", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, 5).(*service)
		svc.now = func() time.Time { return now }

		repo.On("Sales", ctx, today.AddDate(0, 0, -29)).Return([]DailySales{}, nil)

		sales, err := svc.Sales(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, sales, 30)
	})

	t.Run("Out of range", func(t *testing.T) {
		svc := NewService(new(MockRepository), 5)
		_, err := svc.Sales(ctx, 366)
		assert.ErrorIs(t, err, ErrInvalidRange)
		_, err = svc.Sales(ctx, -1)
		assert.ErrorIs(t, err, ErrInvalidRange)
	})
}

func TestService_OverviewAndTop(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	svc := NewService(repo, 7)

	repo.On("Overview", ctx, 7).Return(&Overview{Orders: 3}, nil)
	repo.On("TopProducts", ctx, 50).Return([]TopProduct{{ProductID: 1}}, nil)

	o, err := svc.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, o.Orders)

	top, err := svc.TopProducts(ctx, 1000)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}

func TestRepository_Overview(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	mock.ExpectQuery(`SELECT\s+\(SELECT COALESCE\(SUM\(total\), 0\) FROM orders`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"revenue", "orders", "customers", "products", "low"}).
			AddRow("123.45", 4, 10, 20, 2))
	mock.ExpectQuery(`SELECT status, COUNT\(\*\) FROM orders GROUP BY status`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("PLACED", 3).AddRow("CANCELLED", 1))

	o, err := repo.Overview(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, o.Revenue.Equal(decimal.RequireFromString("123.45")))
	assert.Equal(t, 10, o.Customers)
	assert.Equal(t, map[string]int{"PLACED": 3, "CANCELLED": 1}, o.OrdersByStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SalesAndTop(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)
	ctx := context.Background()
	day := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	// buckets by the UTC calendar day regardless of the session time zone
	mock.ExpectQuery(`DATE_TRUNC\('day', created_at AT TIME ZONE 'UTC'\) AT TIME ZONE 'UTC' AS day`).
		WithArgs(day).
		WillReturnRows(sqlmock.NewRows([]string{"day", "revenue", "orders"}).AddRow(day, "10.00", 1))
	sales, err := repo.Sales(ctx, day)
	require.NoError(t, err)
	assert.Len(t, sales, 1)

	mock.ExpectQuery(`FROM order_items oi .* LIMIT \$1`).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "name", "qty", "revenue"}).
			AddRow(1, "Tee", 9, "90.00"))
	top, err := repo.TopProducts(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 9, top[0].Quantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}
