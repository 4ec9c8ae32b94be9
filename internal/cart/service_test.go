package cart

import (
	"context"
	"errors"
	"testing"

	"storefront-be/internal/product"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Find(ctx context.Context, userID, productID uint, size string) (*CartItem, error) {
	args := m.Called(ctx, userID, productID, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CartItem), args.Error(1)
}

func (m *MockRepository) Get(ctx context.Context, userID, itemID uint) (*CartItem, error) {
	args := m.Called(ctx, userID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CartItem), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, userID uint) ([]*CartItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*CartItem), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, params AddToCartParams) (*CartItem, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CartItem), args.Error(1)
}

func (m *MockRepository) SetQuantity(ctx context.Context, userID, itemID uint, quantity int) (*CartItem, error) {
	args := m.Called(ctx, userID, itemID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CartItem), args.Error(1)
}

func (m *MockRepository) Remove(ctx context.Context, userID, itemID uint) error {
	return m.Called(ctx, userID, itemID).Error(0)
}

func (m *MockRepository) Clear(ctx context.Context, userID uint) error {
	return m.Called(ctx, userID).Error(0)
}

type stubCatalog map[uint]*product.Product

func (s stubCatalog) Get(_ context.Context, id uint) (*product.Product, error) {
	if p, ok := s[id]; ok {
		return p, nil
	}
	return nil, product.ErrProductNotFound
}

func (s stubCatalog) GetMany(_ context.Context, ids []uint) ([]*product.Product, error) {
	out := []*product.Product{}
	for _, id := range ids {
		if p, ok := s[id]; ok && p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

func catalog() stubCatalog {
	return stubCatalog{
		1: {ID: 1, Name: "Tee", Price: decimal.RequireFromString("10.50"), Stock: 5, Sizes: []string{"S", "M"}, Active: true},
		2: {ID: 2, Name: "Mug", Price: decimal.RequireFromString("7.25"), Stock: 1, Active: true},
		3: {ID: 3, Name: "Old", Price: decimal.RequireFromString("1"), Stock: 9, Active: false},
	}
}

func TestService_AddToCart(t *testing.T) {
	ctx := context.Background()

	t.Run("New line", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, catalog())

		repo.On("Find", ctx, uint(9), uint(1), "M").Return(nil, nil)
		repo.On("Create", ctx, AddToCartParams{UserID: 9, ProductID: 1, Size: "M", Quantity: 2}).
			Return(&CartItem{ID: 1, UserID: 9, ProductID: 1, Size: "M", Quantity: 2}, nil)

		item, err := svc.AddToCart(ctx, AddToCartParams{UserID: 9, ProductID: 1, Size: " m ", Quantity: 2})
		require.NoError(t, err)
		assert.True(t, item.Available)
		assert.Equal(t, "21", item.Subtotal.String())
		repo.AssertExpectations(t)
	})

	t.Run("Merges existing line", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, catalog())

		repo.On("Find", ctx, uint(9), uint(1), "S").Return(&CartItem{ID: 4, Quantity: 3}, nil)
		repo.On("SetQuantity", ctx, uint(9), uint(4), 5).Return(&CartItem{ID: 4, ProductID: 1, Size: "S", Quantity: 5}, nil)

		item, err := svc.AddToCart(ctx, AddToCartParams{UserID: 9, ProductID: 1, Size: "S", Quantity: 2})
		require.NoError(t, err)
		assert.Equal(t, 5, item.Quantity)
	})

	t.Run("Merged quantity over stock", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, catalog())

		repo.On("Find", ctx, uint(9), uint(1), "S").Return(&CartItem{ID: 4, Quantity: 4}, nil)

		_, err := svc.AddToCart(ctx, AddToCartParams{UserID: 9, ProductID: 1, Size: "S", Quantity: 2})
		assert.ErrorIs(t, err, product.ErrInsufficientStock)
		repo.AssertNotCalled(t, "SetQuantity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	tests := []struct {
		name    string
		params  AddToCartParams
		wantErr error
	}{
		{"Zero quantity", AddToCartParams{UserID: 9, ProductID: 1, Size: "S"}, ErrInvalidQuantity},
		{"Unknown size", AddToCartParams{UserID: 9, ProductID: 1, Size: "XL", Quantity: 1}, ErrInvalidSize},
		{"Size on sizeless product", AddToCartParams{UserID: 9, ProductID: 2, Size: "S", Quantity: 1}, ErrInvalidSize},
		{"Inactive product", AddToCartParams{UserID: 9, ProductID: 3, Quantity: 1}, product.ErrProductNotFound},
		{"Missing product", AddToCartParams{UserID: 9, ProductID: 42, Quantity: 1}, product.ErrProductNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(new(MockRepository), catalog())
			_, err := svc.AddToCart(ctx, tt.params)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestService_GetCart(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	svc := NewService(repo, catalog())

	repo.On("List", ctx, uint(9)).Return([]*CartItem{
		{ID: 1, ProductID: 1, Size: "S", Quantity: 2},
		{ID: 2, ProductID: 2, Quantity: 3},
		{ID: 3, ProductID: 3, Quantity: 1},
	}, nil)

	cart, err := svc.GetCart(ctx, 9)
	require.NoError(t, err)
	require.Len(t, cart.Items, 3)

	assert.True(t, cart.Items[0].Available)
	assert.False(t, cart.Items[1].Available, "over stock")
	assert.False(t, cart.Items[2].Available, "inactive")
	assert.Nil(t, cart.Items[2].Product)

	assert.Equal(t, 2, cart.ItemCount)
	assert.True(t, cart.Total.Equal(decimal.RequireFromString("21.00")))
}

func TestService_UpdateQuantity(t *testing.T) {
	ctx := context.Background()

	t.Run("Zero removes", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, catalog())
		repo.On("Remove", ctx, uint(9), uint(1)).Return(nil)

		item, err := svc.UpdateQuantity(ctx, 9, 1, 0)
		assert.NoError(t, err)
		assert.Nil(t, item)
		repo.AssertExpectations(t)
	})

	t.Run("Over stock", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, catalog())
		repo.On("Get", ctx, uint(9), uint(1)).Return(&CartItem{ID: 1, ProductID: 2, Quantity: 1}, nil)

		_, err := svc.UpdateQuantity(ctx, 9, 1, 2)
		assert.ErrorIs(t, err, product.ErrInsufficientStock)
	})

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, catalog())
		repo.On("Get", ctx, uint(9), uint(1)).Return(&CartItem{ID: 1, ProductID: 1, Size: "S", Quantity: 1}, nil)
		repo.On("SetQuantity", ctx, uint(9), uint(1), 4).Return(&CartItem{ID: 1, ProductID: 1, Size: "S", Quantity: 4}, nil)

		item, err := svc.UpdateQuantity(ctx, 9, 1, 4)
		require.NoError(t, err)
		assert.Equal(t, "42", item.Subtotal.String())
	})

	t.Run("Not found", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, catalog())
		repo.On("Get", ctx, uint(9), uint(7)).Return(nil, ErrCartItemNotFound)

		_, err := svc.UpdateQuantity(ctx, 9, 7, 1)
		assert.ErrorIs(t, err, ErrCartItemNotFound)
	})
}

func TestService_RemoveAndClear(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	svc := NewService(repo, catalog())

	repo.On("Remove", ctx, uint(9), uint(5)).Return(ErrCartItemNotFound)
	repo.On("Clear", ctx, uint(9)).Return(errors.New("db error"))

	assert.ErrorIs(t, svc.RemoveFromCart(ctx, 9, 5), ErrCartItemNotFound)
	assert.EqualError(t, svc.ClearCart(ctx, 9), "db error")
}
