package rest

import (
	"context"

	"storefront-be/internal/order"
	"storefront-be/internal/product"
	"storefront-be/internal/user"

	"github.com/stretchr/testify/mock"
)

type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) Register(ctx context.Context, email, password, name string) (string, *user.User, error) {
	args := m.Called(ctx, email, password, name)
	u, _ := args.Get(1).(*user.User)
	return args.String(0), u, args.Error(2)
}

func (m *MockUsers) Login(ctx context.Context, email, password string) (string, *user.User, error) {
	args := m.Called(ctx, email, password)
	u, _ := args.Get(1).(*user.User)
	return args.String(0), u, args.Error(2)
}

func (m *MockUsers) GetByID(ctx context.Context, id uint) (*user.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

func (m *MockUsers) CheckActive(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUsers) List(ctx context.Context, filter user.ListFilter) (*user.ListResult, error) {
	args := m.Called(ctx, filter)
	res, _ := args.Get(0).(*user.ListResult)
	return res, args.Error(1)
}

func (m *MockUsers) SetStatus(ctx context.Context, id uint, blocked, suspended bool) (*user.User, error) {
	args := m.Called(ctx, id, blocked, suspended)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

type MockProducts struct {
	mock.Mock
}

func (m *MockProducts) List(ctx context.Context, opts product.ListOptions) (*product.ListResult, error) {
	args := m.Called(ctx, opts)
	res, _ := args.Get(0).(*product.ListResult)
	return res, args.Error(1)
}

func (m *MockProducts) Get(ctx context.Context, id uint) (*product.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*product.Product)
	return p, args.Error(1)
}

func (m *MockProducts) GetMany(ctx context.Context, ids []uint) ([]*product.Product, error) {
	args := m.Called(ctx, ids)
	ps, _ := args.Get(0).([]*product.Product)
	return ps, args.Error(1)
}

func (m *MockProducts) Create(ctx context.Context, params product.CreateParams) (*product.Product, error) {
	args := m.Called(ctx, params)
	p, _ := args.Get(0).(*product.Product)
	return p, args.Error(1)
}

func (m *MockProducts) Update(ctx context.Context, id uint, params product.UpdateParams) (*product.Product, error) {
	args := m.Called(ctx, id, params)
	p, _ := args.Get(0).(*product.Product)
	return p, args.Error(1)
}

func (m *MockProducts) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProducts) AdjustStock(ctx context.Context, id uint, delta int) (*product.Product, error) {
	args := m.Called(ctx, id, delta)
	p, _ := args.Get(0).(*product.Product)
	return p, args.Error(1)
}

func (m *MockProducts) LowStock(ctx context.Context, threshold, limit int) ([]*product.Product, error) {
	args := m.Called(ctx, threshold, limit)
	ps, _ := args.Get(0).([]*product.Product)
	return ps, args.Error(1)
}

func (m *MockProducts) Purchased(ctx context.Context, userID uint) ([]*product.PurchasedProduct, error) {
	args := m.Called(ctx, userID)
	ps, _ := args.Get(0).([]*product.PurchasedProduct)
	return ps, args.Error(1)
}

func (m *MockProducts) StockChanged(ctx context.Context, ids []uint) {
	m.Called(ctx, ids)
}

type MockOrders struct {
	mock.Mock
}

func (m *MockOrders) Place(ctx context.Context, params order.PlaceOrderParams) (*order.Order, error) {
	args := m.Called(ctx, params)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrders) CheckoutCart(ctx context.Context, userID uint, shipping order.Shipping) (*order.Order, error) {
	args := m.Called(ctx, userID, shipping)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrders) List(ctx context.Context, filter order.ListFilter) (*order.ListResult, error) {
	args := m.Called(ctx, filter)
	res, _ := args.Get(0).(*order.ListResult)
	return res, args.Error(1)
}

func (m *MockOrders) Get(ctx context.Context, id uint) (*order.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrders) UpdateStatus(ctx context.Context, id uint, to order.OrderStatus) (*order.Order, error) {
	args := m.Called(ctx, id, to)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrders) Cancel(ctx context.Context, userID, id uint) (*order.Order, error) {
	args := m.Called(ctx, userID, id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}
