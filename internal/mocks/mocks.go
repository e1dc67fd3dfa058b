package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"checkout-service/internal/domain"
	"checkout-service/internal/infra/paypal"
	"checkout-service/internal/pricing"
	"checkout-service/internal/repository"
)

type MockOrderRepository struct {
	mock.Mock
}

type MockPricingRepository struct {
	mock.Mock
}

type MockQuoter struct {
	mock.Mock
}

type MockBlobStore struct {
	mock.Mock
}

type MockNotifier struct {
	mock.Mock
}

type MockTokenCache struct {
	mock.Mock
}

type MockPaymentProvider struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id string, withRelations bool) (*domain.Order, error) {
	args := m.Called(ctx, id, withRelations)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByPaymentReference(ctx context.Context, ref string, matchOrderID bool) (*domain.Order, error) {
	args := m.Called(ctx, ref, matchOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) Query(ctx context.Context, filter repository.OrderFilter, page, limit int) ([]domain.Order, int64, error) {
	args := m.Called(ctx, filter, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) Delete(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) FindExpired(ctx context.Context, deadline time.Time) ([]domain.Order, error) {
	args := m.Called(ctx, deadline)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) DeleteUnpaid(ctx context.Context, order *domain.Order) (bool, error) {
	args := m.Called(ctx, order)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) BindPaymentOrder(ctx context.Context, orderID, paymentOrderID string) (bool, error) {
	args := m.Called(ctx, orderID, paymentOrderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) MarkPaid(ctx context.Context, orderID string, captureID *string, paidAt time.Time) (bool, error) {
	args := m.Called(ctx, orderID, captureID, paidAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockPricingRepository) GetPrice(ctx context.Context) (*domain.Price, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Price), args.Error(1)
}

func (m *MockPricingRepository) SavePrice(ctx context.Context, price *domain.Price) error {
	args := m.Called(ctx, price)
	return args.Error(0)
}

func (m *MockPricingRepository) ListDiscounts(ctx context.Context) ([]domain.DiscountTier, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DiscountTier), args.Error(1)
}

func (m *MockPricingRepository) FindDiscountByID(ctx context.Context, id string) (*domain.DiscountTier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DiscountTier), args.Error(1)
}

func (m *MockPricingRepository) CreateDiscount(ctx context.Context, tier *domain.DiscountTier) error {
	args := m.Called(ctx, tier)
	return args.Error(0)
}

func (m *MockPricingRepository) DeleteDiscount(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockQuoter) Quote(ctx context.Context, quantity int) (pricing.Breakdown, error) {
	args := m.Called(ctx, quantity)
	return args.Get(0).(pricing.Breakdown), args.Error(1)
}

func (m *MockBlobStore) Put(ctx context.Context, data []byte, folder, ext string) (string, error) {
	args := m.Called(ctx, data, folder, ext)
	return args.String(0), args.Error(1)
}

func (m *MockBlobStore) PublicURL(relativePath string) string {
	args := m.Called(relativePath)
	return args.String(0)
}

func (m *MockBlobStore) Delete(ctx context.Context, ref string) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

func (m *MockNotifier) NotifyOrderPaid(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockTokenCache) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockTokenCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockPaymentProvider) RequestToken(ctx context.Context) (*paypal.Token, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paypal.Token), args.Error(1)
}

func (m *MockPaymentProvider) CreateOrder(ctx context.Context, accessToken string, req paypal.CreateOrderRequest) (*paypal.OrderResponse, error) {
	args := m.Called(ctx, accessToken, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paypal.OrderResponse), args.Error(1)
}

func (m *MockPaymentProvider) GetOrder(ctx context.Context, accessToken, paymentOrderID string) (*paypal.OrderResponse, error) {
	args := m.Called(ctx, accessToken, paymentOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paypal.OrderResponse), args.Error(1)
}

func (m *MockPaymentProvider) CaptureOrder(ctx context.Context, accessToken, paymentOrderID string) (*paypal.OrderResponse, error) {
	args := m.Called(ctx, accessToken, paymentOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paypal.OrderResponse), args.Error(1)
}
