package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"checkout-service/internal/domain"
	"checkout-service/internal/mocks"
	"checkout-service/internal/repository"
)

func TestPricingService_GetPrice(t *testing.T) {
	repo := new(mocks.MockPricingRepository)
	repo.On("GetPrice", mock.Anything).Return(nil, nil).Once()

	svc := NewPricingService(repo)
	p, err := svc.GetPrice(context.Background())

	require.NoError(t, err)
	assert.True(t, p.Price.IsZero())
}

func TestPricingService_UpdatePrice(t *testing.T) {
	tests := []struct {
		name          string
		price         string
		setupMocks    func(*mocks.MockPricingRepository)
		expectedPrice string
		expectedError error
	}{
		{
			name:  "first price creates the row",
			price: "12.499",
			setupMocks: func(r *mocks.MockPricingRepository) {
				r.On("GetPrice", mock.Anything).Return(nil, nil)
				r.On("SavePrice", mock.Anything, mock.MatchedBy(func(p *domain.Price) bool {
					return p.ID == 0 && p.Price.Equal(decimal.RequireFromString("12.5"))
				})).Return(nil)
			},
			expectedPrice: "12.50",
		},
		{
			name:  "existing row is updated",
			price: "9",
			setupMocks: func(r *mocks.MockPricingRepository) {
				r.On("GetPrice", mock.Anything).Return(&domain.Price{ID: 1, Price: decimal.NewFromInt(10)}, nil)
				r.On("SavePrice", mock.Anything, mock.MatchedBy(func(p *domain.Price) bool { return p.ID == 1 })).Return(nil)
			},
			expectedPrice: "9.00",
		},
		{
			name:          "negative price",
			price:         "-1",
			setupMocks:    func(*mocks.MockPricingRepository) {},
			expectedError: domain.ErrInvalidInput,
		},
		{
			name:  "save fails",
			price: "5",
			setupMocks: func(r *mocks.MockPricingRepository) {
				r.On("GetPrice", mock.Anything).Return(nil, nil)
				r.On("SavePrice", mock.Anything, mock.Anything).Return(errors.New("read-only replica"))
			},
			expectedError: errors.New("read-only replica"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockPricingRepository)
			tt.setupMocks(repo)

			svc := NewPricingService(repo)
			p, err := svc.UpdatePrice(context.Background(), decimal.RequireFromString(tt.price))

			if tt.expectedError != nil {
				assert.Error(t, err)
				if errors.Is(tt.expectedError, domain.ErrInvalidInput) {
					assert.ErrorIs(t, err, domain.ErrInvalidInput)
				} else {
					assert.EqualError(t, err, tt.expectedError.Error())
				}
				assert.Nil(t, p)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedPrice, p.Price.StringFixed(2))
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestPricingService_Quote(t *testing.T) {
	repo := new(mocks.MockPricingRepository)
	repo.On("GetPrice", mock.Anything).Return(&domain.Price{ID: 1, Price: decimal.NewFromInt(10)}, nil)
	repo.On("ListDiscounts", mock.Anything).Return([]domain.DiscountTier{
		{ID: "a", MinQuantity: 5, DiscountPercent: 10},
		{ID: "b", MinQuantity: 10, DiscountPercent: 20},
	}, nil)

	svc := NewPricingService(repo)

	q, err := svc.Quote(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, 12, q.Quantity)
	assert.Equal(t, 20, q.DiscountPercent)
	assert.Equal(t, "120.00", q.TotalPrice.StringFixed(2))
	assert.Equal(t, "24.00", q.Discount.StringFixed(2))
	assert.Equal(t, "96.00", q.TotalPriceWithDiscount.StringFixed(2))

	_, err = svc.Quote(context.Background(), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPricingService_Quote_DiscountError(t *testing.T) {
	repo := new(mocks.MockPricingRepository)
	repo.On("GetPrice", mock.Anything).Return(&domain.Price{ID: 1, Price: decimal.NewFromInt(10)}, nil)
	repo.On("ListDiscounts", mock.Anything).Return(nil, errors.New("table missing"))

	_, err := NewPricingService(repo).Quote(context.Background(), 1)
	assert.EqualError(t, err, "table missing")
}

func TestPricingService_CreateDiscount(t *testing.T) {
	tests := []struct {
		name          string
		minQuantity   int
		percent       int
		setupMocks    func(*mocks.MockPricingRepository)
		expectedError error
	}{
		{
			name:        "new tier",
			minQuantity: 20,
			percent:     25,
			setupMocks: func(r *mocks.MockPricingRepository) {
				r.On("ListDiscounts", mock.Anything).Return([]domain.DiscountTier{{ID: "a", MinQuantity: 5, DiscountPercent: 10}}, nil)
				r.On("CreateDiscount", mock.Anything, mock.MatchedBy(func(d *domain.DiscountTier) bool {
					return d.ID != "" && d.MinQuantity == 20 && d.DiscountPercent == 25
				})).Return(nil)
			},
		},
		{
			name:        "duplicate threshold",
			minQuantity: 5,
			percent:     15,
			setupMocks: func(r *mocks.MockPricingRepository) {
				r.On("ListDiscounts", mock.Anything).Return([]domain.DiscountTier{{ID: "a", MinQuantity: 5, DiscountPercent: 10}}, nil)
			},
			expectedError: domain.ErrInvalidInput,
		},
		{
			name:        "threshold taken concurrently",
			minQuantity: 20,
			percent:     25,
			setupMocks: func(r *mocks.MockPricingRepository) {
				r.On("ListDiscounts", mock.Anything).Return([]domain.DiscountTier{}, nil)
				r.On("CreateDiscount", mock.Anything, mock.Anything).Return(fmt.Errorf("discount for quantity 20: %w", repository.ErrDuplicate))
			},
			expectedError: domain.ErrInvalidInput,
		},
		{
			name:          "zero quantity",
			minQuantity:   0,
			percent:       10,
			setupMocks:    func(*mocks.MockPricingRepository) {},
			expectedError: domain.ErrInvalidInput,
		},
		{
			name:          "percent above 100",
			minQuantity:   3,
			percent:       101,
			setupMocks:    func(*mocks.MockPricingRepository) {},
			expectedError: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockPricingRepository)
			tt.setupMocks(repo)

			tier, err := NewPricingService(repo).CreateDiscount(context.Background(), tt.minQuantity, tt.percent)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, tier)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.minQuantity, tier.MinQuantity)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestPricingService_Discounts_NotFound(t *testing.T) {
	repo := new(mocks.MockPricingRepository)
	repo.On("FindDiscountByID", mock.Anything, "missing").Return(nil, nil)
	repo.On("DeleteDiscount", mock.Anything, "missing").Return(false, nil)
	repo.On("DeleteDiscount", mock.Anything, "a").Return(true, nil)

	svc := NewPricingService(repo)

	_, err := svc.GetDiscount(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteDiscount(context.Background(), "missing"), domain.ErrNotFound)
	assert.NoError(t, svc.DeleteDiscount(context.Background(), "a"))
}
