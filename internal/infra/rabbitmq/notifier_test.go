package rabbitmq

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"checkout-service/internal/domain"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, routingKey string, data any) error {
	return m.Called(ctx, routingKey, data).Error(0)
}

func TestNotifier_NotifyOrderPaid(t *testing.T) {
	paidAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ref := "5O190127TN364715T"
	capture := "3C679366HH908993F"
	order := &domain.Order{
		ID:                     "0b0c3f1e-7c1f-4a53-9a55-2f1a8b1f3c11",
		Name:                   "Ada",
		Email:                  "ada@example.com",
		TotalQuantity:          7,
		TotalPrice:             decimal.RequireFromString("70"),
		TotalPriceWithDiscount: decimal.RequireFromString("63"),
		PaymentOrderID:         &ref,
		PaymentCaptureID:       &capture,
		PaidAt:                 &paidAt,
	}

	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, RoutingOrderPaid, domain.OrderPaidEvent{
		OrderID:        order.ID,
		Name:           "Ada",
		Email:          "ada@example.com",
		TotalQuantity:  7,
		Amount:         "63.00",
		PaymentOrderID: ref,
		CaptureID:      capture,
		PaidAt:         paidAt,
	}).Return(nil)

	err := NewNotifier(pub).NotifyOrderPaid(context.Background(), order)

	assert.NoError(t, err)
	pub.AssertExpectations(t)
}

func TestNotifier_PublishError(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, RoutingOrderPaid, mock.Anything).Return(errors.New("channel closed"))

	err := NewNotifier(pub).NotifyOrderPaid(context.Background(), &domain.Order{ID: "x"})

	assert.EqualError(t, err, "channel closed")
}
