package repository

import (
	"context"
	"errors"
	"time"

	"checkout-service/internal/domain"
)

// ErrDuplicate is returned when a write hits a unique index.
var ErrDuplicate = errors.New("duplicate key")

type OrderFilter struct {
	Status  domain.OrderStatus
	Contact string
}

// Finders return nil, nil when nothing matches.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id string, withRelations bool) (*domain.Order, error)
	FindByPaymentReference(ctx context.Context, ref string, matchOrderID bool) (*domain.Order, error)
	Query(ctx context.Context, filter OrderFilter, page, limit int) ([]domain.Order, int64, error)
	Delete(ctx context.Context, order *domain.Order) error
	FindExpired(ctx context.Context, deadline time.Time) ([]domain.Order, error)
	// DeleteUnpaid removes the order only while it is not PAID.
	DeleteUnpaid(ctx context.Context, order *domain.Order) (bool, error)
	// BindPaymentOrder sets the payment order id only if none is bound yet.
	BindPaymentOrder(ctx context.Context, orderID, paymentOrderID string) (bool, error)
	// MarkPaid moves a CREATED order to PAID; false means it was not CREATED.
	MarkPaid(ctx context.Context, orderID string, captureID *string, paidAt time.Time) (bool, error)
}

type PricingRepository interface {
	GetPrice(ctx context.Context) (*domain.Price, error)
	SavePrice(ctx context.Context, price *domain.Price) error
	ListDiscounts(ctx context.Context) ([]domain.DiscountTier, error)
	FindDiscountByID(ctx context.Context, id string) (*domain.DiscountTier, error)
	// CreateDiscount returns ErrDuplicate when the threshold is taken.
	CreateDiscount(ctx context.Context, tier *domain.DiscountTier) error
	DeleteDiscount(ctx context.Context, id string) (bool, error)
}
