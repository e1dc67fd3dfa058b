package infra

import (
	"context"
	"time"

	"checkout-service/internal/domain"
	"checkout-service/internal/infra/blob"
	"checkout-service/internal/infra/paypal"
	"checkout-service/internal/infra/rabbitmq"
	"checkout-service/internal/infra/redis"
)

type PaymentProvider interface {
	RequestToken(ctx context.Context) (*paypal.Token, error)
	CreateOrder(ctx context.Context, accessToken string, req paypal.CreateOrderRequest) (*paypal.OrderResponse, error)
	GetOrder(ctx context.Context, accessToken, paymentOrderID string) (*paypal.OrderResponse, error)
	CaptureOrder(ctx context.Context, accessToken, paymentOrderID string) (*paypal.OrderResponse, error)
}

// TokenCache reports a miss as ("", false, nil).
type TokenCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// BlobStore keeps uploaded artwork. Delete of a missing file is not an error.
type BlobStore interface {
	Put(ctx context.Context, data []byte, folder, ext string) (string, error)
	PublicURL(relativePath string) string
	Delete(ctx context.Context, ref string) error
}

type Notifier interface {
	NotifyOrderPaid(ctx context.Context, order *domain.Order) error
}

var (
	_ PaymentProvider = (*paypal.Client)(nil)
	_ TokenCache      = (*redis.TokenCache)(nil)
	_ BlobStore       = (*blob.LocalStore)(nil)
	_ Notifier        = (*rabbitmq.Notifier)(nil)
)
