package rabbitmq

import (
	"context"

	"checkout-service/internal/domain"
)

const RoutingOrderPaid = "order.paid"

// Notifier announces settled orders; the mailer sends the confirmation.
type Notifier struct {
	publisher PublisherInterface
}

func NewNotifier(p PublisherInterface) *Notifier {
	return &Notifier{publisher: p}
}

func (n *Notifier) NotifyOrderPaid(ctx context.Context, order *domain.Order) error {
	return n.publisher.Publish(ctx, RoutingOrderPaid, domain.NewOrderPaidEvent(order))
}
