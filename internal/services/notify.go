package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"checkout-service/internal/domain"
	"checkout-service/internal/infra"
)

const defaultNotifyTimeout = 10 * time.Second

// paidDispatcher sends order-paid notifications in the background. Failures
// are logged and never reach the caller.
type paidDispatcher struct {
	notifier infra.Notifier
	logger   *zap.Logger
	timeout  time.Duration
	wg       sync.WaitGroup
}

func newPaidDispatcher(n infra.Notifier, logger *zap.Logger) *paidDispatcher {
	return &paidDispatcher{notifier: n, logger: logger, timeout: defaultNotifyTimeout}
}

func (d *paidDispatcher) fire(order *domain.Order) {
	if d.notifier == nil {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.notifier.NotifyOrderPaid(ctx, order); err != nil {
			d.logger.Warn("order paid notification failed", zap.String("order_id", order.ID), zap.Error(err))
			return
		}
		d.logger.Debug("order paid notification sent", zap.String("order_id", order.ID))
	}()
}

func (d *paidDispatcher) drain() {
	d.wg.Wait()
}
