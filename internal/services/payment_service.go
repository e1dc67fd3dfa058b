package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"checkout-service/internal/domain"
	"checkout-service/internal/infra"
	"checkout-service/internal/infra/paypal"
	"checkout-service/internal/metrics"
	"checkout-service/internal/repository"
	"checkout-service/internal/retry"
)

const (
	AccessTokenKey = "paypal:access_token"

	defaultTokenRefreshTimeout = 30 * time.Second
)

type PaymentConfig struct {
	Currency    string
	ReturnURL   string
	CancelURL   string
	BrandName   string
	TokenMargin time.Duration
	TokenMinTTL time.Duration
}

type PaymentSession struct {
	PaymentOrderID string        `json:"paypalOrderId"`
	Status         string        `json:"status"`
	Links          []paypal.Link `json:"links"`
}

type CaptureResult struct {
	Status         string     `json:"status"`
	OrderID        string     `json:"orderId"`
	PaymentOrderID string     `json:"paypalOrderId"`
	CaptureID      *string    `json:"captureId,omitempty"`
	PaidAt         *time.Time `json:"paidAt,omitempty"`
}

type PaymentService struct {
	repo     repository.OrderRepository
	provider infra.PaymentProvider
	cache    infra.TokenCache
	retry    *retry.Executor
	notify   *paidDispatcher
	cfg      PaymentConfig
	logger   *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	tokens   singleflight.Group

	tokenRefreshTimeout time.Duration
}

func NewPaymentService(r repository.OrderRepository, p infra.PaymentProvider, c infra.TokenCache, exec *retry.Executor, n infra.Notifier, cfg PaymentConfig, logger *zap.Logger, m *metrics.Metrics) *PaymentService {
	return &PaymentService{
		repo:     r,
		provider: p,
		cache:    c,
		retry:    exec,
		notify:   newPaidDispatcher(n, logger),
		cfg:      cfg,
		logger:   logger,
		metrics:  m,
		now:      time.Now,

		tokenRefreshTimeout: defaultTokenRefreshTimeout,
	}
}

func (s *PaymentService) SetClock(now func() time.Time) {
	s.now = now
}

// Drain waits for background notifications started by CapturePayment.
func (s *PaymentService) Drain() {
	s.notify.drain()
}

// GetAccessToken returns the cached provider token, fetching and caching a
// new one on a miss. A cache failure is returned, never bypassed.
//
// Concurrent misses share one refresh. The refresh does not inherit the
// cancellation of the caller that started it; each caller stops waiting when
// its own ctx ends.
func (s *PaymentService) GetAccessToken(ctx context.Context) (string, error) {
	token, ok, err := s.cache.Get(ctx, AccessTokenKey)
	if err != nil {
		return "", err
	}
	if ok {
		return token, nil
	}

	ch := s.tokens.DoChan(AccessTokenKey, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.tokenRefreshTimeout)
		defer cancel()
		return s.refreshToken(fctx)
	})

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: token: %w", domain.ErrUpstreamFailure, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (s *PaymentService) refreshToken(ctx context.Context) (string, error) {
	var tok *paypal.Token
	err := s.retry.Do(ctx, "token", func(ctx context.Context) error {
		var err error
		tok, err = s.provider.RequestToken(ctx)
		return err
	})
	if err != nil {
		return "", providerError(err)
	}

	ttl := s.tokenTTL(tok.ExpiresIn)
	if err := s.cache.Set(ctx, AccessTokenKey, tok.AccessToken, ttl); err != nil {
		return "", err
	}
	s.logger.Debug("cached provider access token", zap.Duration("ttl", ttl))
	return tok.AccessToken, nil
}

func (s *PaymentService) tokenTTL(expiresIn int) time.Duration {
	ttl := time.Duration(expiresIn)*time.Second - s.cfg.TokenMargin
	if ttl < s.cfg.TokenMinTTL {
		return s.cfg.TokenMinTTL
	}
	return ttl
}

// CreateOrder opens a provider payment session for a local order. An order
// that already has a session gets that session back.
func (s *PaymentService) CreateOrder(ctx context.Context, orderID string) (*PaymentSession, error) {
	order, err := s.repo.FindByID(ctx, orderID, false)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("order %s: %w", orderID, domain.ErrNotFound)
	}
	if order.IsPaid() {
		return nil, fmt.Errorf("%w: order %s is already paid", domain.ErrInvalidState, orderID)
	}

	amount := order.ChargeAmount()
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: order %s total is %s", domain.ErrInvalidAmount, orderID, amount.StringFixed(2))
	}

	if order.PaymentOrderID != nil {
		return s.existingSession(ctx, *order.PaymentOrderID)
	}

	token, err := s.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	req := paypal.CreateOrderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []paypal.PurchaseUnitRequest{{
			ReferenceID: order.ID,
			Amount: paypal.Amount{
				CurrencyCode: s.cfg.Currency,
				Value:        amount.StringFixed(2),
			},
		}},
		ApplicationContext: &paypal.ApplicationContext{
			ReturnURL: s.cfg.ReturnURL,
			CancelURL: s.cfg.CancelURL,
			BrandName: s.cfg.BrandName,
		},
	}

	var created *paypal.OrderResponse
	createCtx := paypal.WithRequestID(ctx, order.ID+":create")
	err = s.retry.Do(createCtx, "create_order", func(ctx context.Context) error {
		var err error
		created, err = s.provider.CreateOrder(ctx, token, req)
		return err
	})
	if err != nil {
		return nil, providerError(err)
	}

	bound, err := s.repo.BindPaymentOrder(ctx, order.ID, created.ID)
	if err != nil {
		return nil, fmt.Errorf("bind payment order: %w", err)
	}
	if !bound {
		current, err := s.repo.FindByID(ctx, order.ID, false)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, fmt.Errorf("order %s: %w", orderID, domain.ErrNotFound)
		}
		if current.PaymentOrderID != nil && *current.PaymentOrderID != created.ID {
			s.logger.Warn("payment session already bound, discarding new one",
				zap.String("order_id", order.ID),
				zap.String("bound", *current.PaymentOrderID),
				zap.String("discarded", created.ID))
			return s.existingSession(ctx, *current.PaymentOrderID)
		}
	}

	s.logger.Info("payment order created", zap.String("order_id", order.ID), zap.String("payment_order_id", created.ID))

	links := created.Links
	if links == nil {
		links = []paypal.Link{}
	}
	return &PaymentSession{PaymentOrderID: created.ID, Status: created.Status, Links: links}, nil
}

func (s *PaymentService) existingSession(ctx context.Context, paymentOrderID string) (*PaymentSession, error) {
	token, err := s.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	var existing *paypal.OrderResponse
	err = s.retry.Do(ctx, "get_order", func(ctx context.Context) error {
		var err error
		existing, err = s.provider.GetOrder(ctx, token, paymentOrderID)
		return err
	})
	if err != nil {
		return nil, providerError(err)
	}

	links := existing.Links
	if links == nil {
		links = []paypal.Link{}
	}
	return &PaymentSession{PaymentOrderID: paymentOrderID, Status: existing.Status, Links: links}, nil
}

// CapturePayment settles an order by its payment order id or its own id.
// Capturing an already paid order returns the recorded settlement without
// contacting the provider.
func (s *PaymentService) CapturePayment(ctx context.Context, identifier string) (*CaptureResult, error) {
	_, uuidErr := uuid.Parse(identifier)
	order, err := s.repo.FindByPaymentReference(ctx, identifier, uuidErr == nil)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("order for %s: %w", identifier, domain.ErrNotFound)
	}

	if order.IsPaid() {
		s.metrics.Captures.WithLabelValues("already_paid").Inc()
		return settlement(order), nil
	}
	if order.PaymentOrderID == nil {
		return nil, fmt.Errorf("%w: order %s has no payment session", domain.ErrInvalidState, order.ID)
	}

	token, err := s.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	var captured *paypal.OrderResponse
	captureCtx := paypal.WithRequestID(ctx, order.ID+":capture")
	err = s.retry.Do(captureCtx, "capture", func(ctx context.Context) error {
		var err error
		captured, err = s.provider.CaptureOrder(ctx, token, *order.PaymentOrderID)
		return err
	})
	if paypal.IsAlreadyCaptured(err) {
		// An earlier capture went through but its answer never reached us.
		s.logger.Warn("payment order already captured, settling from provider state",
			zap.String("order_id", order.ID),
			zap.String("payment_order_id", *order.PaymentOrderID))
		err = s.retry.Do(ctx, "get_order", func(ctx context.Context) error {
			var err error
			captured, err = s.provider.GetOrder(ctx, token, *order.PaymentOrderID)
			return err
		})
	}
	if err != nil {
		s.metrics.Captures.WithLabelValues("error").Inc()
		return nil, providerError(err)
	}
	if !captured.Completed() {
		s.metrics.Captures.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%w: capture status %q for order %s", domain.ErrUpstreamRejected, captured.Status, order.ID)
	}

	settled, err := s.repo.MarkPaid(ctx, order.ID, captured.CaptureID(), s.now())
	if err != nil {
		s.logger.Error("payment captured but settlement was not stored",
			zap.String("order_id", order.ID),
			zap.String("payment_order_id", *order.PaymentOrderID),
			zap.Error(err))
		return nil, fmt.Errorf("settle order: %w", err)
	}

	paid, err := s.repo.FindByID(ctx, order.ID, true)
	if err != nil {
		return nil, err
	}
	if paid == nil {
		return nil, fmt.Errorf("order %s: %w", order.ID, domain.ErrNotFound)
	}

	if settled {
		s.metrics.Captures.WithLabelValues("captured").Inc()
		s.logger.Info("payment captured",
			zap.String("order_id", paid.ID),
			zap.String("payment_order_id", *order.PaymentOrderID))
		s.notify.fire(paid)
	}
	return settlement(paid), nil
}

func settlement(o *domain.Order) *CaptureResult {
	res := &CaptureResult{
		Status:    paypal.StatusCompleted,
		OrderID:   o.ID,
		CaptureID: o.PaymentCaptureID,
		PaidAt:    o.PaidAt,
	}
	if o.PaymentOrderID != nil {
		res.PaymentOrderID = *o.PaymentOrderID
	}
	return res
}

func providerError(err error) error {
	if errors.Is(err, domain.ErrUpstreamFailure) {
		return err
	}
	var apiErr *paypal.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamRejected, apiErr)
	}
	return fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
}
