package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"checkout-service/internal/domain"
	"checkout-service/internal/infra"
	"checkout-service/internal/metrics"
	"checkout-service/internal/pricing"
	"checkout-service/internal/repository"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

type Quoter interface {
	Quote(ctx context.Context, quantity int) (pricing.Breakdown, error)
}

type CreateOrderInput struct {
	Name     string
	Email    string
	Phone    string
	Items    []CreateOrderItemInput
	Delivery DeliveryInput
}

type CreateOrderItemInput struct {
	Quantity        int
	Characteristics map[string]string
	BackSideType    domain.BackSideType
	BackTemplateID  *string
}

// ItemArtifacts holds the stored file references of one item, by position.
type ItemArtifacts struct {
	OriginImage     string
	Image           string
	BackOriginImage string
	BackImage       string
}

type DeliveryInput struct {
	Type    domain.DeliveryType
	Address *HomeAddressInput
	Relay   *RelayInput
}

type HomeAddressInput struct {
	Name       string
	Street     string
	Additional string
	PostalCode string
	City       string
	Phone      string
}

type RelayInput struct {
	Phone string
	// Point is either a JSON object or a JSON string holding one.
	Point json.RawMessage
}

type ListResult struct {
	Data  []domain.Order `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

type OrderService struct {
	repo    repository.OrderRepository
	quoter  Quoter
	blobs   infra.BlobStore
	notify  *paidDispatcher
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewOrderService(r repository.OrderRepository, q Quoter, b infra.BlobStore, n infra.Notifier, logger *zap.Logger, m *metrics.Metrics) *OrderService {
	return &OrderService{
		repo:    r,
		quoter:  q,
		blobs:   b,
		notify:  newPaidDispatcher(n, logger),
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

func (s *OrderService) SetClock(now func() time.Time) {
	s.now = now
}

// Drain waits for background notifications started by UpdateStatus.
func (s *OrderService) Drain() {
	s.notify.drain()
}

func (s *OrderService) Create(ctx context.Context, in CreateOrderInput, artifacts []ItemArtifacts) (*domain.Order, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", domain.ErrInvalidInput)
	}

	totalQuantity := 0
	for i, it := range in.Items {
		if it.Quantity < 1 {
			return nil, fmt.Errorf("%w: item %d quantity must be at least 1", domain.ErrInvalidInput, i)
		}
		totalQuantity += it.Quantity
	}

	delivery, err := buildDelivery(in.Delivery)
	if err != nil {
		return nil, err
	}

	items := make([]domain.OrderItem, 0, len(in.Items))
	for i, it := range in.Items {
		var files ItemArtifacts
		if i < len(artifacts) {
			files = artifacts[i]
		}
		item, err := buildItem(it, files)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		items = append(items, item)
	}

	quote, err := s.quoter.Quote(ctx, totalQuantity)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		ID:                     uuid.NewString(),
		Name:                   strings.TrimSpace(in.Name),
		Email:                  strings.TrimSpace(in.Email),
		Phone:                  strings.TrimSpace(in.Phone),
		Status:                 domain.StatusCreated,
		PricePerUnit:           quote.BasePrice,
		TotalPrice:             quote.TotalPrice,
		DiscountPercent:        quote.DiscountPercent,
		Discount:               quote.Discount,
		TotalPriceWithDiscount: quote.TotalPriceWithDiscount,
		TotalQuantity:          totalQuantity,
		Items:                  items,
		Delivery:               delivery,
		CreatedAt:              s.now(),
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}

	s.metrics.OrdersCreated.Inc()
	s.logger.Info("order created",
		zap.String("order_id", order.ID),
		zap.Int("total_quantity", totalQuantity),
		zap.String("total", order.TotalPriceWithDiscount.StringFixed(2)))

	return s.Find(ctx, order.ID)
}

func buildItem(in CreateOrderItemInput, files ItemArtifacts) (domain.OrderItem, error) {
	back := in.BackSideType
	if back == "" {
		back = domain.BackSideTemplate
	}
	if back != domain.BackSideTemplate && back != domain.BackSideCustom {
		return domain.OrderItem{}, fmt.Errorf("%w: unknown back side type %q", domain.ErrInvalidInput, back)
	}

	chars := in.Characteristics
	if chars == nil {
		chars = map[string]string{}
	}

	item := domain.OrderItem{
		ID:              uuid.NewString(),
		Quantity:        in.Quantity,
		Characteristics: datatypes.NewJSONType(chars),
		OriginImagePath: optional(files.OriginImage),
		ImagePath:       optional(files.Image),
		BackSideType:    back,
	}
	if back == domain.BackSideTemplate {
		item.BackTemplateID = in.BackTemplateID
	} else {
		item.BackOriginImagePath = optional(files.BackOriginImage)
		item.BackImagePath = optional(files.BackImage)
	}
	return item, nil
}

func buildDelivery(in DeliveryInput) (*domain.Delivery, error) {
	d := &domain.Delivery{ID: uuid.NewString(), Type: in.Type}

	switch in.Type {
	case domain.DeliveryHome:
		a := in.Address
		if a == nil || a.Street == "" || a.PostalCode == "" || a.City == "" || a.Phone == "" {
			return nil, fmt.Errorf("%w: home delivery needs street, postal code, city and phone", domain.ErrInvalidInput)
		}
		d.Name = optional(a.Name)
		d.Street = optional(a.Street)
		d.Additional = optional(a.Additional)
		d.PostalCode = optional(a.PostalCode)
		d.City = optional(a.City)
		d.Phone = optional(a.Phone)
	case domain.DeliveryRelay:
		r := in.Relay
		if r == nil || r.Phone == "" {
			return nil, fmt.Errorf("%w: relay delivery needs a phone", domain.ErrInvalidInput)
		}
		point, err := domain.ParseRelayPoint(r.Point)
		if err != nil {
			return nil, err
		}
		d.RelayPhone = optional(r.Phone)
		d.RelayPoint = point
	default:
		return nil, fmt.Errorf("%w: unknown delivery type %q", domain.ErrInvalidInput, in.Type)
	}
	return d, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func (s *OrderService) Find(ctx context.Context, id string) (*domain.Order, error) {
	o, err := s.repo.FindByID(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
	}
	return o, nil
}

func (s *OrderService) List(ctx context.Context, filter repository.OrderFilter, page, limit int) (*ListResult, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, filter.Status)
	}
	if page < 1 {
		page = defaultPage
	}
	switch {
	case limit < 1:
		limit = defaultLimit
	case limit > maxLimit:
		limit = maxLimit
	}

	data, total, err := s.repo.Query(ctx, filter, page, limit)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []domain.Order{}
	}
	return &ListResult{Data: data, Total: total, Page: page, Limit: limit}, nil
}

// UpdateStatus applies a manual status change. PAID is terminal; setting the
// current status again is a no-op.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, status)
	}

	order, err := s.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == status {
		return order, nil
	}
	if order.IsPaid() {
		return nil, fmt.Errorf("%w: order %s is already paid", domain.ErrInvalidState, id)
	}

	settled, err := s.repo.MarkPaid(ctx, id, nil, s.now())
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	updated, err := s.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if settled {
		s.logger.Info("order marked paid", zap.String("order_id", id))
		s.notify.fire(updated)
	}
	return updated, nil
}

func (s *OrderService) Remove(ctx context.Context, id string) error {
	order, err := s.Find(ctx, id)
	if err != nil {
		return err
	}

	s.removeFiles(ctx, order)
	if err := s.repo.Delete(ctx, order); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	s.metrics.OrdersRemoved.WithLabelValues("manual").Inc()
	s.logger.Info("order removed", zap.String("order_id", id))
	return nil
}

// RemoveExpired deletes unpaid orders created before deadline together with
// their files and returns how many were removed.
func (s *OrderService) RemoveExpired(ctx context.Context, deadline time.Time) (int, error) {
	stale, err := s.repo.FindExpired(ctx, deadline)
	if err != nil {
		return 0, fmt.Errorf("find expired orders: %w", err)
	}

	removed := 0
	for i := range stale {
		order := &stale[i]
		if order.IsPaid() || order.PaidAt != nil {
			continue
		}

		s.removeFiles(ctx, order)
		ok, err := s.repo.DeleteUnpaid(ctx, order)
		if err != nil {
			s.logger.Warn("failed to delete expired order", zap.String("order_id", order.ID), zap.Error(err))
			continue
		}
		if ok {
			removed++
		}
	}

	if removed > 0 {
		s.metrics.OrdersRemoved.WithLabelValues("expired").Add(float64(removed))
	}
	return removed, nil
}

func (s *OrderService) removeFiles(ctx context.Context, order *domain.Order) {
	for _, item := range order.Items {
		for _, ref := range item.ArtifactPaths() {
			if err := s.blobs.Delete(ctx, ref); err != nil {
				s.logger.Warn("could not remove order file",
					zap.String("order_id", order.ID),
					zap.String("path", ref),
					zap.Error(err))
			}
		}
	}
}
