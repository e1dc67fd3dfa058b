package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"checkout-service/internal/domain"
	"checkout-service/internal/repository"
)

// MemoryOrderRepository is an in-memory repository.OrderRepository with the
// same conditional-update semantics as the MySQL one.
type MemoryOrderRepository struct {
	mu     sync.Mutex
	orders map[string]domain.Order
}

var _ repository.OrderRepository = (*MemoryOrderRepository)(nil)

func NewMemoryOrderRepository(orders ...domain.Order) *MemoryOrderRepository {
	r := &MemoryOrderRepository{orders: map[string]domain.Order{}}
	for _, o := range orders {
		r.orders[o.ID] = clone(o)
	}
	return r
}

func clone(o domain.Order) domain.Order {
	o.Items = append([]domain.OrderItem(nil), o.Items...)
	if o.Delivery != nil {
		d := *o.Delivery
		o.Delivery = &d
	}
	return o
}

func (r *MemoryOrderRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}

func (r *MemoryOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	if order.Delivery != nil {
		order.Delivery.OrderID = order.ID
	}
	r.orders[order.ID] = clone(*order)
	return nil
}

func (r *MemoryOrderRepository) FindByID(ctx context.Context, id string, withRelations bool) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	o = clone(o)
	if !withRelations {
		o.Items = nil
		o.Delivery = nil
	}
	return &o, nil
}

func (r *MemoryOrderRepository) FindByPaymentReference(ctx context.Context, ref string, matchOrderID bool) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if (o.PaymentOrderID != nil && *o.PaymentOrderID == ref) || (matchOrderID && o.ID == ref) {
			o = clone(o)
			return &o, nil
		}
	}
	return nil, nil
}

func (r *MemoryOrderRepository) Query(ctx context.Context, filter repository.OrderFilter, page, limit int) ([]domain.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []domain.Order
	for _, o := range r.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.Contact != "" && !strings.Contains(o.Email, filter.Contact) && !strings.Contains(o.Phone, filter.Contact) {
			continue
		}
		matched = append(matched, clone(o))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	start := (page - 1) * limit
	if start >= len(matched) {
		return []domain.Order{}, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *MemoryOrderRepository) Delete(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.orders, order.ID)
	return nil
}

func (r *MemoryOrderRepository) FindExpired(ctx context.Context, deadline time.Time) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Order
	for _, o := range r.orders {
		if o.Status != domain.StatusPaid && o.PaidAt == nil && o.CreatedAt.Before(deadline) {
			out = append(out, clone(o))
		}
	}
	return out, nil
}

func (r *MemoryOrderRepository) DeleteUnpaid(ctx context.Context, order *domain.Order) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[order.ID]
	if !ok || o.Status == domain.StatusPaid {
		return false, nil
	}
	delete(r.orders, order.ID)
	return true, nil
}

func (r *MemoryOrderRepository) BindPaymentOrder(ctx context.Context, orderID, paymentOrderID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok || o.PaymentOrderID != nil {
		return false, nil
	}
	o.PaymentOrderID = &paymentOrderID
	r.orders[orderID] = o
	return true, nil
}

func (r *MemoryOrderRepository) MarkPaid(ctx context.Context, orderID string, captureID *string, paidAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok || o.Status != domain.StatusCreated {
		return false, nil
	}
	o.Status = domain.StatusPaid
	o.PaidAt = &paidAt
	o.PaymentCaptureID = captureID
	r.orders[orderID] = o
	return true, nil
}
