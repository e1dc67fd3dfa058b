package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"checkout-service/internal/domain"
	"checkout-service/internal/repository"
)

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := order.Items
		delivery := order.Delivery

		if err := tx.Omit("Items", "Delivery").Create(order).Error; err != nil {
			return err
		}
		if delivery != nil {
			delivery.OrderID = order.ID
			if err := tx.Create(delivery).Error; err != nil {
				return err
			}
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *orderRepo) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Items").Preload("Delivery")
}

func (r *orderRepo) FindByID(ctx context.Context, id string, withRelations bool) (*domain.Order, error) {
	q := r.db.WithContext(ctx)
	if withRelations {
		q = r.withRelations(ctx)
	}

	var o domain.Order
	if err := q.Where("id = ?", id).First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindByPaymentReference(ctx context.Context, ref string, matchOrderID bool) (*domain.Order, error) {
	q := r.db.WithContext(ctx).Where("payment_order_id = ?", ref)
	if matchOrderID {
		q = q.Or("id = ?", ref)
	}

	var o domain.Order
	if err := q.First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) Query(ctx context.Context, filter repository.OrderFilter, page, limit int) ([]domain.Order, int64, error) {
	filtered := func(q *gorm.DB) *gorm.DB {
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.Contact != "" {
			like := "%" + filter.Contact + "%"
			q = q.Where("email LIKE ? OR phone LIKE ?", like, like)
		}
		return q
	}

	var total int64
	if err := filtered(r.db.WithContext(ctx).Model(&domain.Order{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []domain.Order
	err := filtered(r.withRelations(ctx)).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *orderRepo) Delete(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteAggregate(tx, order.ID)
	})
}

func (r *orderRepo) DeleteUnpaid(ctx context.Context, order *domain.Order) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND status <> ?", order.ID, domain.StatusPaid).Delete(&domain.Order{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		deleted = true
		return deleteChildren(tx, order.ID)
	})
	return deleted, err
}

func deleteAggregate(tx *gorm.DB, id string) error {
	if err := deleteChildren(tx, id); err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&domain.Order{}).Error
}

func deleteChildren(tx *gorm.DB, orderID string) error {
	if err := tx.Where("order_id = ?", orderID).Delete(&domain.OrderItem{}).Error; err != nil {
		return err
	}
	return tx.Where("order_id = ?", orderID).Delete(&domain.Delivery{}).Error
}

func (r *orderRepo) FindExpired(ctx context.Context, deadline time.Time) ([]domain.Order, error) {
	var out []domain.Order
	err := r.withRelations(ctx).
		Where("status <> ? AND paid_at IS NULL AND created_at < ?", domain.StatusPaid, deadline).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *orderRepo) BindPaymentOrder(ctx context.Context, orderID, paymentOrderID string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ? AND payment_order_id IS NULL", orderID).
		Update("payment_order_id", paymentOrderID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *orderRepo) MarkPaid(ctx context.Context, orderID string, captureID *string, paidAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ? AND status = ?", orderID, domain.StatusCreated).
		Updates(map[string]any{
			"status":             domain.StatusPaid,
			"paid_at":            paidAt,
			"payment_capture_id": captureID,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
