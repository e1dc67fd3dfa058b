package mysql

import (
	"context"
	"errors"
	"fmt"

	mysqldrv "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"checkout-service/internal/domain"
	"checkout-service/internal/repository"
)

type pricingRepo struct {
	db *gorm.DB
}

func NewPricingRepository(db *gorm.DB) repository.PricingRepository {
	return &pricingRepo{db: db}
}

func (r *pricingRepo) GetPrice(ctx context.Context) (*domain.Price, error) {
	var p domain.Price
	if err := r.db.WithContext(ctx).Order("id ASC").First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *pricingRepo) SavePrice(ctx context.Context, price *domain.Price) error {
	return r.db.WithContext(ctx).Save(price).Error
}

func (r *pricingRepo) ListDiscounts(ctx context.Context) ([]domain.DiscountTier, error) {
	var out []domain.DiscountTier
	if err := r.db.WithContext(ctx).Order("min_quantity ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *pricingRepo) FindDiscountByID(ctx context.Context, id string) (*domain.DiscountTier, error) {
	var t domain.DiscountTier
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

const errDupEntry = 1062

func (r *pricingRepo) CreateDiscount(ctx context.Context, tier *domain.DiscountTier) error {
	err := r.db.WithContext(ctx).Create(tier).Error
	if isDuplicate(err) {
		return fmt.Errorf("discount for quantity %d: %w", tier.MinQuantity, repository.ErrDuplicate)
	}
	return err
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysqldrv.MySQLError
	return errors.As(err, &myErr) && myErr.Number == errDupEntry
}

func (r *pricingRepo) DeleteDiscount(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.DiscountTier{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
