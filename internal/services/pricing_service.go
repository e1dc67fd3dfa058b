package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"checkout-service/internal/domain"
	"checkout-service/internal/pricing"
	"checkout-service/internal/repository"
)

type PricingService struct {
	repo repository.PricingRepository
}

func NewPricingService(r repository.PricingRepository) *PricingService {
	return &PricingService{repo: r}
}

// GetPrice returns the current unit price; an empty table means a price of zero.
func (s *PricingService) GetPrice(ctx context.Context) (*domain.Price, error) {
	p, err := s.repo.GetPrice(ctx)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return &domain.Price{Price: decimal.Zero}, nil
	}
	return p, nil
}

func (s *PricingService) UpdatePrice(ctx context.Context, price decimal.Decimal) (*domain.Price, error) {
	if price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", domain.ErrInvalidInput)
	}

	p, err := s.repo.GetPrice(ctx)
	if err != nil {
		return nil, err
	}
	if p == nil {
		p = &domain.Price{}
	}
	p.Price = price.Round(2)

	if err := s.repo.SavePrice(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Quote prices quantity units with the unit price and tiers as they are now.
func (s *PricingService) Quote(ctx context.Context, quantity int) (pricing.Breakdown, error) {
	if quantity < 1 {
		return pricing.Breakdown{}, fmt.Errorf("%w: quantity must be at least 1", domain.ErrInvalidInput)
	}

	price, err := s.GetPrice(ctx)
	if err != nil {
		return pricing.Breakdown{}, err
	}
	tiers, err := s.repo.ListDiscounts(ctx)
	if err != nil {
		return pricing.Breakdown{}, err
	}
	return pricing.Compute(quantity, price.Price, tiers), nil
}

func (s *PricingService) ListDiscounts(ctx context.Context) ([]domain.DiscountTier, error) {
	return s.repo.ListDiscounts(ctx)
}

func (s *PricingService) GetDiscount(ctx context.Context, id string) (*domain.DiscountTier, error) {
	t, err := s.repo.FindDiscountByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("discount %s: %w", id, domain.ErrNotFound)
	}
	return t, nil
}

func (s *PricingService) CreateDiscount(ctx context.Context, minQuantity, percent int) (*domain.DiscountTier, error) {
	if minQuantity < 1 {
		return nil, fmt.Errorf("%w: minimum quantity must be at least 1", domain.ErrInvalidInput)
	}
	if percent < 0 || percent > 100 {
		return nil, fmt.Errorf("%w: discount percent must be between 0 and 100", domain.ErrInvalidInput)
	}

	existing, err := s.repo.ListDiscounts(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range existing {
		if t.MinQuantity == minQuantity {
			return nil, fmt.Errorf("%w: a tier for quantity %d already exists", domain.ErrInvalidInput, minQuantity)
		}
	}

	tier := &domain.DiscountTier{
		ID:              uuid.NewString(),
		MinQuantity:     minQuantity,
		DiscountPercent: percent,
	}
	if err := s.repo.CreateDiscount(ctx, tier); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: a tier for quantity %d already exists", domain.ErrInvalidInput, minQuantity)
		}
		return nil, err
	}
	return tier, nil
}

func (s *PricingService) DeleteDiscount(ctx context.Context, id string) error {
	ok, err := s.repo.DeleteDiscount(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("discount %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
