// Package pricing computes order price breakdowns from a unit price and a
// discount tier table.
package pricing

import (
	"github.com/shopspring/decimal"

	"checkout-service/internal/domain"
)

var hundred = decimal.NewFromInt(100)

type Breakdown struct {
	Quantity               int             `json:"quantity"`
	BasePrice              decimal.Decimal `json:"basePrice"`
	TotalPrice             decimal.Decimal `json:"totalPrice"`
	DiscountPercent        int             `json:"discountPercent"`
	Discount               decimal.Decimal `json:"discount"`
	TotalPriceWithDiscount decimal.Decimal `json:"totalPriceWithDiscount"`
}

// Compute returns the price breakdown for quantity units. Quantity must be
// at least 1; callers reject anything else.
func Compute(quantity int, unitPrice decimal.Decimal, tiers []domain.DiscountTier) Breakdown {
	base := unitPrice.Round(2)
	total := base.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
	pct := DiscountPercent(quantity, tiers)

	withDiscount := total.Mul(decimal.NewFromInt(int64(100 - pct))).Div(hundred).Round(2)

	return Breakdown{
		Quantity:               quantity,
		BasePrice:              base,
		TotalPrice:             total,
		DiscountPercent:        pct,
		Discount:               total.Sub(withDiscount),
		TotalPriceWithDiscount: withDiscount,
	}
}

// DiscountPercent picks the tier with the greatest MinQuantity not above
// quantity. Percentages outside 0..100 are clamped.
func DiscountPercent(quantity int, tiers []domain.DiscountTier) int {
	best := -1
	pct := 0
	for _, t := range tiers {
		if t.MinQuantity <= quantity && t.MinQuantity > best {
			best = t.MinQuantity
			pct = t.DiscountPercent
		}
	}
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}
