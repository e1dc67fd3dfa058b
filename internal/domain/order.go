package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type OrderStatus string

const (
	StatusCreated OrderStatus = "CREATED"
	StatusPaid    OrderStatus = "PAID"
)

func (s OrderStatus) Valid() bool {
	return s == StatusCreated || s == StatusPaid
}

type BackSideType string

const (
	BackSideTemplate BackSideType = "TEMPLATE"
	BackSideCustom   BackSideType = "CUSTOM"
)

type Order struct {
	ID                     string          `json:"id" gorm:"primaryKey;size:36"`
	Name                   string          `json:"name" gorm:"size:255;not null"`
	Email                  string          `json:"email" gorm:"size:255;index"`
	Phone                  string          `json:"phone" gorm:"size:32;index"`
	Status                 OrderStatus     `json:"status" gorm:"size:16;not null;index;default:'CREATED'"`
	PricePerUnit           decimal.Decimal `json:"pricePerUnit" gorm:"type:decimal(10,2);not null"`
	TotalPrice             decimal.Decimal `json:"totalPrice" gorm:"type:decimal(10,2);not null"`
	DiscountPercent        int             `json:"discountPercent" gorm:"not null;default:0"`
	Discount               decimal.Decimal `json:"discount" gorm:"type:decimal(10,2);not null;default:0"`
	TotalPriceWithDiscount decimal.Decimal `json:"totalPriceWithDiscount" gorm:"type:decimal(10,2);not null"`
	TotalQuantity          int             `json:"totalQuantity" gorm:"not null"`
	PaymentOrderID         *string         `json:"paymentOrderId" gorm:"size:64;uniqueIndex"`
	PaymentCaptureID       *string         `json:"paymentCaptureId" gorm:"size:64"`
	PaidAt                 *time.Time      `json:"paidAt"`
	Items                  []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Delivery               *Delivery       `json:"delivery" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt              time.Time       `json:"createdAt" gorm:"autoCreateTime;index"`
	UpdatedAt              time.Time       `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (o *Order) IsPaid() bool {
	return o.Status == StatusPaid
}

// ChargeAmount is the amount sent to the payment provider: the discounted
// total, or the undiscounted total when the discounted value is not positive.
func (o *Order) ChargeAmount() decimal.Decimal {
	if o.TotalPriceWithDiscount.IsPositive() {
		return o.TotalPriceWithDiscount
	}
	return o.TotalPrice
}

type OrderItem struct {
	ID                  string                                `json:"id" gorm:"primaryKey;size:36"`
	OrderID             string                                `json:"orderId" gorm:"size:36;not null;index"`
	Quantity            int                                   `json:"quantity" gorm:"not null"`
	Characteristics     datatypes.JSONType[map[string]string] `json:"characteristics"`
	OriginImagePath     *string                               `json:"originImagePath" gorm:"size:512"`
	ImagePath           *string                               `json:"imagePath" gorm:"size:512"`
	BackSideType        BackSideType                          `json:"backSideType" gorm:"size:16;not null;default:'TEMPLATE'"`
	BackTemplateID      *string                               `json:"backTemplateId" gorm:"size:36"`
	BackOriginImagePath *string                               `json:"backOriginImagePath" gorm:"size:512"`
	BackImagePath       *string                               `json:"backImagePath" gorm:"size:512"`
}

// ArtifactPaths returns every stored file reference of the item.
func (i *OrderItem) ArtifactPaths() []string {
	var out []string
	for _, p := range []*string{i.OriginImagePath, i.ImagePath, i.BackOriginImagePath, i.BackImagePath} {
		if p != nil && *p != "" {
			out = append(out, *p)
		}
	}
	return out
}

type DeliveryType string

const (
	DeliveryHome  DeliveryType = "home"
	DeliveryRelay DeliveryType = "relay"
)

type Delivery struct {
	ID         string       `json:"id" gorm:"primaryKey;size:36"`
	OrderID    string       `json:"orderId" gorm:"size:36;not null;uniqueIndex"`
	Type       DeliveryType `json:"type" gorm:"size:8;not null"`
	Name       *string      `json:"name,omitempty" gorm:"size:255"`
	Street     *string      `json:"street,omitempty" gorm:"size:255"`
	Additional *string      `json:"additional,omitempty" gorm:"size:255"`
	PostalCode *string      `json:"postalCode,omitempty" gorm:"size:16"`
	City       *string      `json:"city,omitempty" gorm:"size:128"`
	Phone      *string      `json:"phone,omitempty" gorm:"size:32"`
	RelayPhone *string      `json:"relayPhone,omitempty" gorm:"size:32"`
	RelayPoint *RelayPoint  `json:"relayPoint,omitempty" gorm:"type:json"`
}

type Price struct {
	ID        uint            `json:"id" gorm:"primaryKey;autoIncrement"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	CreatedAt time.Time       `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time       `json:"updatedAt" gorm:"autoUpdateTime"`
}

type DiscountTier struct {
	ID              string `json:"id" gorm:"primaryKey;size:36"`
	MinQuantity     int    `json:"minQuantity" gorm:"not null;uniqueIndex"`
	DiscountPercent int    `json:"discountPercent" gorm:"not null"`
}

func (DiscountTier) TableName() string {
	return "discount_tiers"
}
