package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"checkout-service/internal/domain"
)

func CreateMockOrder(status domain.OrderStatus, total, totalWithDiscount string, createdAt time.Time) domain.Order {
	id := uuid.NewString()
	t := decimal.RequireFromString(total)
	return domain.Order{
		ID:                     id,
		Name:                   TestCustomerName,
		Email:                  TestCustomerEmail,
		Phone:                  TestCustomerPhone,
		Status:                 status,
		PricePerUnit:           t,
		TotalPrice:             t,
		TotalPriceWithDiscount: decimal.RequireFromString(totalWithDiscount),
		TotalQuantity:          1,
		Items: []domain.OrderItem{
			CreateMockItem(id, "/uploads/orders/"+id+"-front.png", "/uploads/orders/"+id+"-front-processed.png"),
		},
		Delivery:  &domain.Delivery{ID: uuid.NewString(), OrderID: id, Type: domain.DeliveryHome},
		CreatedAt: createdAt,
	}
}

func CreateMockItem(orderID, origin, processed string) domain.OrderItem {
	return domain.OrderItem{
		ID:              uuid.NewString(),
		OrderID:         orderID,
		Quantity:        1,
		Characteristics: datatypes.NewJSONType(map[string]string{"size": "M"}),
		OriginImagePath: &origin,
		ImagePath:       &processed,
		BackSideType:    domain.BackSideTemplate,
	}
}

func MarkMockPaid(o *domain.Order, paymentOrderID, captureID string, paidAt time.Time) {
	o.Status = domain.StatusPaid
	o.PaymentOrderID = &paymentOrderID
	o.PaymentCaptureID = &captureID
	o.PaidAt = &paidAt
}

const (
	TestCustomerName   = "Test Customer"
	TestCustomerEmail  = "customer@example.com"
	TestCustomerPhone  = "+33600000000"
	TestAccessToken    = "A21AAtest-token"
	TestPaymentOrderID = "5O190127TN364715T"
	TestCaptureID      = "3C679366HH908993F"
)
