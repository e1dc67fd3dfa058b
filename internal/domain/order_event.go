package domain

import "time"

type OrderPaidEvent struct {
	OrderID        string    `json:"orderId"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	TotalQuantity  int       `json:"totalQuantity"`
	Amount         string    `json:"amount"`
	PaymentOrderID string    `json:"paymentOrderId,omitempty"`
	CaptureID      string    `json:"captureId,omitempty"`
	PaidAt         time.Time `json:"paidAt"`
}

func NewOrderPaidEvent(o *Order) OrderPaidEvent {
	evt := OrderPaidEvent{
		OrderID:       o.ID,
		Name:          o.Name,
		Email:         o.Email,
		TotalQuantity: o.TotalQuantity,
		Amount:        o.ChargeAmount().StringFixed(2),
	}
	if o.PaymentOrderID != nil {
		evt.PaymentOrderID = *o.PaymentOrderID
	}
	if o.PaymentCaptureID != nil {
		evt.CaptureID = *o.PaymentCaptureID
	}
	if o.PaidAt != nil {
		evt.PaidAt = *o.PaidAt
	}
	return evt
}
