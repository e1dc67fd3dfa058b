package http

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"checkout-service/internal/domain"
	"checkout-service/internal/services"
)

// CreateOrderRequest is the JSON document sent as the "payload" field of the
// multipart form (or as the whole body for JSON requests).
type CreateOrderRequest struct {
	Name     string                   `json:"name" binding:"required"`
	Email    string                   `json:"email" binding:"omitempty,email"`
	Phone    string                   `json:"phone"`
	Items    []CreateOrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Delivery DeliveryRequest          `json:"delivery"`
}

type CreateOrderItemRequest struct {
	Quantity        int                 `json:"quantity" binding:"required,min=1"`
	Characteristics map[string]string   `json:"characteristics"`
	BackSideType    domain.BackSideType `json:"backSideType" binding:"omitempty,oneof=TEMPLATE CUSTOM"`
	BackTemplateID  *string             `json:"backTemplateId"`
}

type DeliveryRequest struct {
	Type    domain.DeliveryType `json:"type" binding:"required,oneof=home relay"`
	Address *HomeAddressRequest `json:"address"`
	Relay   *RelayRequest       `json:"relay"`
}

type HomeAddressRequest struct {
	Name       string `json:"name"`
	Street     string `json:"street"`
	Additional string `json:"additional"`
	PostalCode string `json:"postalCode"`
	City       string `json:"city"`
	Phone      string `json:"phone"`
}

type RelayRequest struct {
	Phone string          `json:"phone"`
	Point json.RawMessage `json:"point"`
}

func (r CreateOrderRequest) toInput() services.CreateOrderInput {
	in := services.CreateOrderInput{
		Name:  r.Name,
		Email: r.Email,
		Phone: r.Phone,
		Delivery: services.DeliveryInput{
			Type: r.Delivery.Type,
		},
	}
	for _, it := range r.Items {
		in.Items = append(in.Items, services.CreateOrderItemInput{
			Quantity:        it.Quantity,
			Characteristics: it.Characteristics,
			BackSideType:    it.BackSideType,
			BackTemplateID:  it.BackTemplateID,
		})
	}
	if a := r.Delivery.Address; a != nil {
		in.Delivery.Address = &services.HomeAddressInput{
			Name:       a.Name,
			Street:     a.Street,
			Additional: a.Additional,
			PostalCode: a.PostalCode,
			City:       a.City,
			Phone:      a.Phone,
		}
	}
	if rl := r.Delivery.Relay; rl != nil {
		in.Delivery.Relay = &services.RelayInput{Phone: rl.Phone, Point: rl.Point}
	}
	return in
}

// ListOrdersQuery accepts email and phone as aliases of contact.
type ListOrdersQuery struct {
	Status  string `form:"status"`
	Contact string `form:"contact"`
	Email   string `form:"email"`
	Phone   string `form:"phone"`
	Page    int    `form:"page" binding:"omitempty,min=1"`
	Limit   int    `form:"limit" binding:"omitempty,min=1"`
}

func (q ListOrdersQuery) contact() string {
	for _, v := range []string{q.Contact, q.Email, q.Phone} {
		if v != "" {
			return v
		}
	}
	return ""
}

type UpdateStatusRequest struct {
	Status domain.OrderStatus `json:"status" binding:"required"`
}

type UpdatePriceRequest struct {
	Price *decimal.Decimal `json:"price" binding:"required"`
}

type QuoteQuery struct {
	Quantity int `form:"quantity" binding:"required,min=1"`
}

type CreateDiscountRequest struct {
	Count    int `json:"count" binding:"required,min=1"`
	Discount int `json:"discount" binding:"min=0,max=100"`
}

type CreatePaymentOrderRequest struct {
	OrderID string `json:"orderId" binding:"required,uuid"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
