package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreatePaymentOrder(c *gin.Context) {
	var req CreatePaymentOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	session, err := h.payments.CreateOrder(c.Request.Context(), req.OrderID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *Handler) CapturePayment(c *gin.Context) {
	res, err := h.payments.CapturePayment(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
