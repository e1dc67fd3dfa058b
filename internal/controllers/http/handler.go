package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"checkout-service/internal/domain"
	"checkout-service/internal/infra"
	"checkout-service/internal/metrics"
	"checkout-service/internal/services"
)

type Handler struct {
	orders   *services.OrderService
	payments *services.PaymentService
	pricing  *services.PricingService
	blobs    infra.BlobStore
	logger   *zap.Logger
}

func NewHandler(o *services.OrderService, p *services.PaymentService, pr *services.PricingService, b infra.BlobStore, logger *zap.Logger) *Handler {
	return &Handler{orders: o, payments: p, pricing: pr, blobs: b, logger: logger}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	orders := r.Group("/orders")
	orders.POST("", h.CreateOrder)
	orders.GET("", h.ListOrders)
	orders.GET("/:id", h.GetOrder)
	orders.PATCH("/:id/status", h.UpdateOrderStatus)
	orders.DELETE("/:id", h.DeleteOrder)

	price := r.Group("/price")
	price.GET("", h.GetPrice)
	price.PUT("", h.UpdatePrice)
	price.GET("/calculate", h.CalculatePrice)

	discount := r.Group("/discount")
	discount.GET("", h.ListDiscounts)
	discount.POST("", h.CreateDiscount)
	discount.GET("/:id", h.GetDiscount)
	discount.DELETE("/:id", h.DeleteDiscount)

	payments := r.Group("/payments")
	payments.POST("/create-order", h.CreatePaymentOrder)
	payments.POST("/capture/:orderId", h.CapturePayment)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUpstreamRejected), errors.Is(err, domain.ErrUpstreamFailure):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrCacheUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.Int("status", status),
			zap.Error(err))
	}
	if status == http.StatusInternalServerError {
		c.JSON(status, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(status, ErrorResponse{Error: err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
}
