package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetPrice(c *gin.Context) {
	p, err := h.pricing.GetPrice(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdatePrice(c *gin.Context) {
	var req UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	p, err := h.pricing.UpdatePrice(c.Request.Context(), *req.Price)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) CalculatePrice(c *gin.Context) {
	var q QuoteQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	quote, err := h.pricing.Quote(c.Request.Context(), q.Quantity)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

func (h *Handler) ListDiscounts(c *gin.Context) {
	tiers, err := h.pricing.ListDiscounts(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tiers)
}

func (h *Handler) GetDiscount(c *gin.Context) {
	tier, err := h.pricing.GetDiscount(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tier)
}

func (h *Handler) CreateDiscount(c *gin.Context) {
	var req CreateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	tier, err := h.pricing.CreateDiscount(c.Request.Context(), req.Count, req.Discount)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tier)
}

func (h *Handler) DeleteDiscount(c *gin.Context) {
	if err := h.pricing.DeleteDiscount(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "discount deleted"})
}
