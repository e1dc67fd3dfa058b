package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"checkout-service/internal/domain"
	"checkout-service/internal/repository"
	"checkout-service/internal/services"
)

const uploadFolder = "orders"

// Upload fields are named like "originImage[0]", indexed by item position.
var artifactField = regexp.MustCompile(`^(\w+)\[(\d+)\]$`)

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	var files map[string][]*multipart.FileHeader

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		form, err := c.MultipartForm()
		if err != nil {
			badRequest(c, err)
			return
		}
		payload := form.Value["payload"]
		if len(payload) == 0 {
			badRequest(c, errors.New("payload field is required"))
			return
		}
		if err := json.Unmarshal([]byte(payload[0]), &req); err != nil {
			badRequest(c, err)
			return
		}
		if err := binding.Validator.ValidateStruct(&req); err != nil {
			badRequest(c, err)
			return
		}
		files = form.File
	} else if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	artifacts, stored, err := h.storeArtifacts(ctx, req.Items, files)
	if err != nil {
		h.discard(ctx, stored)
		h.writeError(c, err)
		return
	}

	order, err := h.orders.Create(ctx, req.toInput(), artifacts)
	if err != nil {
		h.discard(ctx, stored)
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (h *Handler) storeArtifacts(ctx context.Context, items []CreateOrderItemRequest, files map[string][]*multipart.FileHeader) ([]services.ItemArtifacts, []string, error) {
	artifacts := make([]services.ItemArtifacts, len(items))
	var stored []string

	for field, headers := range files {
		m := artifactField.FindStringSubmatch(field)
		if m == nil || len(headers) == 0 {
			continue
		}
		idx, err := strconv.Atoi(m[2])
		if err != nil || idx >= len(items) {
			return artifacts, stored, fmt.Errorf("%w: file %s has no matching item", domain.ErrInvalidInput, field)
		}

		var target *string
		switch m[1] {
		case "originImage":
			target = &artifacts[idx].OriginImage
		case "image":
			target = &artifacts[idx].Image
		case "backOriginImage":
			target = &artifacts[idx].BackOriginImage
		case "backImage":
			target = &artifacts[idx].BackImage
		default:
			continue
		}
		if strings.HasPrefix(m[1], "back") && items[idx].BackSideType != domain.BackSideCustom {
			continue
		}

		ref, err := h.saveUpload(ctx, headers[0])
		if err != nil {
			return artifacts, stored, err
		}
		stored = append(stored, ref)
		*target = ref
	}
	return artifacts, stored, nil
}

func (h *Handler) saveUpload(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("%w: open upload %s: %v", domain.ErrInvalidInput, fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("read upload %s: %w", fh.Filename, err)
	}
	rel, err := h.blobs.Put(ctx, data, uploadFolder, filepath.Ext(fh.Filename))
	if err != nil {
		return "", err
	}
	return h.blobs.PublicURL(rel), nil
}

// discard removes files stored for a request that did not produce an order.
func (h *Handler) discard(ctx context.Context, refs []string) {
	for _, ref := range refs {
		if err := h.blobs.Delete(ctx, ref); err != nil {
			h.logger.Warn("could not discard upload", zap.String("path", ref), zap.Error(err))
		}
	}
}

func (h *Handler) ListOrders(c *gin.Context) {
	var q ListOrdersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	filter := repository.OrderFilter{Status: domain.OrderStatus(q.Status), Contact: q.contact()}

	res, err := h.orders.List(c.Request.Context(), filter, q.Page, q.Limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.orders.Find(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) DeleteOrder(c *gin.Context) {
	if err := h.orders.Remove(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "order deleted"})
}
