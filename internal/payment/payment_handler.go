package payment

import (
	"encoding/json"
	"net/http"
	"time"

	"go-garage/internal/shared/apperror"
	"go-garage/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type Handler struct {
	allocator Allocator
	rdb       *redis.Client
}

func NewHandler(allocator Allocator) *Handler {
	return &Handler{allocator: allocator}
}

func NewHandlerWithRedis(allocator Allocator, rdb *redis.Client) *Handler {
	return &Handler{allocator: allocator, rdb: rdb}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) releaseIdempotencyLock(c *gin.Context) {
	if h.rdb == nil {
		return
	}
	if lockKey, ok := c.Get("idempotency_lock_key"); ok {
		if lk, ok := lockKey.(string); ok && lk != "" {
			h.rdb.Del(c.Request.Context(), lk)
		}
	}
}

func (h *Handler) cacheIdempotentResult(c *gin.Context, result any) {
	if h.rdb == nil {
		return
	}
	if cacheKey, ok := c.Get("idempotency_cache_key"); ok {
		if ck, ok := cacheKey.(string); ok && ck != "" {
			if payload, err := json.Marshal(result); err == nil {
				_ = h.rdb.Set(c.Request.Context(), ck, payload, 24*time.Hour).Err()
			}
		}
	}
}

// RecordForService handles POST /services/:id/payments.
func (h *Handler) RecordForService(c *gin.Context) {
	defer h.releaseIdempotencyLock(c)

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.allocator.AllocateToService(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	h.cacheIdempotentResult(c, resp)
	response.Success(c, http.StatusCreated, resp, nil)
}

// RecordForVehicle handles POST /vehicles/:vehicleId/payments.
func (h *Handler) RecordForVehicle(c *gin.Context) {
	defer h.releaseIdempotencyLock(c)

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.allocator.AllocateToVehicle(c.Request.Context(), c.Param("vehicleId"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	h.cacheIdempotentResult(c, resp)
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) GetByService(c *gin.Context) {
	resp, err := h.allocator.GetByService(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.allocator.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.allocator.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true}, nil)
}
