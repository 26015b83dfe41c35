// internal/handlers/coupon/coupon_handler.go
package coupon

import (
	"net/http"
	"strconv"

	"checkout-service/internal/domain/coupon"
	"checkout-service/internal/middleware"
	"checkout-service/internal/pkg/response"
	service "checkout-service/internal/service/coupon"

	"github.com/gin-gonic/gin"
)

type CouponHandler struct {
	couponService *service.Service
}

func NewCouponHandler(couponService *service.Service) *CouponHandler {
	return &CouponHandler{
		couponService: couponService,
	}
}

func (h *CouponHandler) CreateCoupon(c *gin.Context) {
	sellerID, ok := middleware.GetAdminID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req coupon.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.couponService.Create(c.Request.Context(), sellerID, &req)
	if err != nil {
		response.FromError(c, "failed to create coupon", err)
		return
	}

	response.Success(c, http.StatusCreated, "coupon created", result)
}

func (h *CouponHandler) UpdateCoupon(c *gin.Context) {
	sellerID, ok := middleware.GetAdminID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid coupon ID", err)
		return
	}

	var req coupon.UpdateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.couponService.Update(c.Request.Context(), sellerID, id, &req)
	if err != nil {
		response.FromError(c, "failed to update coupon", err)
		return
	}

	response.Success(c, http.StatusOK, "coupon updated", result)
}

func (h *CouponHandler) ListCoupons(c *gin.Context) {
	sellerID, ok := middleware.GetAdminID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	result, err := h.couponService.List(c.Request.Context(), sellerID)
	if err != nil {
		response.FromError(c, "failed to list coupons", err)
		return
	}

	response.Success(c, http.StatusOK, "coupons retrieved", result)
}

func (h *CouponHandler) DeleteCoupon(c *gin.Context) {
	sellerID, ok := middleware.GetAdminID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid coupon ID", err)
		return
	}

	if err := h.couponService.Delete(c.Request.Context(), sellerID, id); err != nil {
		response.FromError(c, "failed to delete coupon", err)
		return
	}

	response.Success(c, http.StatusOK, "coupon deleted", nil)
}
