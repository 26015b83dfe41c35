// internal/domain/coupon/dto.go
package coupon

import "time"

type CreateCouponRequest struct {
	Code         string       `json:"code" binding:"required"`
	DiscountType DiscountType `json:"discount_type" binding:"required"`
	Value        int64        `json:"value" binding:"required"`
	ProductID    *int64       `json:"product_id"`
	MaxUses      *int32       `json:"max_uses"`
	ExpiresAt    *time.Time   `json:"expires_at"`
}

type UpdateCouponRequest struct {
	Active    *bool      `json:"active"`
	Value     *int64     `json:"value"`
	MaxUses   *int32     `json:"max_uses"`
	ExpiresAt *time.Time `json:"expires_at"`
}

type ListResponse struct {
	Coupons []Coupon `json:"coupons"`
	Total   int64    `json:"total"`
}
