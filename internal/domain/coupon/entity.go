// internal/domain/coupon/entity.go
package coupon

import (
	"database/sql"
	"time"
)

type DiscountType string

const (
	DiscountTypePercent DiscountType = "percent"
	DiscountTypeFixed   DiscountType = "fixed"
)

type Coupon struct {
	ID       int64 `json:"id" db:"id"`
	SellerID int64 `json:"seller_id" db:"seller_id"`

	// Optional product scoping; a null product id means seller-wide.
	ProductID sql.NullInt64 `json:"product_id,omitempty" db:"product_id"`

	Code         string       `json:"code" db:"code"`
	DiscountType DiscountType `json:"discount_type" db:"discount_type"`

	// Percent coupons store 1..100; fixed coupons store cents.
	Value int64 `json:"value" db:"value"`

	Active      bool          `json:"active" db:"active"`
	MaxUses     sql.NullInt32 `json:"max_uses,omitempty" db:"max_uses"`
	CurrentUses int           `json:"current_uses" db:"current_uses"`
	ExpiresAt   sql.NullTime  `json:"expires_at,omitempty" db:"expires_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Expired reports whether the coupon's expiry has passed at the given time.
func (c *Coupon) Expired(now time.Time) bool {
	return c.ExpiresAt.Valid && now.After(c.ExpiresAt.Time)
}

// Exhausted reports whether the usage cap has been reached.
func (c *Coupon) Exhausted() bool {
	return c.MaxUses.Valid && c.CurrentUses >= int(c.MaxUses.Int32)
}
