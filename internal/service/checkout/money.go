// internal/service/checkout/money.go
package checkout

import (
	"checkout-service/internal/domain/coupon"
	xerrors "checkout-service/internal/pkg/errors"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CouponDiscount computes the discount in cents for a coupon applied to a
// total. Percent values are validated again here even though creation
// enforces the 1..100 range, since coupon rows predating validation exist in
// production data. The discount never exceeds the total.
func CouponDiscount(c *coupon.Coupon, totalCents int64) (int64, error) {
	var discount int64

	switch c.DiscountType {
	case coupon.DiscountTypePercent:
		if c.Value < 1 || c.Value > 100 {
			return 0, xerrors.ErrCouponInvalid
		}
		discount = decimal.NewFromInt(totalCents).
			Mul(decimal.NewFromInt(c.Value)).
			Div(hundred).
			Floor().
			IntPart()
	case coupon.DiscountTypeFixed:
		if c.Value <= 0 {
			return 0, xerrors.ErrCouponInvalid
		}
		discount = c.Value
	default:
		return 0, xerrors.ErrCouponInvalid
	}

	if discount > totalCents {
		discount = totalCents
	}
	return discount, nil
}

// CommissionCents computes the platform's cut of a charged total.
func CommissionCents(totalCents int64, percent float64) int64 {
	if percent <= 0 || totalCents <= 0 {
		return 0
	}
	return decimal.NewFromInt(totalCents).
		Mul(decimal.NewFromFloat(percent)).
		Div(hundred).
		Round(0).
		IntPart()
}
