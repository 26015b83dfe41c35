// internal/domain/sale/entity.go
package sale

import (
	"database/sql"
	"time"
)

type PaymentMethod string

const (
	PaymentMethodPix PaymentMethod = "pix"
)

type SaleStatus string

const (
	SaleStatusWaitingPayment SaleStatus = "waiting_payment"
	SaleStatusPaid           SaleStatus = "paid"
	SaleStatusCancelled      SaleStatus = "cancelled"
	SaleStatusExpired        SaleStatus = "expired"
	SaleStatusFailed         SaleStatus = "failed"
)

// statusRank orders statuses so a sale can only move forward. Every terminal
// status shares the same rank: once terminal, no further transition.
var statusRank = map[SaleStatus]int{
	SaleStatusWaitingPayment: 0,
	SaleStatusPaid:           1,
	SaleStatusCancelled:      1,
	SaleStatusExpired:        1,
	SaleStatusFailed:         1,
}

// CanAdvanceTo reports whether a transition from s to next moves forward.
func (s SaleStatus) CanAdvanceTo(next SaleStatus) bool {
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to > from
}

// IsTerminal reports whether no further status change is allowed.
func (s SaleStatus) IsTerminal() bool {
	return s != SaleStatusWaitingPayment
}

// Item is one purchased line item, stored as jsonb on the sale row.
type Item struct {
	ProductID    int64  `json:"product_id"`
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	PriceInCents int64  `json:"price_in_cents"`
}

type Sale struct {
	ID            int64  `json:"id" db:"id"`
	SaleReference string `json:"sale_reference" db:"sale_reference"`
	SellerID      int64  `json:"seller_id" db:"seller_id"`

	// Gateway transaction ids: the main charge plus an optional post-purchase
	// upsell charge tied to the same sale.
	TransactionID       string         `json:"transaction_id" db:"transaction_id"`
	UpsellTransactionID sql.NullString `json:"upsell_transaction_id,omitempty" db:"upsell_transaction_id"`

	Items []Item `json:"items" db:"items"`

	// Customer snapshot at checkout time
	CustomerName     string         `json:"customer_name" db:"customer_name"`
	CustomerEmail    string         `json:"customer_email" db:"customer_email"`
	CustomerWhatsapp sql.NullString `json:"customer_whatsapp,omitempty" db:"customer_whatsapp"`
	CustomerIP       sql.NullString `json:"customer_ip,omitempty" db:"customer_ip"`

	PaymentMethod PaymentMethod `json:"payment_method" db:"payment_method"`
	Status        SaleStatus    `json:"status" db:"status"`

	// PIX copy-paste code, kept so reminder emails can resend it.
	PixCode sql.NullString `json:"pix_code,omitempty" db:"pix_code"`

	// Amounts (cents)
	TotalAmountInCents    int64         `json:"total_amount_in_cents" db:"total_amount_in_cents"`
	OriginalAmountInCents int64         `json:"original_amount_in_cents" db:"original_amount_in_cents"`
	DiscountInCents       int64         `json:"discount_in_cents" db:"discount_in_cents"`
	CommissionInCents     int64         `json:"commission_in_cents" db:"commission_in_cents"`
	UpsellAmountInCents   sql.NullInt64 `json:"upsell_amount_in_cents,omitempty" db:"upsell_amount_in_cents"`

	CouponCode sql.NullString    `json:"coupon_code,omitempty" db:"coupon_code"`
	Tracking   map[string]string `json:"tracking,omitempty" db:"tracking"`

	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
	PaidAt       sql.NullTime `json:"paid_at,omitempty" db:"paid_at"`
	UpsellPaidAt sql.NullTime `json:"upsell_paid_at,omitempty" db:"upsell_paid_at"`
}
