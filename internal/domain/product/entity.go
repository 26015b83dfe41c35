// internal/domain/product/entity.go
package product

import (
	"database/sql"
	"time"
)

// SubOffer is a supplementary offer attached to a product and shown at a
// specific funnel stage: order bump (checkout page), post-click offer (after
// the pay button) or upsell (after payment).
type SubOffer struct {
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	PriceInCents int64  `json:"price_in_cents"`
	Active       bool   `json:"active"`
}

// Offers groups the optional sub-offers, persisted as one jsonb column.
type Offers struct {
	OrderBump *SubOffer `json:"order_bump,omitempty"`
	PostClick *SubOffer `json:"post_click,omitempty"`
	Upsell    *SubOffer `json:"upsell,omitempty"`
}

type Product struct {
	ID       int64 `json:"id" db:"id"`
	SellerID int64 `json:"seller_id" db:"seller_id"`

	Name         string         `json:"name" db:"name"`
	Description  sql.NullString `json:"description,omitempty" db:"description"`
	PriceInCents int64          `json:"price_in_cents" db:"price_in_cents"`
	Active       bool           `json:"active" db:"active"`

	// Checkout page customization (colors, banners, testimonials...), kept
	// opaque: the panel frontend owns its shape.
	CheckoutConfig map[string]interface{} `json:"checkout_config,omitempty" db:"checkout_config"`

	Offers Offers `json:"offers" db:"offers"`

	// Delivery email sent after payment confirmation
	DeliveryEmailSubject sql.NullString `json:"delivery_email_subject,omitempty" db:"delivery_email_subject"`
	DeliveryEmailBody    sql.NullString `json:"delivery_email_body,omitempty" db:"delivery_email_body"`

	DefaultUTMs map[string]string `json:"default_utms,omitempty" db:"default_utms"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
