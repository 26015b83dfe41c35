// internal/domain/cart/entity.go
package cart

import (
	"database/sql"
	"time"
)

// Reminder step keys tracked in StepsSent. A step is sent at most once per
// cart, regardless of how many sweeper runs observe it as due.
const (
	StepAbandonedCart = "abandoned_cart"
	StepPixReminder   = "pix_reminder"
)

// AbandonedCart snapshots an initiated checkout so delayed reminder emails
// can be sent if the sale never completes.
type AbandonedCart struct {
	ID       int64 `json:"id" db:"id"`
	SellerID int64 `json:"seller_id" db:"seller_id"`

	SaleID sql.NullInt64 `json:"sale_id,omitempty" db:"sale_id"`

	CustomerName     string         `json:"customer_name" db:"customer_name"`
	CustomerEmail    string         `json:"customer_email" db:"customer_email"`
	CustomerWhatsapp sql.NullString `json:"customer_whatsapp,omitempty" db:"customer_whatsapp"`

	ProductNames []string `json:"product_names" db:"product_names"`
	TotalInCents int64    `json:"total_in_cents" db:"total_in_cents"`

	// StepsSent maps a reminder step key to true once dispatched.
	StepsSent map[string]bool `json:"steps_sent" db:"steps_sent"`

	Recovered bool `json:"recovered" db:"recovered"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
