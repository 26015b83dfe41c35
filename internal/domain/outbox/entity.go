// internal/domain/outbox/entity.go
package outbox

import (
	"database/sql"
	"encoding/json"
	"time"
)

type Kind string

const (
	KindAttribution   Kind = "attribution"
	KindDeliveryEmail Kind = "delivery_email"
	KindReminderEmail Kind = "reminder_email"
	KindUpsellEvent   Kind = "upsell_event"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// Row is one queued side effect. Post-payment fan-out (emails, attribution,
// upsell events) lands here inside the confirming transaction and is drained
// by the dispatcher with at-least-once semantics; IdempotencyKey is unique so
// a replayed enqueue is a no-op.
type Row struct {
	ID             int64           `json:"id" db:"id"`
	Kind           Kind            `json:"kind" db:"kind"`
	SaleID         sql.NullInt64   `json:"sale_id,omitempty" db:"sale_id"`
	IdempotencyKey string          `json:"idempotency_key" db:"idempotency_key"`
	Payload        json.RawMessage `json:"payload" db:"payload"`
	Status         Status          `json:"status" db:"status"`
	Attempts       int             `json:"attempts" db:"attempts"`
	LastError      sql.NullString  `json:"last_error,omitempty" db:"last_error"`
	NextAttemptAt  time.Time       `json:"next_attempt_at" db:"next_attempt_at"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	SentAt         sql.NullTime    `json:"sent_at,omitempty" db:"sent_at"`
}

// DeliveryEmailPayload carries everything the dispatcher needs to send one
// product delivery email without re-reading the sale.
type DeliveryEmailPayload struct {
	SellerID     int64  `json:"seller_id"`
	SaleID       int64  `json:"sale_id"`
	ProductID    int64  `json:"product_id"`
	ProductName  string `json:"product_name"`
	CustomerName string `json:"customer_name"`
	To           string `json:"to"`
	Subject      string `json:"subject,omitempty"`
	Body         string `json:"body,omitempty"`
}

// ReminderEmailPayload is used for pix-reminder and abandoned-cart emails.
type ReminderEmailPayload struct {
	SellerID     int64    `json:"seller_id"`
	CartID       int64    `json:"cart_id"`
	Step         string   `json:"step"`
	CustomerName string   `json:"customer_name"`
	To           string   `json:"to"`
	ProductNames []string `json:"product_names"`
	TotalInCents int64    `json:"total_in_cents"`
	PixCode      string   `json:"pix_code,omitempty"`
}
