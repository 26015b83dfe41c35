// internal/events/envelope.go
package events

import (
	"encoding/json"
	"time"
)

const (
	EventSaleCreated = "SaleCreated"
	EventSalePaid    = "SalePaid"
	EventUpsellPaid  = "UpsellPaid"
	EventSaleExpired = "SaleExpired"
)

// Envelope wraps every published sale event with routing metadata. Consumers
// switch on EventType and decode Payload.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // sale reference
	Payload       json.RawMessage `json:"payload"`
}

type SaleCreatedPayload struct {
	SaleID             int64  `json:"sale_id"`
	SellerID           int64  `json:"seller_id"`
	TransactionID      string `json:"transaction_id"`
	TotalAmountInCents int64  `json:"total_amount_in_cents"`
	CustomerEmail      string `json:"customer_email"`
}

type SalePaidPayload struct {
	SaleID             int64   `json:"sale_id"`
	SellerID           int64   `json:"seller_id"`
	TransactionID      string  `json:"transaction_id"`
	TotalAmountInCents int64   `json:"total_amount_in_cents"`
	CommissionInCents  int64   `json:"commission_in_cents"`
	ProductIDs         []int64 `json:"product_ids"`
	CustomerEmail      string  `json:"customer_email"`
}

type UpsellPaidPayload struct {
	SaleID              int64  `json:"sale_id"`
	SellerID            int64  `json:"seller_id"`
	UpsellTransactionID string `json:"upsell_transaction_id"`
	AmountInCents       int64  `json:"amount_in_cents"`
}
