// internal/domain/customer/entity.go
package customer

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

type FunnelStage string

const (
	FunnelStageLead     FunnelStage = "lead"
	FunnelStageProspect FunnelStage = "prospect"
	FunnelStageCustomer FunnelStage = "customer"
)

// Customer aggregates purchase history per (seller, email). Rows are upserted
// whenever a sale for that email reaches paid.
type Customer struct {
	ID       int64 `json:"id" db:"id"`
	SellerID int64 `json:"seller_id" db:"seller_id"`

	Name     string         `json:"name" db:"name"`
	Email    string         `json:"email" db:"email"`
	Whatsapp sql.NullString `json:"whatsapp,omitempty" db:"whatsapp"`

	FunnelStage FunnelStage `json:"funnel_stage" db:"funnel_stage"`

	TotalOrders       int   `json:"total_orders" db:"total_orders"`
	TotalSpentInCents int64 `json:"total_spent_in_cents" db:"total_spent_in_cents"`

	FirstPurchaseAt sql.NullTime `json:"first_purchase_at,omitempty" db:"first_purchase_at"`
	LastPurchaseAt  sql.NullTime `json:"last_purchase_at,omitempty" db:"last_purchase_at"`

	PurchasedProductIDs pq.Int64Array `json:"purchased_product_ids" db:"purchased_product_ids"`
	SaleIDs             pq.Int64Array `json:"sale_ids" db:"sale_ids"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
