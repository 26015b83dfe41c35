// internal/domain/customer/dto.go
package customer

import "time"

// PurchaseInput is what the payment verifier feeds into the upsert when a
// sale is confirmed.
type PurchaseInput struct {
	SellerID   int64
	Name       string
	Email      string
	Whatsapp   string
	SaleID     int64
	ProductIDs []int64
	SpentCents int64
	PaidAt     time.Time
}

type ListFilters struct {
	Search      string `form:"search"`
	FunnelStage string `form:"funnel_stage"`
	Page        int    `form:"page"`
	PageSize    int    `form:"page_size"`
}

type ListResponse struct {
	Customers  []Customer `json:"customers"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
}

type Stats struct {
	TotalCustomers    int64   `json:"total_customers"`
	TotalLeads        int64   `json:"total_leads"`
	TotalSpentInCents int64   `json:"total_spent_in_cents"`
	AvgOrdersPerBuyer float64 `json:"avg_orders_per_buyer"`
}
