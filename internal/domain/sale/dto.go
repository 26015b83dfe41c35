// internal/domain/sale/dto.go
package sale

import "time"

type CheckoutItemInput struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity"`
}

type CheckoutCustomerInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Whatsapp string `json:"whatsapp"`
}

type CreateCheckoutRequest struct {
	SellerID   int64                 `json:"seller_id" binding:"required"`
	Items      []CheckoutItemInput   `json:"items" binding:"required"`
	Customer   CheckoutCustomerInput `json:"customer" binding:"required"`
	CouponCode string                `json:"coupon_code"`
	Tracking   map[string]string     `json:"tracking"`
}

// CheckoutResponse is returned to the checkout page so it can render the PIX
// copy-and-paste code and QR image.
type CheckoutResponse struct {
	SaleID             int64  `json:"sale_id"`
	SaleReference      string `json:"sale_reference"`
	TransactionID      string `json:"transaction_id"`
	TotalAmountInCents int64  `json:"total_amount_in_cents"`
	DiscountInCents    int64  `json:"discount_in_cents"`
	PixCode            string `json:"pix_code"`
	PixQRCodeURL       string `json:"pix_qr_code_url,omitempty"`
	ExpiresAt          string `json:"expires_at,omitempty"`
}

type AcceptUpsellRequest struct {
	SaleID    int64 `json:"sale_id" binding:"required"`
	ProductID int64 `json:"product_id" binding:"required"`
}

type ListFilters struct {
	Status    string     `form:"status"`
	Search    string     `form:"search"`
	StartDate *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate   *time.Time `form:"end_date" time_format:"2006-01-02"`
	Page      int        `form:"page"`
	PageSize  int        `form:"page_size"`
}

type ListResponse struct {
	Sales      []Sale `json:"sales"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalPages int    `json:"total_pages"`
}
