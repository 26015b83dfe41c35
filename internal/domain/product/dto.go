// internal/domain/product/dto.go
package product

type CreateProductRequest struct {
	Name                 string                 `json:"name" binding:"required"`
	Description          string                 `json:"description"`
	PriceInCents         int64                  `json:"price_in_cents" binding:"required"`
	CheckoutConfig       map[string]interface{} `json:"checkout_config"`
	Offers               Offers                 `json:"offers"`
	DeliveryEmailSubject string                 `json:"delivery_email_subject"`
	DeliveryEmailBody    string                 `json:"delivery_email_body"`
	DefaultUTMs          map[string]string      `json:"default_utms"`
}

type UpdateProductRequest struct {
	Name                 *string                `json:"name"`
	Description          *string                `json:"description"`
	PriceInCents         *int64                 `json:"price_in_cents"`
	Active               *bool                  `json:"active"`
	CheckoutConfig       map[string]interface{} `json:"checkout_config"`
	Offers               *Offers                `json:"offers"`
	DeliveryEmailSubject *string                `json:"delivery_email_subject"`
	DeliveryEmailBody    *string                `json:"delivery_email_body"`
	DefaultUTMs          map[string]string      `json:"default_utms"`
}

type ListFilters struct {
	Search   string `form:"search"`
	Active   *bool  `form:"active"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

type ListResponse struct {
	Products   []Product `json:"products"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
}
