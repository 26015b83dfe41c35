// internal/handlers/customer/customer_handler.go
package customer

import (
	"net/http"

	"checkout-service/internal/domain/customer"
	"checkout-service/internal/middleware"
	"checkout-service/internal/pkg/response"
	service "checkout-service/internal/service/customer"

	"github.com/gin-gonic/gin"
)

type CustomerHandler struct {
	customerService *service.Service
}

func NewCustomerHandler(customerService *service.Service) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
	}
}

// ListCustomers lists the seller's customers and leads.
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	sellerID, ok := middleware.GetAdminID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var f customer.ListFilters
	if err := c.ShouldBindQuery(&f); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid filters", err)
		return
	}

	result, err := h.customerService.List(c.Request.Context(), sellerID, &f)
	if err != nil {
		response.FromError(c, "failed to list customers", err)
		return
	}

	response.Success(c, http.StatusOK, "customers retrieved", result)
}

// GetCustomer retrieves one customer by email.
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	sellerID, ok := middleware.GetAdminID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	email := c.Query("email")
	if email == "" {
		response.Error(c, http.StatusBadRequest, "email is required", nil)
		return
	}

	result, err := h.customerService.Get(c.Request.Context(), sellerID, email)
	if err != nil {
		response.FromError(c, "customer not found", err)
		return
	}

	response.Success(c, http.StatusOK, "customer retrieved", result)
}

// GetStats returns the seller's funnel aggregates.
func (h *CustomerHandler) GetStats(c *gin.Context) {
	sellerID, ok := middleware.GetAdminID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	result, err := h.customerService.Stats(c.Request.Context(), sellerID)
	if err != nil {
		response.FromError(c, "failed to load customer stats", err)
		return
	}

	response.Success(c, http.StatusOK, "customer stats retrieved", result)
}
