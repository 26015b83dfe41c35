// internal/handlers/sale/sale_handler.go
package sale

import (
	"net/http"
	"strconv"

	"checkout-service/internal/domain/sale"
	"checkout-service/internal/middleware"
	"checkout-service/internal/pkg/response"
	service "checkout-service/internal/service/sale"

	"github.com/gin-gonic/gin"
)

type SaleHandler struct {
	saleService *service.Service
}

func NewSaleHandler(saleService *service.Service) *SaleHandler {
	return &SaleHandler{
		saleService: saleService,
	}
}

// ListSales lists the authenticated seller's sales with filters.
func (h *SaleHandler) ListSales(c *gin.Context) {
	sellerID, ok := middleware.GetAdminID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var f sale.ListFilters
	if err := c.ShouldBindQuery(&f); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid filters", err)
		return
	}

	result, err := h.saleService.List(c.Request.Context(), sellerID, &f)
	if err != nil {
		response.FromError(c, "failed to list sales", err)
		return
	}

	response.Success(c, http.StatusOK, "sales retrieved", result)
}

// GetSale retrieves one of the seller's sales by id.
func (h *SaleHandler) GetSale(c *gin.Context) {
	sellerID, ok := middleware.GetAdminID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid sale ID", err)
		return
	}

	result, err := h.saleService.Get(c.Request.Context(), sellerID, id)
	if err != nil {
		response.FromError(c, "sale not found", err)
		return
	}

	response.Success(c, http.StatusOK, "sale retrieved", result)
}
