// internal/handlers/checkout/checkout_handler.go
package checkout

import (
	"net/http"

	"checkout-service/internal/domain/sale"
	"checkout-service/internal/pkg/response"
	service "checkout-service/internal/service/checkout"

	"github.com/gin-gonic/gin"
)

// CheckoutHandler serves the public (unauthenticated) buyer endpoints.
type CheckoutHandler struct {
	checkoutService *service.Service
}

func NewCheckoutHandler(checkoutService *service.Service) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
	}
}

// CreateCheckout creates a PIX charge for the buyer's cart.
func (h *CheckoutHandler) CreateCheckout(c *gin.Context) {
	var req sale.CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.checkoutService.CreateCheckout(c.Request.Context(), &req, c.ClientIP())
	if err != nil {
		response.FromError(c, "failed to create checkout", err)
		return
	}

	response.Success(c, http.StatusCreated, "checkout created", result)
}

// AcceptUpsell creates the post-purchase upsell charge for a paid sale.
func (h *CheckoutHandler) AcceptUpsell(c *gin.Context) {
	var req sale.AcceptUpsellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.checkoutService.AcceptUpsell(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, "failed to accept upsell", err)
		return
	}

	response.Success(c, http.StatusCreated, "upsell charge created", result)
}
