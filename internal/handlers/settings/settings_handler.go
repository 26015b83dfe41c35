// internal/handlers/settings/settings_handler.go
package settings

import (
	"net/http"

	"checkout-service/internal/domain/settings"
	"checkout-service/internal/middleware"
	"checkout-service/internal/pkg/response"
	service "checkout-service/internal/service/settings"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	settingsService *service.Service
}

func NewSettingsHandler(settingsService *service.Service) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
	}
}

func (h *SettingsHandler) GetSettings(c *gin.Context) {
	sellerID, ok := middleware.GetAdminID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	result, err := h.settingsService.GetSellerSettings(c.Request.Context(), sellerID)
	if err != nil {
		response.FromError(c, "failed to load settings", err)
		return
	}

	response.Success(c, http.StatusOK, "settings retrieved", result)
}

func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	sellerID, ok := middleware.GetAdminID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req settings.UpdateSellerSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.settingsService.UpdateSellerSettings(c.Request.Context(), sellerID, &req)
	if err != nil {
		response.FromError(c, "failed to update settings", err)
		return
	}

	response.Success(c, http.StatusOK, "settings updated", result)
}
