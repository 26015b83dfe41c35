// internal/handlers/audit/audit_handler.go
package audit

import (
	"net/http"

	"checkout-service/internal/domain/audit"
	"checkout-service/internal/pkg/response"
	service "checkout-service/internal/service/audit"

	"github.com/gin-gonic/gin"
)

// AuditHandler exposes the admin action trail. Super-admin only; enforced by
// route middleware.
type AuditHandler struct {
	recorder *service.Recorder
}

func NewAuditHandler(recorder *service.Recorder) *AuditHandler {
	return &AuditHandler{
		recorder: recorder,
	}
}

func (h *AuditHandler) ListEntries(c *gin.Context) {
	var f audit.ListFilters
	if err := c.ShouldBindQuery(&f); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid filters", err)
		return
	}

	result, err := h.recorder.List(c.Request.Context(), &f)
	if err != nil {
		response.FromError(c, "failed to list audit entries", err)
		return
	}

	response.Success(c, http.StatusOK, "audit entries retrieved", result)
}
