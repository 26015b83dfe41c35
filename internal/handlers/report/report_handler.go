// internal/handlers/report/report_handler.go
package report

import (
	"net/http"
	"time"

	"checkout-service/internal/middleware"
	"checkout-service/internal/pkg/response"
	service "checkout-service/internal/service/report"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService *service.Service
}

func NewReportHandler(reportService *service.Service) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// GetSummary returns the seller dashboard aggregates for a date range.
// Defaults to the last 30 days.
func (h *ReportHandler) GetSummary(c *gin.Context) {
	sellerID, ok := middleware.GetAdminID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	now := time.Now().UTC()
	from := now.AddDate(0, 0, -30)
	to := now

	if v := c.Query("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "invalid from date, expected YYYY-MM-DD", err)
			return
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "invalid to date, expected YYYY-MM-DD", err)
			return
		}
		to = parsed
	}

	result, err := h.reportService.Summary(c.Request.Context(), sellerID, from, to)
	if err != nil {
		response.FromError(c, "failed to build report", err)
		return
	}

	response.Success(c, http.StatusOK, "report retrieved", result)
}
