// internal/handlers/sweep/sweep_handler.go
package sweep

import (
	"net/http"

	"checkout-service/internal/pkg/response"
	"checkout-service/internal/service/outbox"
	"checkout-service/internal/service/sweeper"

	"github.com/gin-gonic/gin"
)

// SweepHandler exposes the scheduled jobs as cron-secret-guarded endpoints,
// so an external scheduler can drive them.
type SweepHandler struct {
	sweeperService *sweeper.Service
	dispatcher     *outbox.Dispatcher
}

func NewSweepHandler(sweeperService *sweeper.Service, dispatcher *outbox.Dispatcher) *SweepHandler {
	return &SweepHandler{
		sweeperService: sweeperService,
		dispatcher:     dispatcher,
	}
}

// ReverifyPending re-checks stale waiting_payment sales against the gateway.
func (h *SweepHandler) ReverifyPending(c *gin.Context) {
	result, err := h.sweeperService.ReverifyPending(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "pending sweep failed", err)
		return
	}
	response.Success(c, http.StatusOK, "pending sweep finished", result)
}

// SendReminders queues due pix-reminder and abandoned-cart emails.
func (h *SweepHandler) SendReminders(c *gin.Context) {
	result, err := h.sweeperService.SendReminders(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "reminder sweep failed", err)
		return
	}
	response.Success(c, http.StatusOK, "reminder sweep finished", result)
}

// DispatchOutbox forces one outbox drain outside the periodic loop.
func (h *SweepHandler) DispatchOutbox(c *gin.Context) {
	n, err := h.dispatcher.DispatchOnce(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "outbox dispatch failed", err)
		return
	}
	response.Success(c, http.StatusOK, "outbox dispatched", gin.H{"processed": n})
}
