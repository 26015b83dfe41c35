// internal/handlers/webhook/webhook_handler.go
package webhook

import (
	"context"

	"checkout-service/internal/pkg/response"
	"checkout-service/internal/service/payment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Verifier interface {
	Verify(ctx context.Context, txID string) error
}

// WebhookHandler receives payment notifications from the gateway. The body
// is only a trigger: verification always re-queries the gateway, and the
// endpoint always answers 200 so the gateway never retry-storms us.
type WebhookHandler struct {
	verifier Verifier
	logger   *zap.Logger
}

func NewWebhookHandler(verifier Verifier, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		verifier: verifier,
		logger:   logger,
	}
}

// PaymentCallback handles the gateway's form-encoded payment notification.
func (h *WebhookHandler) PaymentCallback(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		h.logger.Warn("webhook with unparseable body", zap.Error(err))
		response.Acknowledge(c, "received")
		return
	}

	txID, ok := payment.ParseCallback(c.Request.PostForm)
	if !ok {
		h.logger.Warn("webhook without transaction id",
			zap.String("client_ip", c.ClientIP()))
		response.Acknowledge(c, "received")
		return
	}

	if err := h.verifier.Verify(c.Request.Context(), txID); err != nil {
		// The sweeper will retry; the gateway still gets its 200.
		h.logger.Error("webhook verification failed",
			zap.String("transaction_id", txID),
			zap.Error(err),
		)
	}

	response.Acknowledge(c, "received")
}
