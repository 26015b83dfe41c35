// internal/handlers/ws/ws_handler.go
package ws

import (
	"net/http"

	"checkout-service/internal/middleware"
	"checkout-service/internal/pkg/response"
	"checkout-service/internal/websocket"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = gorilla.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS policy already admits the panel origin.
		return true
	},
}

// WSHandler upgrades authenticated panel connections into hub clients.
type WSHandler struct {
	hub    *websocket.Hub
	logger *zap.Logger
}

func NewWSHandler(hub *websocket.Hub, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		hub:    hub,
		logger: logger,
	}
}

// Connect upgrades the request; auth middleware has already run.
func (h *WSHandler) Connect(c *gin.Context) {
	sellerID, ok := middleware.GetAdminID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := websocket.NewClient(h.hub, conn, sellerID)
	go client.Serve()
}
