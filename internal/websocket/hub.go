// internal/websocket/hub.go
package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"checkout-service/internal/domain/sale"

	"go.uber.org/zap"
)

// Notification is one push frame sent to a seller's dashboard.
type Notification struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

type broadcastMessage struct {
	sellerID int64
	payload  []byte
}

// Hub fans live sale notifications out to the connected dashboards of each
// seller. A seller may hold several connections (tabs, devices).
type Hub struct {
	clients map[int64]map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan *broadcastMessage

	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *broadcastMessage, 256),
		logger:     logger,
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

// SalePaid pushes a paid-sale notification to the seller's dashboards.
// Implements the payment verifier's listener.
func (h *Hub) SalePaid(s *sale.Sale) {
	h.Notify(s.SellerID, &Notification{
		Type:       "sale.paid",
		OccurredAt: time.Now().UTC(),
		Data: map[string]interface{}{
			"sale_id":               s.ID,
			"sale_reference":        s.SaleReference,
			"customer_name":         s.CustomerName,
			"total_amount_in_cents": s.TotalAmountInCents,
		},
	})
}

// Notify queues a notification for one seller. Never blocks: when the hub's
// buffer is full the frame is dropped, the dashboard state is advisory.
func (h *Hub) Notify(sellerID int64, n *Notification) {
	payload, err := json.Marshal(n)
	if err != nil {
		h.logger.Error("failed to marshal notification", zap.Error(err))
		return
	}

	select {
	case h.broadcast <- &broadcastMessage{sellerID: sellerID, payload: payload}:
	default:
		h.logger.Warn("notification dropped, hub buffer full",
			zap.Int64("seller_id", sellerID))
	}
}

func (h *Hub) ConnectedClients(sellerID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sellerID])
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.sellerID] == nil {
		h.clients[client.sellerID] = make(map[*Client]bool)
	}
	h.clients[client.sellerID][client] = true

	h.logger.Info("dashboard connected",
		zap.Int64("seller_id", client.sellerID),
		zap.Int("connections", len(h.clients[client.sellerID])),
	)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.sellerID]; ok {
		if _, exists := clients[client]; exists {
			delete(clients, client)
			client.close()

			if len(clients) == 0 {
				delete(h.clients, client.sellerID)
			}

			h.logger.Info("dashboard disconnected", zap.Int64("seller_id", client.sellerID))
		}
	}
}

func (h *Hub) deliver(msg *broadcastMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[msg.sellerID] {
		client.send(msg.payload)
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			client.close()
		}
	}
	h.clients = make(map[int64]map[*Client]bool)
}
