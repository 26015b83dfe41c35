// internal/attribution/client.go
package attribution

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Sender posts order events to the attribution service. The outbox
// dispatcher depends on this interface.
type Sender interface {
	SendOrderEvent(ctx context.Context, ev *OrderEvent) error
}

// OrderEvent mirrors the attribution service's order-event payload.
type OrderEvent struct {
	SellerID          int64             `json:"seller_id"`
	OrderID           string            `json:"order_id"`
	CustomerName      string            `json:"customer_name"`
	CustomerEmail     string            `json:"customer_email"`
	CustomerWhatsapp  string            `json:"customer_whatsapp,omitempty"`
	ProductIDs        []int64           `json:"product_ids"`
	ProductNames      []string          `json:"product_names"`
	TotalInCents      int64             `json:"total_in_cents"`
	CommissionInCents int64             `json:"commission_in_cents"`
	Tracking          map[string]string `json:"tracking,omitempty"`
	PaidAt            time.Time         `json:"paid_at"`
}

// Client is the HTTP implementation of Sender.
type Client struct {
	url   string
	token string
	http  *http.Client
}

func NewClient(url, token string, timeout time.Duration) *Client {
	return &Client{
		url:   strings.TrimRight(url, "/"),
		token: token,
		http:  &http.Client{Timeout: timeout},
	}
}

// SendOrderEvent posts one paid-order event.
func (c *Client) SendOrderEvent(ctx context.Context, ev *OrderEvent) error {
	if c.url == "" {
		// Attribution not configured; treat as delivered so outbox rows
		// don't pile up.
		return nil
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/events/order", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build order event request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("attribution request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("attribution service returned %d: %s", resp.StatusCode, snippet)
	}
	return nil
}
