// internal/gateway/client.go
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	xerrors "checkout-service/internal/pkg/errors"
)

// Provider is the PIX gateway port. The HTTP client below implements it;
// tests stub it.
type Provider interface {
	CreateCashIn(ctx context.Context, req *CashInRequest) (*CashInResponse, error)
	GetTransaction(ctx context.Context, txID string) (*Transaction, error)
}

type CashInRequest struct {
	AmountInCents int64  `json:"amount_in_cents"`
	Description   string `json:"description"`
	PayerName     string `json:"payer_name"`
	PayerEmail    string `json:"payer_email"`
	ExternalRef   string `json:"external_ref"`
}

type CashInResponse struct {
	TransactionID string `json:"transaction_id"`
	PixCode       string `json:"pix_code"`
	QRCodeURL     string `json:"qr_code_url,omitempty"`
	ExpiresAt     string `json:"expires_at,omitempty"`
}

type Transaction struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	AmountInCents int64  `json:"amount_in_cents"`
	PaidAt        string `json:"paid_at,omitempty"`
}

// Paid reports whether the gateway considers the transaction settled. The
// gateway has used both vocabularies across API versions.
func (t *Transaction) Paid() bool {
	switch strings.ToLower(t.Status) {
	case "paid", "approved", "completed":
		return true
	}
	return false
}

// Client talks to the gateway REST API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// CreateCashIn creates a PIX charge.
func (c *Client) CreateCashIn(ctx context.Context, req *CashInRequest) (*CashInResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cash-in request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/pix/cashIn", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build cash-in request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	var out CashInResponse
	if err := c.do(httpReq, &out); err != nil {
		return nil, err
	}
	if out.TransactionID == "" {
		return nil, fmt.Errorf("%w: cash-in response missing transaction id", xerrors.ErrGateway)
	}
	return &out, nil
}

// GetTransaction queries the authoritative transaction state. The verifier
// always calls this instead of trusting webhook bodies.
func (c *Client) GetTransaction(ctx context.Context, txID string) (*Transaction, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transactions/"+txID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	var out Transaction
	if err := c.do(httpReq, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", xerrors.ErrGateway, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", xerrors.ErrGateway, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s returned %d: %s", xerrors.ErrGateway, req.URL.Path, resp.StatusCode, truncate(body, 256))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", xerrors.ErrGateway, err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
