package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	domainErrors "github.com/campuskart/marketplace/internal/domain/errors"
	"github.com/campuskart/marketplace/pkg/retry"
)

// RazorpayClient talks to the Razorpay Orders API over HTTP with basic auth.
type RazorpayClient struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
	retryCfg   retry.Config
}

// RazorpayOption configures the client.
type RazorpayOption func(*RazorpayClient)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(c *http.Client) RazorpayOption {
	return func(r *RazorpayClient) { r.httpClient = c }
}

// WithRetryConfig overrides the retry policy for order creation.
func WithRetryConfig(cfg retry.Config) RazorpayOption {
	return func(r *RazorpayClient) { r.retryCfg = cfg }
}

// NewRazorpayClient creates a Razorpay API client.
func NewRazorpayClient(baseURL, keyID, keySecret string, timeout time.Duration, opts ...RazorpayOption) *RazorpayClient {
	c := &RazorpayClient{
		baseURL:    baseURL,
		keyID:      keyID,
		keySecret:  keySecret,
		httpClient: &http.Client{Timeout: timeout},
		retryCfg: retry.Config{
			MaxAttempts:  3,
			InitialDelay: 200 * time.Millisecond,
			MaxDelay:     2 * time.Second,
			Multiplier:   2.0,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *RazorpayClient) Name() string { return "razorpay" }

type razorpayOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type razorpayOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// CreateOrder creates an order with the Razorpay Orders API. Transient
// failures are retried with exponential backoff; a non-2xx response or an
// exhausted retry budget surfaces as ErrGatewayUnavailable.
func (c *RazorpayClient) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	payload, err := json.Marshal(razorpayOrderRequest{
		Amount:   req.AmountMinor,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Notes:    req.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal order request: %w", err)
	}

	order, err := retry.DoWithResult(ctx, c.retryCfg, func() (*Order, error) {
		return c.createOrderOnce(ctx, payload)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrGatewayUnavailable, err)
	}
	return order, nil
}

func (c *RazorpayClient) createOrderOnce(ctx context.Context, payload []byte) (*Order, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gateway request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read gateway response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway returned %d: %s", resp.StatusCode, body)
	}

	var out razorpayOrderResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode gateway response: %w", err)
	}

	return &Order{
		ID:          out.ID,
		AmountMinor: out.Amount,
		Currency:    out.Currency,
		Receipt:     out.Receipt,
	}, nil
}
