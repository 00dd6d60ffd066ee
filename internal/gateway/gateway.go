package gateway

import (
	"context"
)

// Order is the external payment provider's record of a pending charge,
// correlated to a local transaction by its provider-assigned ID.
type Order struct {
	ID          string
	AmountMinor int64
	Currency    string
	Receipt     string
}

// CreateOrderRequest carries the amount in minor units, the currency, a
// merchant-generated receipt reference and free-form correlation notes.
type CreateOrderRequest struct {
	AmountMinor int64
	Currency    string
	Receipt     string
	Notes       map[string]string
}

// Client is the payment gateway port. Payment verification is local (HMAC),
// not a gateway call; see SignatureVerifier.
type Client interface {
	// Name returns the provider name.
	Name() string
	// CreateOrder requests an order handle for a pending charge.
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error)
}
