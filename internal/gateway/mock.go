package gateway

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	domainErrors "github.com/campuskart/marketplace/internal/domain/errors"
	"github.com/google/uuid"
)

// MockClient simulates a payment gateway for local development and tests.
type MockClient struct {
	name        string
	failureRate float64 // 0.0 to 1.0
	latency     time.Duration
}

type MockOption func(*MockClient)

func WithFailureRate(rate float64) MockOption {
	return func(c *MockClient) { c.failureRate = rate }
}

func WithLatency(d time.Duration) MockOption {
	return func(c *MockClient) { c.latency = d }
}

func NewMockClient(opts ...MockOption) *MockClient {
	c := &MockClient{
		name:        "mock",
		failureRate: 0.0,
		latency:     0,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *MockClient) Name() string { return c.name }

func (c *MockClient) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	if c.latency > 0 {
		select {
		case <-time.After(c.latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if rand.Float64() < c.failureRate {
		return nil, fmt.Errorf("%w: simulated gateway failure", domainErrors.ErrGatewayUnavailable)
	}

	return &Order{
		ID:          fmt.Sprintf("order_%s", uuid.New().String()[:12]),
		AmountMinor: req.AmountMinor,
		Currency:    req.Currency,
		Receipt:     req.Receipt,
	}, nil
}
