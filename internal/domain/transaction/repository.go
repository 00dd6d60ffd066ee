package transaction

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for transaction persistence
type Repository interface {
	// Create creates a new transaction
	Create(ctx context.Context, t *Transaction) error

	// GetByID retrieves a transaction by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// GetByGatewayOrderID retrieves a transaction by its gateway order id.
	// Returns nil, nil when no transaction is correlated to the order.
	GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*Transaction, error)

	// Update updates an existing transaction
	Update(ctx context.Context, t *Transaction) error

	// UpdateIfStatus updates the transaction only while its stored status
	// still matches expected, reporting whether the row was claimed. This is
	// the guard that lets concurrent writers race on a status transition
	// without both winning.
	UpdateIfStatus(ctx context.Context, t *Transaction, expected Status) (bool, error)

	// List lists transactions with filters, newest first
	List(ctx context.Context, filter ListFilter) ([]*Transaction, error)
}

// ListFilter defines filters for listing transactions. BuyerID and SellerID
// combine with OR when both are set (a user's full history).
type ListFilter struct {
	BuyerID  *uuid.UUID
	SellerID *uuid.UUID
	Status   *Status
	Limit    int
	Offset   int
}
