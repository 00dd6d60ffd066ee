package product

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for product persistence.
//
// DecrementOnSale and Relist must be implemented as single atomic
// conditional updates at the storage layer, never as read-then-write pairs:
// two concurrent sales of the last unit must resolve to exactly one winner.
type Repository interface {
	// Create creates a new product listing
	Create(ctx context.Context, p *Product) error

	// GetByID retrieves a product by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// CheckAvailable returns the availability flag and remaining quantity
	CheckAvailable(ctx context.Context, id uuid.UUID) (Availability, error)

	// DecrementOnSale atomically decrements quantity by 1 where quantity > 0
	// and recomputes availability, returning the new quantity.
	// Returns ErrOutOfStock if no unit remained at execution time.
	DecrementOnSale(ctx context.Context, id uuid.UUID) (int, error)

	// ClaimSoldOutNotification atomically flips sold_out_notified to true
	// for a sold-out product and reports whether this call won the claim.
	// At most one caller per sold-out transition observes true.
	ClaimSoldOutNotification(ctx context.Context, id uuid.UUID) (bool, error)

	// Relist atomically resets a sold-out product to the given quantity,
	// restores availability and clears the sold-out-notified guard.
	// Returns ErrProductStillInStock if the product was not sold out.
	Relist(ctx context.Context, id uuid.UUID, quantity int) (*Product, error)
}
