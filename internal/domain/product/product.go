package product

import (
	"time"

	"github.com/campuskart/marketplace/internal/domain/errors"
	"github.com/google/uuid"
)

// Product is the inventory-bearing entity. Quantity and IsAvailable are the
// unit of contention when concurrent buyers purchase the same product; every
// mutation must keep IsAvailable == (Quantity > 0).
type Product struct {
	ID              uuid.UUID
	Name            string
	Description     string
	PriceMinor      int64 // smallest currency unit (paise)
	Quantity        int
	IsAvailable     bool
	SellerID        uuid.UUID
	SoldOutNotified bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewProduct creates a new product listing.
func NewProduct(name string, priceMinor int64, quantity int, sellerID uuid.UUID) (*Product, error) {
	if name == "" {
		return nil, errors.NewValidationError("name", "cannot be empty")
	}
	if priceMinor <= 0 {
		return nil, errors.NewValidationError("price", "must be greater than 0")
	}
	if quantity < 1 {
		return nil, errors.NewValidationError("quantity", "must be at least 1")
	}
	if sellerID == uuid.Nil {
		return nil, errors.NewValidationError("seller_id", "cannot be empty")
	}

	now := time.Now()
	return &Product{
		ID:          uuid.New(),
		Name:        name,
		PriceMinor:  priceMinor,
		Quantity:    quantity,
		IsAvailable: quantity > 0,
		SellerID:    sellerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Availability is the read-only precondition check result.
type Availability struct {
	Available bool
	Quantity  int
}

// DecrementResult reports the outcome of a committed sale decrement.
type DecrementResult struct {
	NewQuantity   int
	BecameSoldOut bool
}

// CanRelist reports whether the product is eligible for re-listing.
// Only a sold-out product may be re-listed.
func (p *Product) CanRelist() bool {
	return p.Quantity == 0 && !p.IsAvailable
}

// IsOwnedBy reports whether userID is the product's seller.
func (p *Product) IsOwnedBy(userID uuid.UUID) bool {
	return p.SellerID == userID
}
