package testutil

import (
	"time"

	"github.com/campuskart/marketplace/internal/domain/product"
	"github.com/campuskart/marketplace/internal/domain/transaction"
	"github.com/google/uuid"
)

func NewTestProduct(name string, priceMinor int64, quantity int, sellerID uuid.UUID) *product.Product {
	now := time.Now()
	return &product.Product{
		ID:          uuid.New(),
		Name:        name,
		PriceMinor:  priceMinor,
		Quantity:    quantity,
		IsAvailable: quantity > 0,
		SellerID:    sellerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewSoldOutProduct returns a product at zero quantity with the sold-out
// notification already claimed.
func NewSoldOutProduct(name string, priceMinor int64, sellerID uuid.UUID) *product.Product {
	p := NewTestProduct(name, priceMinor, 0, sellerID)
	p.IsAvailable = false
	p.SoldOutNotified = true
	return p
}

func NewInitiatedTransaction(productID, buyerID, sellerID uuid.UUID, priceMinor int64, gatewayOrderID string) *transaction.Transaction {
	now := time.Now()
	return &transaction.Transaction{
		ID:             uuid.New(),
		ProductID:      productID,
		BuyerID:        buyerID,
		SellerID:       sellerID,
		PriceMinor:     priceMinor,
		Currency:       "INR",
		Status:         transaction.StatusPaymentInitiated,
		PaymentStatus:  transaction.PaymentPending,
		PaymentMethod:  transaction.MethodGateway,
		GatewayOrderID: &gatewayOrderID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func NewPendingCashTransaction(productID, buyerID, sellerID uuid.UUID, priceMinor int64) *transaction.Transaction {
	now := time.Now()
	return &transaction.Transaction{
		ID:            uuid.New(),
		ProductID:     productID,
		BuyerID:       buyerID,
		SellerID:      sellerID,
		PriceMinor:    priceMinor,
		Currency:      "INR",
		Status:        transaction.StatusPending,
		PaymentStatus: transaction.PaymentPending,
		PaymentMethod: transaction.MethodCash,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func UUIDPtr(id uuid.UUID) *uuid.UUID {
	return &id
}
