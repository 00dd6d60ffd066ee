package transaction

import (
	"time"

	"github.com/campuskart/marketplace/internal/domain/errors"
	"github.com/google/uuid"
)

// Status represents the transaction status in the state machine
type Status string

const (
	StatusPending          Status = "pending"
	StatusPaymentInitiated Status = "payment_initiated"
	StatusPaymentCompleted Status = "payment_completed"
	StatusPaymentFailed    Status = "payment_failed"
	StatusCompleted        Status = "completed"
	StatusCancelled        Status = "cancelled"
)

// PaymentStatus tracks the external gateway's view of the payment,
// independent of Status: the gateway may report captured/failed/refunded
// asynchronously via webhook, out of band with the synchronous verify call.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentCaptured PaymentStatus = "captured"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// PaymentMethod represents how the buyer pays
type PaymentMethod string

const (
	MethodCash    PaymentMethod = "cash"
	MethodGateway PaymentMethod = "razorpay"
	MethodOther   PaymentMethod = "other"
)

// Transaction is a purchase between a buyer and a seller. It is never
// deleted; failed and cancelled transactions are retained as history.
type Transaction struct {
	ID            uuid.UUID
	ProductID     uuid.UUID
	BuyerID       uuid.UUID
	SellerID      uuid.UUID
	PriceMinor    int64 // captured at creation time, not re-read at verification
	Currency      string
	Status        Status
	PaymentStatus PaymentStatus
	PaymentMethod PaymentMethod

	// Gateway correlation fields, populated once payment begins.
	GatewayOrderID   *string
	GatewayPaymentID *string
	GatewaySignature *string

	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// NewCashTransaction creates a pending cash-method transaction.
func NewCashTransaction(productID, buyerID, sellerID uuid.UUID, priceMinor int64, currency, notes string) (*Transaction, error) {
	return newTransaction(productID, buyerID, sellerID, priceMinor, currency, notes, MethodCash, StatusPending)
}

// NewGatewayOrder creates a payment_initiated transaction correlated to the
// given gateway order.
func NewGatewayOrder(productID, buyerID, sellerID uuid.UUID, priceMinor int64, currency, notes, gatewayOrderID string) (*Transaction, error) {
	t, err := newTransaction(productID, buyerID, sellerID, priceMinor, currency, notes, MethodGateway, StatusPaymentInitiated)
	if err != nil {
		return nil, err
	}
	t.GatewayOrderID = &gatewayOrderID
	return t, nil
}

func newTransaction(productID, buyerID, sellerID uuid.UUID, priceMinor int64, currency, notes string, method PaymentMethod, status Status) (*Transaction, error) {
	if productID == uuid.Nil {
		return nil, errors.NewValidationError("product_id", "cannot be empty")
	}
	if buyerID == uuid.Nil {
		return nil, errors.NewValidationError("buyer_id", "cannot be empty")
	}
	if sellerID == uuid.Nil {
		return nil, errors.NewValidationError("seller_id", "cannot be empty")
	}
	if buyerID == sellerID {
		return nil, errors.ErrSelfPurchase
	}
	if priceMinor <= 0 {
		return nil, errors.NewValidationError("price", "must be greater than 0")
	}
	if currency == "" {
		return nil, errors.NewValidationError("currency", "cannot be empty")
	}

	now := time.Now()
	return &Transaction{
		ID:            uuid.New(),
		ProductID:     productID,
		BuyerID:       buyerID,
		SellerID:      sellerID,
		PriceMinor:    priceMinor,
		Currency:      currency,
		Status:        status,
		PaymentStatus: PaymentPending,
		PaymentMethod: method,
		Notes:         notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// ValidStatus reports whether s is a known transaction status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusPaymentInitiated, StatusPaymentCompleted,
		StatusPaymentFailed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo checks if the transaction can transition to the given status
func (t *Transaction) CanTransitionTo(newStatus Status) bool {
	transitions := map[Status][]Status{
		StatusPending: {
			StatusPaymentInitiated,
			StatusCompleted, // cash sale settled in person
			StatusCancelled,
			StatusPaymentFailed,
		},
		StatusPaymentInitiated: {
			StatusPaymentCompleted,
			StatusPaymentFailed,
			StatusCancelled,
		},
		StatusPaymentCompleted: {
			StatusCompleted,
		},
		StatusPaymentFailed: {}, // terminal
		StatusCompleted:     {}, // terminal
		StatusCancelled:     {}, // terminal
	}

	allowed, exists := transitions[t.Status]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == newStatus {
			return true
		}
	}
	return false
}

// TransitionTo transitions the transaction to a new status
func (t *Transaction) TransitionTo(newStatus Status) error {
	if !t.CanTransitionTo(newStatus) {
		return errors.NewDomainError(
			"invalid_transition",
			"cannot transition from "+string(t.Status)+" to "+string(newStatus),
			errors.ErrInvalidStateTransition,
		)
	}

	t.Status = newStatus
	t.UpdatedAt = time.Now()

	if newStatus == StatusCompleted || newStatus == StatusPaymentFailed || newStatus == StatusCancelled {
		now := time.Now()
		t.CompletedAt = &now
	}
	return nil
}

// MarkPaymentCompleted transitions to payment_completed after a verified
// capture, recording the gateway payment id and signature.
func (t *Transaction) MarkPaymentCompleted(gatewayPaymentID, gatewaySignature string) error {
	if err := t.TransitionTo(StatusPaymentCompleted); err != nil {
		return err
	}
	t.PaymentStatus = PaymentCaptured
	t.GatewayPaymentID = &gatewayPaymentID
	if gatewaySignature != "" {
		t.GatewaySignature = &gatewaySignature
	}
	return nil
}

// MarkPaymentFailed transitions to payment_failed and records the
// gateway's view. Passing PaymentCaptured marks the charged-but-unfulfillable
// case: the gateway captured funds but the sale could not be honored.
func (t *Transaction) MarkPaymentFailed(paymentStatus PaymentStatus, reason string) error {
	if err := t.TransitionTo(StatusPaymentFailed); err != nil {
		return err
	}
	t.PaymentStatus = paymentStatus
	t.Notes = reason
	return nil
}

// IsTerminal checks if the transaction is in a terminal state
func (t *Transaction) IsTerminal() bool {
	return t.Status == StatusCompleted ||
		t.Status == StatusPaymentFailed ||
		t.Status == StatusCancelled
}

// IsParty reports whether userID is the buyer or the seller.
func (t *Transaction) IsParty(userID uuid.UUID) bool {
	return t.BuyerID == userID || t.SellerID == userID
}
