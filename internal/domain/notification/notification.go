package notification

import (
	"time"

	"github.com/google/uuid"
)

// Type is the enumerated notification tag
type Type string

const (
	TypeProductSoldOut Type = "product_sold_out"
	TypeProductSold    Type = "product_sold"
)

// Notification is a side-effect record created by order and inventory
// transitions. Only IsRead is ever mutated afterwards, and only by the
// recipient.
type Notification struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Type          Type
	Title         string
	Message       string
	ProductID     *uuid.UUID
	TransactionID *uuid.UUID
	IsRead        bool
	CreatedAt     time.Time
}

// New creates a notification for the given recipient.
func New(userID uuid.UUID, typ Type, title, message string) *Notification {
	return &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now(),
	}
}

// WithProduct attaches a product reference.
func (n *Notification) WithProduct(productID uuid.UUID) *Notification {
	n.ProductID = &productID
	return n
}

// WithTransaction attaches a transaction reference.
func (n *Notification) WithTransaction(transactionID uuid.UUID) *Notification {
	n.TransactionID = &transactionID
	return n
}
