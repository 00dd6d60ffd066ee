package controller

import (
	"time"

	"github.com/campuskart/marketplace/internal/domain/notification"
	"github.com/campuskart/marketplace/internal/domain/product"
	"github.com/campuskart/marketplace/internal/domain/transaction"
	"github.com/campuskart/marketplace/internal/gateway"
)

// --- Request DTOs ---
// These DTOs handle HTTP/JSON concerns (string IDs, validation tags).
// Controllers convert these to service layer inputs before calling business
// logic. Amounts are integer minor units (paise).

// CreateOrderRequest holds the input for creating a gateway-backed order.
type CreateOrderRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	SellerID  string `json:"seller_id" validate:"required,uuid"`
	Price     int64  `json:"price" validate:"required,gt=0"`
	Notes     string `json:"notes,omitempty"`
}

// VerifyPaymentRequest carries the gateway checkout result. Field names
// follow the gateway's checkout callback payload.
type VerifyPaymentRequest struct {
	TransactionID     string `json:"transaction_id" validate:"required,uuid"`
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required"`
}

// CreateTransactionRequest holds the input for recording a cash sale.
type CreateTransactionRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Price     int64  `json:"price" validate:"required,gt=0"`
	Notes     string `json:"notes,omitempty"`
}

// UpdateStatusRequest holds the manual status override input.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// RelistRequest holds the input for re-listing a sold-out product.
type RelistRequest struct {
	Quantity int `json:"quantity" validate:"required,gte=1"`
}

// --- Response DTOs ---

// OrderResponse pairs the created transaction with the gateway order handle
// the client completes checkout against.
type OrderResponse struct {
	Transaction *TransactionResponse  `json:"transaction"`
	Order       *GatewayOrderResponse `json:"order"`
}

// GatewayOrderResponse represents the gateway order handle.
type GatewayOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID               string     `json:"id"`
	ProductID        string     `json:"product_id"`
	BuyerID          string     `json:"buyer_id"`
	SellerID         string     `json:"seller_id"`
	Price            int64      `json:"price"`
	Currency         string     `json:"currency"`
	Status           string     `json:"status"`
	PaymentStatus    string     `json:"payment_status"`
	PaymentMethod    string     `json:"payment_method"`
	GatewayOrderID   *string    `json:"gateway_order_id,omitempty"`
	GatewayPaymentID *string    `json:"gateway_payment_id,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

// AvailabilityResponse represents a product's availability check.
type AvailabilityResponse struct {
	Available bool `json:"available"`
	Quantity  int  `json:"quantity"`
}

// ProductResponse represents a product in API responses.
type ProductResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       int64     `json:"price"`
	Quantity    int       `json:"quantity"`
	IsAvailable bool      `json:"is_available"`
	SellerID    string    `json:"seller_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NotificationResponse represents a notification in API responses.
type NotificationResponse struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Title         string    `json:"title"`
	Message       string    `json:"message"`
	ProductID     *string   `json:"product_id,omitempty"`
	TransactionID *string   `json:"transaction_id,omitempty"`
	IsRead        bool      `json:"is_read"`
	CreatedAt     time.Time `json:"created_at"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// --- Conversion helpers ---

// FromTransaction converts a domain transaction to API response.
func FromTransaction(t *transaction.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:               t.ID.String(),
		ProductID:        t.ProductID.String(),
		BuyerID:          t.BuyerID.String(),
		SellerID:         t.SellerID.String(),
		Price:            t.PriceMinor,
		Currency:         t.Currency,
		Status:           string(t.Status),
		PaymentStatus:    string(t.PaymentStatus),
		PaymentMethod:    string(t.PaymentMethod),
		GatewayOrderID:   t.GatewayOrderID,
		GatewayPaymentID: t.GatewayPaymentID,
		Notes:            t.Notes,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
		CompletedAt:      t.CompletedAt,
	}
}

// FromOrder converts a gateway order handle to API response.
func FromOrder(o *gateway.Order) *GatewayOrderResponse {
	return &GatewayOrderResponse{
		ID:       o.ID,
		Amount:   o.AmountMinor,
		Currency: o.Currency,
		Receipt:  o.Receipt,
	}
}

// FromProduct converts a domain product to API response.
func FromProduct(p *product.Product) *ProductResponse {
	return &ProductResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Price:       p.PriceMinor,
		Quantity:    p.Quantity,
		IsAvailable: p.IsAvailable,
		SellerID:    p.SellerID.String(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// FromNotification converts a domain notification to API response.
func FromNotification(n *notification.Notification) *NotificationResponse {
	resp := &NotificationResponse{
		ID:        n.ID.String(),
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
	if n.ProductID != nil {
		pid := n.ProductID.String()
		resp.ProductID = &pid
	}
	if n.TransactionID != nil {
		tid := n.TransactionID.String()
		resp.TransactionID = &tid
	}
	return resp
}
