package controller

import (
	"encoding/json"
	"io"
	"net/http"

	domainErrors "github.com/campuskart/marketplace/internal/domain/errors"
	"github.com/campuskart/marketplace/internal/gateway"
	"github.com/campuskart/marketplace/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const maxWebhookBodySize = 1 << 20

// PaymentController handles the payment flow: order creation, verification,
// webhook reconciliation and status reads.
type PaymentController struct {
	orderService *service.OrderService
	verifier     *gateway.SignatureVerifier
}

// NewPaymentController creates a new PaymentController.
func NewPaymentController(orderService *service.OrderService, verifier *gateway.SignatureVerifier) *PaymentController {
	return &PaymentController{
		orderService: orderService,
		verifier:     verifier,
	}
}

// CreateOrder handles POST /payment/create-order
func (h *PaymentController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	buyerID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid product_id", Code: "invalid_id"})
		return
	}
	sellerID, err := uuid.Parse(req.SellerID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid seller_id", Code: "invalid_id"})
		return
	}

	resp, err := h.orderService.CreateOrder(r.Context(), service.CreateOrderRequest{
		BuyerID:    buyerID,
		ProductID:  productID,
		SellerID:   sellerID,
		PriceMinor: req.Price,
		Notes:      req.Notes,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, OrderResponse{
		Transaction: FromTransaction(resp.Transaction),
		Order:       FromOrder(resp.Order),
	})
}

// VerifyPayment handles POST /payment/verify-payment
func (h *PaymentController) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	buyerID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req VerifyPaymentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	transactionID, err := uuid.Parse(req.TransactionID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid transaction_id", Code: "invalid_id"})
		return
	}

	t, err := h.orderService.VerifyPayment(r.Context(), buyerID, service.VerifyPaymentRequest{
		TransactionID:    transactionID,
		GatewayOrderID:   req.RazorpayOrderID,
		GatewayPaymentID: req.RazorpayPaymentID,
		GatewaySignature: req.RazorpaySignature,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromTransaction(t))
}

// webhookPayload mirrors the gateway's event envelope.
type webhookPayload struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// Webhook handles POST /payment/webhook. The HMAC is computed over the raw
// request body, so the body must be read before any JSON decoding.
func (h *PaymentController) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodySize))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "cannot read body", Code: "invalid_body"})
		return
	}

	signature := r.Header.Get("X-Razorpay-Signature")
	if !h.verifier.VerifyWebhook(body, signature) {
		log.Warn().Msg("webhook signature mismatch")
		writeError(w, domainErrors.ErrPaymentVerificationFailed)
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON", Code: "invalid_body"})
		return
	}

	if err := h.orderService.HandleWebhook(r.Context(), service.WebhookEvent{
		Event:            payload.Event,
		GatewayOrderID:   payload.Payload.Payment.Entity.OrderID,
		GatewayPaymentID: payload.Payload.Payment.Entity.ID,
	}); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetStatus handles GET /payment/status/{transactionId}
func (h *PaymentController) GetStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	transactionID, err := uuid.Parse(chi.URLParam(r, "transactionId"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid transaction id", Code: "invalid_id"})
		return
	}

	t, err := h.orderService.GetStatus(r.Context(), userID, transactionID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromTransaction(t))
}
