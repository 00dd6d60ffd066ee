package controller

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/campuskart/marketplace/internal/domain/transaction"
	"github.com/campuskart/marketplace/internal/gateway"
	"github.com/campuskart/marketplace/internal/infrastructure/observability"
	"github.com/campuskart/marketplace/internal/service"
	"github.com/campuskart/marketplace/internal/testutil"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPaymentController() (*PaymentController, *testutil.MockTransactionRepository, *testutil.MockProductRepository, *gateway.SignatureVerifier) {
	productRepo := testutil.NewMockProductRepository()
	transactionRepo := testutil.NewMockTransactionRepository()
	outboxRepo := testutil.NewMockOutboxRepository()
	metrics := observability.NewMetrics("test", prometheus.NewRegistry())
	logger := zerolog.Nop()

	verifier := gateway.NewSignatureVerifier("test-key-secret", "test-webhook-secret")
	inventory := service.NewInventoryService(productRepo, metrics, logger)
	orderService := service.NewOrderService(
		transactionRepo, productRepo, outboxRepo, inventory,
		testutil.NewMockTransactionManager(),
		gateway.NewMockClient(), gateway.NewBreaker("test", 10, 0),
		verifier, "INR", metrics, logger,
	)
	return NewPaymentController(orderService, verifier), transactionRepo, productRepo, verifier
}

func signWebhookBody(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func webhookBody(event, orderID, paymentID string) string {
	return fmt.Sprintf(
		`{"event":%q,"payload":{"payment":{"entity":{"id":%q,"order_id":%q}}}}`,
		event, paymentID, orderID,
	)
}

func TestWebhook_ValidSignature(t *testing.T) {
	ctrl, transactionRepo, productRepo, _ := setupPaymentController()

	p := testutil.NewTestProduct("webhook target", 10000, 1, uuid.New())
	productRepo.AddProduct(p)
	tx := testutil.NewInitiatedTransaction(p.ID, uuid.New(), p.SellerID, 10000, "order_wh_1")
	transactionRepo.AddTransaction(tx)

	body := webhookBody("payment.captured", "order_wh_1", "pay_wh_1")
	req := httptest.NewRequest(http.MethodPost, "/payment/webhook", strings.NewReader(body))
	req.Header.Set("X-Razorpay-Signature", signWebhookBody("test-webhook-secret", body))
	rec := httptest.NewRecorder()

	ctrl.Webhook(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	stored, err := transactionRepo.GetByID(context.Background(), tx.ID)
	require.NoError(t, err)
	assert.Equal(t, transaction.PaymentCaptured, stored.PaymentStatus)
	// Reconciliation only: the order is still awaiting verification.
	assert.Equal(t, transaction.StatusPaymentInitiated, stored.Status)
	assert.Equal(t, 1, productRepo.GetProductByID(p.ID).Quantity)
}

func TestWebhook_InvalidSignature(t *testing.T) {
	ctrl, transactionRepo, productRepo, _ := setupPaymentController()

	p := testutil.NewTestProduct("webhook target", 10000, 1, uuid.New())
	productRepo.AddProduct(p)
	tx := testutil.NewInitiatedTransaction(p.ID, uuid.New(), p.SellerID, 10000, "order_wh_2")
	transactionRepo.AddTransaction(tx)

	body := webhookBody("payment.captured", "order_wh_2", "pay_wh_2")
	req := httptest.NewRequest(http.MethodPost, "/payment/webhook", strings.NewReader(body))
	req.Header.Set("X-Razorpay-Signature", "deadbeef")
	rec := httptest.NewRecorder()

	ctrl.Webhook(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	stored, err := transactionRepo.GetByID(context.Background(), tx.ID)
	require.NoError(t, err)
	assert.Equal(t, transaction.PaymentPending, stored.PaymentStatus)
}

func TestWebhook_SignatureOverExactBody(t *testing.T) {
	ctrl, _, _, _ := setupPaymentController()

	body := webhookBody("payment.captured", "order_x", "pay_x")
	// Signature computed over a different body must be rejected.
	otherSig := signWebhookBody("test-webhook-secret", body+" ")
	req := httptest.NewRequest(http.MethodPost, "/payment/webhook", strings.NewReader(body))
	req.Header.Set("X-Razorpay-Signature", otherSig)
	rec := httptest.NewRecorder()

	ctrl.Webhook(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
