package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignatureVerifier recomputes gateway signatures with server-held secrets
// and compares them in constant time. The payment scheme signs
// "orderID|paymentID" with the API key secret; webhooks sign the raw event
// body with a separate webhook secret.
type SignatureVerifier struct {
	keySecret     []byte
	webhookSecret []byte
}

// NewSignatureVerifier creates a verifier for the given secrets.
func NewSignatureVerifier(keySecret, webhookSecret string) *SignatureVerifier {
	return &SignatureVerifier{
		keySecret:     []byte(keySecret),
		webhookSecret: []byte(webhookSecret),
	}
}

// PaymentSignature returns the expected hex signature for an order/payment pair.
func (v *SignatureVerifier) PaymentSignature(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, v.keySecret)
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyPayment reports whether the supplied signature matches the expected
// signature for the order/payment pair.
func (v *SignatureVerifier) VerifyPayment(orderID, paymentID, signature string) bool {
	expected := v.PaymentSignature(orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyWebhook reports whether the supplied signature matches the HMAC of
// the raw webhook body.
func (v *SignatureVerifier) VerifyWebhook(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, v.webhookSecret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
