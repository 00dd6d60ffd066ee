package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func signWebhook(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyPayment(t *testing.T) {
	v := NewSignatureVerifier("key-secret", "webhook-secret")

	sig := v.PaymentSignature("order_1", "pay_1")
	assert.True(t, v.VerifyPayment("order_1", "pay_1", sig))

	// Deterministic for the same triple.
	assert.Equal(t, sig, v.PaymentSignature("order_1", "pay_1"))

	// Any change to the pair or the signature fails verification.
	assert.False(t, v.VerifyPayment("order_2", "pay_1", sig))
	assert.False(t, v.VerifyPayment("order_1", "pay_2", sig))
	tampered := []byte(sig)
	tampered[0] ^= 1
	assert.False(t, v.VerifyPayment("order_1", "pay_1", string(tampered)))
	assert.False(t, v.VerifyPayment("order_1", "pay_1", ""))
}

func TestVerifyPayment_SecretMatters(t *testing.T) {
	a := NewSignatureVerifier("secret-a", "wh")
	b := NewSignatureVerifier("secret-b", "wh")
	sig := a.PaymentSignature("order_1", "pay_1")
	assert.False(t, b.VerifyPayment("order_1", "pay_1", sig))
}

func TestVerifyWebhook(t *testing.T) {
	v := NewSignatureVerifier("key-secret", "webhook-secret")
	body := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_1"}}}}`)

	sig := signWebhook("webhook-secret", body)
	assert.True(t, v.VerifyWebhook(body, sig))

	// Body and secret are both bound into the signature.
	assert.False(t, v.VerifyWebhook(append(body, ' '), sig))
	assert.False(t, v.VerifyWebhook(body, signWebhook("other-secret", body)))
	assert.False(t, v.VerifyWebhook(body, ""))
}
