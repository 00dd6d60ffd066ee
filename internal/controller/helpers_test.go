package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	domainErrors "github.com/campuskart/marketplace/internal/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeErrorResponse(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestWriteError_DomainMappings(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domainErrors.ErrProductNotFound, http.StatusNotFound, "not_found"},
		{domainErrors.ErrTransactionNotFound, http.StatusNotFound, "not_found"},
		{domainErrors.ErrSelfPurchase, http.StatusBadRequest, "self_purchase"},
		{domainErrors.ErrOutOfStock, http.StatusBadRequest, "out_of_stock"},
		{domainErrors.ErrOutOfStockAfterCapture, http.StatusBadRequest, "out_of_stock_after_capture"},
		{domainErrors.ErrPaymentVerificationFailed, http.StatusBadRequest, "payment_verification_failed"},
		{domainErrors.ErrProductStillInStock, http.StatusConflict, "product_still_in_stock"},
		{domainErrors.ErrInvalidStateTransition, http.StatusConflict, "invalid_state_transition"},
		{domainErrors.ErrGatewayUnavailable, http.StatusServiceUnavailable, "gateway_unavailable"},
		{domainErrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{domainErrors.ErrForbidden, http.StatusForbidden, "forbidden"},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		writeError(rec, c.err)
		assert.Equal(t, c.status, rec.Code, "%v", c.err)
		resp := decodeErrorResponse(t, rec)
		assert.Equal(t, c.code, resp.Code, "%v", c.err)
	}
}

func TestWriteError_WrappedError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, fmt.Errorf("creating order: %w", domainErrors.ErrGatewayUnavailable))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "gateway_unavailable", decodeErrorResponse(t, rec).Code)
}

func TestWriteError_ValidationError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, domainErrors.NewValidationError("price", "must be greater than 0"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", decodeErrorResponse(t, rec).Code)
}

func TestWriteError_DomainErrorFallback(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, domainErrors.NewDomainError("quota_exceeded", "listing quota exceeded", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "quota_exceeded", decodeErrorResponse(t, rec).Code)
}

func TestWriteError_UnknownErrorIsOpaque(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("pq: connection reset"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeErrorResponse(t, rec)
	assert.Equal(t, "internal_error", resp.Code)
	// Internal details must not leak to the client.
	assert.Equal(t, "internal server error", resp.Error)
}

func TestDecodeAndValidate(t *testing.T) {
	body := `{"product_id":"0b1f7c5e-2c2a-4f6a-9e1a-0f4f4b8a2d11","seller_id":"6a9f0d3c-5b4e-4c8d-8f2a-1e2d3c4b5a69","price":45000}`
	req := httptest.NewRequest(http.MethodPost, "/payment/create-order", strings.NewReader(body))

	var dto CreateOrderRequest
	require.NoError(t, decodeAndValidate(req, &dto))
	assert.Equal(t, int64(45000), dto.Price)
}

func TestDecodeAndValidate_Invalid(t *testing.T) {
	var validationErr *domainErrors.ValidationError

	req := httptest.NewRequest(http.MethodPost, "/payment/create-order", strings.NewReader(`not json`))
	var dto CreateOrderRequest
	assert.ErrorAs(t, decodeAndValidate(req, &dto), &validationErr)

	// Valid JSON, invalid field values.
	req = httptest.NewRequest(http.MethodPost, "/payment/create-order", strings.NewReader(`{"product_id":"not-a-uuid","seller_id":"also-bad","price":0}`))
	assert.ErrorAs(t, decodeAndValidate(req, &dto), &validationErr)
}
