package errors

import (
	"errors"
	"fmt"
)

var (
	// Product / inventory errors
	ErrProductNotFound     = errors.New("product not found")
	ErrOutOfStock          = errors.New("product is out of stock")
	ErrProductStillInStock = errors.New("product still has stock")

	// Transaction errors
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrSelfPurchase           = errors.New("cannot buy your own product")
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// Payment errors
	ErrPaymentVerificationFailed = errors.New("payment verification failed")
	ErrOutOfStockAfterCapture    = errors.New("product sold out after payment capture")
	ErrGatewayUnavailable        = errors.New("payment gateway unavailable")

	// Notification errors
	ErrNotificationNotFound = errors.New("notification not found")

	// Authorization errors
	ErrUnauthorized = errors.New("not authenticated")
	ErrForbidden    = errors.New("not authorized")

	// Idempotency errors
	ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidInput     = errors.New("invalid input")
)

// DomainError wraps errors with additional context
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}
